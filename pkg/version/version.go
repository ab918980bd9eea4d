// Package version holds the arbor release string.
package version

// Version is the current application version.
// This is a var (not const) so it can be overridden at build time via:
//
//	go build -ldflags "-X github.com/vanderheijden86/arbor/pkg/version.Version=v1.2.3"
var Version = "v0.3.0"

// Template is the output of arbor --version.
func Template() string {
	return "arbor {{.Version}}\n"
}
