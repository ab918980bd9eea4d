//go:build linux

package watcher

import "golang.org/x/sys/unix"

// Filesystem magic numbers from statfs(2).
const (
	magicNFS  = 0x6969
	magicSMB  = 0x517b
	magicSMB2 = 0xfe534d42
	magicCIFS = 0xff534d42
	magicFUSE = 0x65735546
)

func detectFilesystemType(path string) FilesystemType {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return FSTypeUnknown
	}
	switch uint32(st.Type) {
	case magicNFS:
		return FSTypeNFS
	case magicSMB, magicSMB2, magicCIFS:
		return FSTypeSMB
	case magicFUSE:
		// sshfs is a FUSE filesystem; statfs cannot tell them apart.
		return FSTypeFUSE
	default:
		return FSTypeLocal
	}
}
