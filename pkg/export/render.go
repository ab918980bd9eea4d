package export

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"git.sr.ht/~sbinet/gg"
	"github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"
)

var (
	colorFolder   = color.RGBA{0xbd, 0x93, 0xf9, 0xff}
	colorFile     = color.RGBA{0x8b, 0xe9, 0xfd, 0xff}
	colorStroke   = color.RGBA{0x22, 0x22, 0x22, 0xff}
	colorGuide    = color.RGBA{0xb0, 0xb8, 0xc4, 0xff}
	colorText     = color.RGBA{0x11, 0x11, 0x11, 0xff}
	colorSubtle   = color.RGBA{0x66, 0x66, 0x66, 0xff}
	colorBackdrop = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	colorHeaderBG = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
)

func markerColor(r layoutRow) color.RGBA {
	if r.Folder {
		return colorFolder
	}
	return colorFile
}

// marker is the expand indicator printed before folder rows.
func marker(r layoutRow) string {
	switch {
	case !r.Folder:
		return ""
	case r.Open:
		return "- "
	default:
		return "+ "
	}
}

func summaryLines(s summaryInfo) []string {
	lines := []string{fmt.Sprintf("rows: %d  folders: %d  depth: %d", s.Rows, s.Folders, s.Depth)}
	if s.Hash != "" {
		lines = append(lines, "snapshot: "+s.Hash)
	}
	return lines
}

// --- PNG -------------------------------------------------------------------

// RenderPNG draws the outline of opts into an image.
func RenderPNG(opts Options) image.Image {
	return drawPNG(buildLayout(opts)).Image()
}

func savePNG(path string, layout layoutResult) error {
	return drawPNG(layout).SavePNG(path)
}

func drawPNG(layout layoutResult) *gg.Context {
	dc := gg.NewContext(layout.Width, layout.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(12, 12, float64(layout.Width)-24, layout.Header-12, 10)
	dc.Fill()

	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(colorText)
	dc.DrawStringAnchored(layout.Summary.Title, 28, 36, 0, 0.5)
	dc.SetColor(colorSubtle)
	for i, line := range summaryLines(layout.Summary) {
		dc.DrawStringAnchored(line, 28, 56+float64(i)*18, 0, 0.5)
	}

	// guides from each parent down to its children
	dc.SetColor(colorGuide)
	dc.SetLineWidth(1)
	for _, r := range layout.Rows {
		if r.Parent < 0 {
			continue
		}
		p := layout.Rows[r.Parent]
		x := p.X + 5
		dc.DrawLine(x, p.Y+rowHeight/2+5, x, r.Y+rowHeight/2)
		dc.DrawLine(x, r.Y+rowHeight/2, r.X, r.Y+rowHeight/2)
		dc.Stroke()
	}

	for _, r := range layout.Rows {
		cy := r.Y + rowHeight/2
		dc.SetColor(markerColor(r))
		dc.DrawRoundedRectangle(r.X, cy-5, 10, 10, 2)
		dc.Fill()
		dc.SetColor(colorStroke)
		dc.DrawRoundedRectangle(r.X, cy-5, 10, 10, 2)
		dc.Stroke()

		dc.SetColor(colorText)
		dc.DrawStringAnchored(marker(r)+r.Text, r.X+16, cy, 0, 0.5)
	}
	return dc
}

// --- SVG -------------------------------------------------------------------

// WriteSVG renders the outline of opts as an SVG document.
func WriteSVG(w io.Writer, opts Options) error {
	layout := buildLayout(opts)

	canvas := svg.New(w)
	canvas.Start(layout.Width, layout.Height)
	canvas.Title(layout.Summary.Title)
	canvas.Rect(0, 0, layout.Width, layout.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Roundrect(12, 12, layout.Width-24, int(layout.Header-12), 10, 10, fmt.Sprintf("fill:%s", css(colorHeaderBG)))

	canvas.Text(28, 40, layout.Summary.Title, fmt.Sprintf("fill:%s;font-size:16px;font-family:monospace;font-weight:bold", css(colorText)))
	for i, line := range summaryLines(layout.Summary) {
		canvas.Text(28, 60+i*18, line, fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))
	}

	guide := fmt.Sprintf("stroke:%s;stroke-width:1;fill:none", css(colorGuide))
	for _, r := range layout.Rows {
		if r.Parent < 0 {
			continue
		}
		p := layout.Rows[r.Parent]
		x := int(p.X + 5)
		cy := int(r.Y + rowHeight/2)
		canvas.Polyline([]int{x, x, int(r.X)}, []int{int(p.Y + rowHeight/2 + 5), cy, cy}, guide)
	}

	for _, r := range layout.Rows {
		x := int(r.X)
		cy := int(r.Y + rowHeight/2)
		canvas.Gid("node-" + sanitizeID(string(r.ID)))
		canvas.Roundrect(x, cy-5, 10, 10, 2, 2,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(markerColor(r)), css(colorStroke)))
		canvas.Text(x+16, cy+4, marker(r)+r.Text, fmt.Sprintf("fill:%s;font-size:13px;font-family:monospace", css(colorText)))
		canvas.Gend()
	}

	canvas.End()
	return nil
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
