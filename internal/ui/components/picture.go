package components

import (
	"image"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mandela/internal/assets"
	"github.com/abhisek/mandela/internal/ui/theme"
)

// Picture draws an image with half-block cells: each character covers two
// vertical pixels, the upper one as foreground and the lower as background.
type Picture struct {
	Image   image.Image // nil renders the not-found notice
	Columns int
	Rows    int
	Caption string
}

// PictureSize returns the cell size for a pixel size, keeping terminal
// cells roughly square by halving the row count.
func PictureSize(size assets.Size, scale int) (cols, rows int) {
	if scale <= 0 {
		scale = 1
	}
	cols = max(size.W/scale, 1)
	rows = max(size.H/(scale*2), 1)
	return cols, rows
}

// View renders the picture inside a frame with its caption underneath.
func (p Picture) View() string {
	var body string
	if p.Image == nil {
		body = theme.PictureMissing.
			Width(p.Columns).
			Height(p.Rows).
			Render(assets.NotFoundText)
	} else {
		body = renderHalfBlocks(p.Image, p.Columns, p.Rows)
	}

	framed := theme.PictureFrame.Render(body)
	if p.Caption == "" {
		return framed
	}
	caption := lipgloss.PlaceHorizontal(lipgloss.Width(framed), lipgloss.Center, theme.Body.Bold(true).Render(p.Caption))
	return lipgloss.JoinVertical(lipgloss.Center, framed, caption)
}

func renderHalfBlocks(img image.Image, cols, rows int) string {
	scaled := assets.Resize(img, assets.Size{W: cols, H: rows * 2})
	b := scaled.Bounds()

	var sb strings.Builder
	for y := 0; y < rows; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < cols; x++ {
			top := pixel(scaled, b.Min.X+x, b.Min.Y+2*y)
			bottom := pixel(scaled, b.Min.X+x, b.Min.Y+2*y+1)
			sb.WriteString(lipgloss.NewStyle().Foreground(top).Background(bottom).Render("▀"))
		}
	}
	return sb.String()
}

// pixel flattens transparency onto the card background.
func pixel(img image.Image, x, y int) color.Color {
	r, g, b, a := img.At(x, y).RGBA()
	if a == 0xffff {
		return color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), 0xff}
	}
	br, bg, bb, _ := theme.BgCard.RGBA()
	blend := func(c, bgc uint32) uint8 {
		return uint8((c + bgc*(0xffff-a)/0xffff) >> 8)
	}
	return color.RGBA{blend(r, br), blend(g, bg), blend(b, bb), 0xff}
}
