package imageproc

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// TilePositions returns the top-left corners of the tile grid for an image of the given size:
// rows every tile.Y+spacing pixels, columns every tile.X+spacing pixels, starting at (0,0).
// Every corner lies inside the image; the tile itself may run past the edge.
func TilePositions(size, tile image.Point, spacing int) []image.Point {
	stepX := tile.X + spacing
	stepY := tile.Y + spacing
	if stepX <= 0 || stepY <= 0 || size.X <= 0 || size.Y <= 0 {
		return nil
	}

	pts := make([]image.Point, 0, ceilDiv(size.Y, stepY)*ceilDiv(size.X, stepX))
	for y := 0; y < size.Y; y += stepY {
		for x := 0; x < size.X; x += stepX {
			pts = append(pts, image.Pt(x, y))
		}
	}
	return pts
}

// Overlay builds a transparent layer of the given size with the tile pasted at every grid position.
// The tile's alpha is the paste mask: every channel of the layer, alpha included, moves
// towards the tile value by alpha/255. Pastes past the edge are clipped.
func (w *Watermark) Overlay(size image.Point, spacing int) *image.NRGBA {
	layer := image.NewNRGBA(image.Rectangle{Max: size})

	sr := w.tile.Bounds()
	for _, pt := range TilePositions(size, sr.Size(), spacing) {
		pasteMasked(layer, w.tile, pt)
	}
	return layer
}

// Apply tiles the watermark over base and returns the flattened, fully opaque result.
func (w *Watermark) Apply(base image.Image, spacing int) *image.NRGBA {
	layer := w.Overlay(base.Bounds().Size(), spacing)
	return Flatten(Composite(base, layer))
}

// Composite puts overlay over base with "over" alpha blending on straight (non-premultiplied) colors.
// Where the overlay is fully transparent the base pixel is kept as is, color included.
// overlay is aligned with the top-left corner of base.
func Composite(base image.Image, overlay *image.NRGBA) *image.NRGBA {
	dst := imaging.Clone(base)
	off := overlay.Rect.Min

	r := dst.Rect.Intersect(overlay.Rect.Sub(off))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			di := dst.PixOffset(x, y)
			si := overlay.PixOffset(x+off.X, y+off.Y)
			over(dst.Pix[di:di+4:di+4], overlay.Pix[si:si+4:si+4])
		}
	}
	return dst
}

// Flatten drops the alpha channel: blended colors stay as they are and every pixel becomes opaque.
func Flatten(img image.Image) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		c.A = 255
		return c
	})
}

// pasteMasked кладет tile в layer по точке pt, маской служит альфа самой плитки
func pasteMasked(layer, tile *image.NRGBA, pt image.Point) {
	sr := tile.Bounds()
	r := image.Rectangle{Min: pt, Max: pt.Add(sr.Size())}.Intersect(layer.Rect)
	if r.Empty() {
		return
	}

	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			si := tile.PixOffset(sr.Min.X+x-pt.X, sr.Min.Y+y-pt.Y)
			di := layer.PixOffset(x, y)
			s := tile.Pix[si : si+4 : si+4]
			d := layer.Pix[di : di+4 : di+4]

			m := uint32(s[3])
			for c := 0; c < 4; c++ {
				d[c] = div255(uint32(s[c])*m + uint32(d[c])*(255-m))
			}
		}
	}
}

// fixed-point точность коэффициентов смешивания
const precisionBits = 7

// over смешивает пиксель s поверх d на месте, все в NRGBA
func over(d, s []uint8) {
	sa := uint32(s[3])
	if sa == 0 {
		return
	}
	da := uint32(d[3])

	outa255 := sa*255 + da*(255-sa)
	coef1 := (sa * 255 * 255 << precisionBits) / outa255
	coef2 := (255 << precisionBits) - coef1

	for c := 0; c < 3; c++ {
		v := uint32(s[c])*coef1 + uint32(d[c])*coef2 + (0x80 << precisionBits)
		d[c] = uint8(shiftDiv255(v) >> precisionBits)
	}
	d[3] = uint8(shiftDiv255(outa255 + 0x80))
}

// div255 делит на 255 с округлением к ближайшему
func div255(v uint32) uint8 {
	return uint8(shiftDiv255(v + 128))
}

func shiftDiv255(v uint32) uint32 {
	return ((v >> 8) + v) >> 8
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
