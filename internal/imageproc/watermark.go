// Package imageproc provides operations for images: watermark preparation, fit-within resizing,
// tiled watermark compositing and encoding by file name.
package imageproc

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/UnendingLoop/BatchWatermark/internal/model"
	"github.com/disintegration/imaging"
	"github.com/spf13/afero"
	"github.com/wb-go/wbf/zlog"
)

// Watermark is a prepared tile. It is never modified after PrepareWatermark returns,
// so one value can be shared by every processed image.
type Watermark struct {
	tile *image.NRGBA
	opts model.WatermarkOptions
}

// LoadWatermark opens opts.Path on fs and prepares it.
// A failure to close the file does not fail the load, it is only logged.
func LoadWatermark(fs afero.Fs, opts model.WatermarkOptions, logger zlog.Zerolog) (*Watermark, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	f, err := fs.Open(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("open watermark %q: %w", opts.Path, err)
	}
	defer closeFileFlow(f, logger)

	wm, err := PrepareWatermark(f, opts.Scale, opts.Opacity)
	if err != nil {
		return nil, err
	}
	wm.opts.Path = opts.Path
	return wm, nil
}

// PrepareWatermark decodes the tile, rescales it by scale and multiplies its alpha by opacity.
// Opacity >= 1 leaves the alpha channel untouched.
func PrepareWatermark(r io.Reader, scale, opacity float64) (*Watermark, error) {
	if r == nil {
		return nil, errors.New("nil-reader wmIMG provided")
	}
	if scale <= 0 {
		return nil, fmt.Errorf("%w: %v", model.ErrIncorrectScale, scale)
	}

	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode watermark image: %w", err)
	}
	tile := imaging.Clone(img)

	if scale != 1.0 {
		w := scaleDim(tile.Bounds().Dx(), scale)
		h := scaleDim(tile.Bounds().Dy(), scale)
		tile = imaging.Resize(tile, w, h, imaging.Lanczos)
	}

	if opacity < 1 {
		tile = imaging.AdjustFunc(tile, func(c color.NRGBA) color.NRGBA {
			c.A = uint8(math.Floor(float64(c.A) * opacity))
			return c
		})
	}

	return &Watermark{
		tile: tile,
		opts: model.WatermarkOptions{Scale: scale, Opacity: opacity},
	}, nil
}

// Size returns the tile dimensions in pixels.
func (w *Watermark) Size() image.Point {
	return w.tile.Bounds().Size()
}

// Options returns the path, scale and opacity the tile was prepared with.
// Path is empty when the tile did not come from LoadWatermark.
func (w *Watermark) Options() model.WatermarkOptions {
	return w.opts
}

// масштаб округляем до ближайшего пикселя, но не меньше одного
func scaleDim(v int, scale float64) int {
	return max(int(math.Round(float64(v)*scale)), 1)
}

func closeFileFlow(res io.Closer, logger zlog.Zerolog) {
	if res == nil {
		return
	}
	if err := res.Close(); err != nil {
		logger.Warn().Err(err).Msg("Failed to close watermark fileflow")
	}
}
