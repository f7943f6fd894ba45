package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/UnendingLoop/BatchWatermark/internal/model"
	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	// webp на вход тоже принимаем, imaging сам его не регистрирует
	_ "golang.org/x/image/webp"
)

// Decode reads any registered image format and returns it as NRGBA.
// Sources without alpha come back fully opaque.
func Decode(r io.Reader) (*image.NRGBA, error) {
	if r == nil {
		return nil, errors.New("nil-reader baseIMG provided")
	}

	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode base image: %w", err)
	}
	return imaging.Clone(img), nil
}

// WebPQuality is the lossy quality used for .webp outputs.
const WebPQuality = 80

// Encode picks the output format from the file extension of name and encodes img with
// the save parameters for that format. It returns the encoded bytes and their content type.
func Encode(name string, img image.Image) (*bytes.Buffer, string, error) {
	// imaging не умеет писать webp
	if strings.EqualFold(filepath.Ext(name), ".webp") {
		var buf bytes.Buffer
		if err := webp.Encode(&buf, img, &webp.Options{Quality: WebPQuality}); err != nil {
			return nil, "", fmt.Errorf("encode result image: %w", err)
		}
		return &buf, model.WEBP, nil
	}

	format, err := imaging.FormatFromFilename(name)
	if err != nil {
		return nil, "", fmt.Errorf("output format for %q: %w", name, err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, SaveParams(format)...); err != nil {
		return nil, "", fmt.Errorf("encode result image: %w", err)
	}

	return &buf, model.GetCType[format], nil
}

// SaveParams returns the encoder options for format: quality 85 for JPEG,
// best compression for PNG and encoder defaults for everything else.
func SaveParams(format imaging.Format) []imaging.EncodeOption {
	switch format {
	case imaging.JPEG:
		return []imaging.EncodeOption{imaging.JPEGQuality(85)}
	case imaging.PNG:
		return []imaging.EncodeOption{imaging.PNGCompressionLevel(png.BestCompression)}
	default:
		return nil
	}
}
