package codec

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"math"

	"github.com/chai2010/webp"

	"github.com/phambaophuc/image-converter/internal/models"
)

func (c *Codec) encodeImage(w io.Writer, img image.Image, format models.Format, quality float64) error {
	switch format {
	case models.FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality(quality)})
	case models.FormatPNG:
		// png is lossless; quality does not apply
		return png.Encode(w, img)
	case models.FormatWebP:
		return webp.Encode(w, img, &webp.Options{Quality: webpQuality(quality)})
	default:
		return fmt.Errorf("unsupported target format %q", format)
	}
}

// encoderQuality is the quality value handed to the target encoder, 0 when
// the format is lossless.
func encoderQuality(cfg models.ConversionConfig) int {
	switch {
	case !cfg.TargetFormat.Lossy():
		return 0
	case cfg.TargetFormat == models.FormatJPEG:
		return jpegQuality(cfg.Quality)
	default:
		return int(math.Round(float64(webpQuality(cfg.Quality))))
	}
}

func jpegQuality(q float64) int {
	return min(100, max(1, int(math.Round(q*100))))
}

func webpQuality(q float64) float32 {
	return float32(min(100, max(0, q*100)))
}
