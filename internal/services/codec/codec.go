package codec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/phambaophuc/image-converter/internal/models"
)

var (
	ErrDecode = errors.New("image decode failed")
	ErrEncode = errors.New("image encode failed")
)

// ConversionError is the per-item failure of Convert. errors.Is matches
// ErrDecode or ErrEncode depending on Reason.
type ConversionError struct {
	Reason models.FailureReason
	Err    error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

func (e *ConversionError) Is(target error) bool {
	switch e.Reason {
	case models.ReasonDecodeError:
		return target == ErrDecode
	case models.ReasonEncodeError:
		return target == ErrEncode
	}
	return false
}

type Options struct {
	// AutoOrient applies the EXIF orientation tag while decoding.
	AutoOrient bool
}

var DefaultOptions = Options{}

type Codec struct {
	logger  *zap.Logger
	options Options
}

func NewCodec(logger *zap.Logger, opts ...Options) *Codec {
	options := DefaultOptions
	if len(opts) > 0 {
		options = opts[0]
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Codec{
		logger:  logger,
		options: options,
	}
}

// Convert decodes content and re-encodes it in cfg.TargetFormat. It makes
// a single attempt; failures come back as *ConversionError. A cancelled
// context is returned as is.
func (c *Codec) Convert(ctx context.Context, content []byte, cfg models.ConversionConfig) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, sourceFormat, err := c.decodeImage(content)
	if err != nil {
		return nil, &ConversionError{Reason: models.ReasonDecodeError, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	surface, err := newSurface(img)
	if err != nil {
		return nil, &ConversionError{Reason: models.ReasonEncodeError, Err: err}
	}
	defer surface.release()

	buffer := &bytes.Buffer{}
	if err := c.encodeImage(buffer, surface.img, cfg.TargetFormat, cfg.Quality); err != nil {
		return nil, &ConversionError{Reason: models.ReasonEncodeError, Err: err}
	}
	if buffer.Len() == 0 {
		return nil, &ConversionError{Reason: models.ReasonEncodeError, Err: errors.New("encoder produced no output")}
	}

	fields := []zap.Field{
		zap.String("source_format", sourceFormat),
		zap.String("target_format", cfg.TargetFormat.String()),
		zap.Int("input_bytes", len(content)),
		zap.Int("output_bytes", buffer.Len()),
	}
	if cfg.TargetFormat.Lossy() {
		fields = append(fields, zap.Int("encoder_quality", encoderQuality(cfg)))
	}
	c.logger.Debug("Image converted", fields...)

	return buffer.Bytes(), nil
}

// surface is the transient raster the source is drawn onto before encoding.
type surface struct {
	img *image.NRGBA
}

func newSurface(src image.Image) (*surface, error) {
	bounds := src.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("zero-sized raster %dx%d", bounds.Dx(), bounds.Dy())
	}
	return &surface{img: imaging.Clone(src)}, nil
}

func (s *surface) release() {
	s.img = nil
}
