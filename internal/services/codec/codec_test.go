package codec

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/phambaophuc/image-converter/internal/models"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x * 255) / w),
				G: uint8((y * 255) / h),
				B: uint8((x*y + x*7 + y*13) % 256),
				A: 255,
			})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func TestConvertJPEGToPNG(t *testing.T) {
	c := NewCodec(zaptest.NewLogger(t))
	src := encodeJPEG(t, testImage(32, 24))

	out, err := c.Convert(context.Background(), src, models.ConversionConfig{TargetFormat: models.FormatPNG, Quality: 0.5})
	require.NoError(t, err)

	decoded, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 32, decoded.Bounds().Dx())
	assert.Equal(t, 24, decoded.Bounds().Dy())
}

func TestConvertPNGToJPEG(t *testing.T) {
	c := NewCodec(zaptest.NewLogger(t))
	src := encodePNG(t, testImage(16, 16))

	out, err := c.Convert(context.Background(), src, models.ConversionConfig{TargetFormat: models.FormatJPEG, Quality: 0.8})
	require.NoError(t, err)

	_, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestConvertToWebP(t *testing.T) {
	c := NewCodec(zaptest.NewLogger(t))
	src := encodePNG(t, testImage(20, 10))

	out, err := c.Convert(context.Background(), src, models.ConversionConfig{TargetFormat: models.FormatWebP, Quality: 0.8})
	require.NoError(t, err)
	require.True(t, len(out) > 12)
	assert.Equal(t, "RIFF", string(out[:4]))
	assert.Equal(t, "WEBP", string(out[8:12]))

	info, err := c.Inspect(out)
	require.NoError(t, err)
	assert.Equal(t, "webp", info.Format)
	assert.Equal(t, 20, info.Width)
	assert.Equal(t, 10, info.Height)
}

func TestConvertPNGIgnoresQuality(t *testing.T) {
	c := NewCodec(zaptest.NewLogger(t))
	src := encodeJPEG(t, testImage(40, 30))

	low, err := c.Convert(context.Background(), src, models.ConversionConfig{TargetFormat: models.FormatPNG, Quality: 0.3})
	require.NoError(t, err)
	high, err := c.Convert(context.Background(), src, models.ConversionConfig{TargetFormat: models.FormatPNG, Quality: 0.9})
	require.NoError(t, err)

	assert.Equal(t, low, high)
}

func TestConvertJPEGQualityAffectsOutput(t *testing.T) {
	c := NewCodec(zaptest.NewLogger(t))
	src := encodePNG(t, testImage(64, 64))

	low, err := c.Convert(context.Background(), src, models.ConversionConfig{TargetFormat: models.FormatJPEG, Quality: 0.1})
	require.NoError(t, err)
	high, err := c.Convert(context.Background(), src, models.ConversionConfig{TargetFormat: models.FormatJPEG, Quality: 1.0})
	require.NoError(t, err)

	assert.Less(t, len(low), len(high))
}

func TestConvertDecodeError(t *testing.T) {
	c := NewCodec(zaptest.NewLogger(t))

	inputs := map[string][]byte{
		"corrupt":   []byte("definitely not an image"),
		"empty":     {},
		"truncated": encodePNG(t, testImage(16, 16))[:20],
	}

	for name, content := range inputs {
		t.Run(name, func(t *testing.T) {
			out, err := c.Convert(context.Background(), content, models.ConversionConfig{TargetFormat: models.FormatPNG})
			require.Error(t, err)
			assert.Nil(t, out)
			assert.ErrorIs(t, err, ErrDecode)
			assert.NotErrorIs(t, err, ErrEncode)

			var convErr *ConversionError
			require.True(t, errors.As(err, &convErr))
			assert.Equal(t, models.ReasonDecodeError, convErr.Reason)
		})
	}
}

func TestConvertEncodeErrorOnUnknownFormat(t *testing.T) {
	c := NewCodec(zaptest.NewLogger(t))
	src := encodePNG(t, testImage(8, 8))

	_, err := c.Convert(context.Background(), src, models.ConversionConfig{TargetFormat: models.Format("avif")})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEncode)

	var convErr *ConversionError
	require.True(t, errors.As(err, &convErr))
	assert.Equal(t, models.ReasonEncodeError, convErr.Reason)
}

func TestConvertCancelledContext(t *testing.T) {
	c := NewCodec(zaptest.NewLogger(t))
	src := encodePNG(t, testImage(8, 8))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Convert(ctx, src, models.ConversionConfig{TargetFormat: models.FormatPNG})
	assert.ErrorIs(t, err, context.Canceled)

	var convErr *ConversionError
	assert.False(t, errors.As(err, &convErr))
}

func TestNewSurfaceRejectsEmptyRaster(t *testing.T) {
	_, err := newSurface(image.NewRGBA(image.Rect(0, 0, 0, 10)))
	assert.Error(t, err)

	s, err := newSurface(testImage(3, 2))
	require.NoError(t, err)
	assert.Equal(t, 3, s.img.Bounds().Dx())
	s.release()
	assert.Nil(t, s.img)
}

func TestQualityMapping(t *testing.T) {
	assert.Equal(t, 1, jpegQuality(0))
	assert.Equal(t, 80, jpegQuality(0.8))
	assert.Equal(t, 100, jpegQuality(1))
	assert.Equal(t, 100, jpegQuality(1.5))

	assert.Equal(t, float32(0), webpQuality(0))
	assert.InDelta(t, 80, webpQuality(0.8), 0.001)
	assert.Equal(t, float32(100), webpQuality(2))
}

func TestEncoderQuality(t *testing.T) {
	assert.Equal(t, 0, encoderQuality(models.ConversionConfig{TargetFormat: models.FormatPNG, Quality: 0.9}))
	assert.Equal(t, 75, encoderQuality(models.ConversionConfig{TargetFormat: models.FormatJPEG, Quality: 0.75}))
	assert.Equal(t, 1, encoderQuality(models.ConversionConfig{TargetFormat: models.FormatJPEG, Quality: 0}))
	assert.Equal(t, 0, encoderQuality(models.ConversionConfig{TargetFormat: models.FormatWebP, Quality: 0}))
	assert.Equal(t, 60, encoderQuality(models.ConversionConfig{TargetFormat: models.FormatWebP, Quality: 0.6}))
}
