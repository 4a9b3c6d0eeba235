package codec

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ImageInfo describes a source image without decoding its pixels.
type ImageInfo struct {
	Format string
	Width  int
	Height int
}

// Inspect reads only the image header.
func (c *Codec) Inspect(content []byte) (ImageInfo, error) {
	if len(content) == 0 {
		return ImageInfo{}, errors.New("empty image data")
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return ImageInfo{}, fmt.Errorf("invalid image format: %w", err)
	}

	return ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

func (c *Codec) decodeImage(content []byte) (image.Image, string, error) {
	info, err := c.Inspect(content)
	if err != nil {
		return nil, "", err
	}

	var opts []imaging.DecodeOption
	if c.options.AutoOrient {
		opts = append(opts, imaging.AutoOrientation(true))
	}

	img, err := imaging.Decode(bytes.NewReader(content), opts...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode %s image: %w", info.Format, err)
	}

	return img, info.Format, nil
}
