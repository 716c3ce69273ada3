package ioutils

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	_ "image/jpeg" // JPEG decoder registration
	"image/png"

	"golang.org/x/image/draw"
)

// ImageService prepares images for embedding in the launcher's
// configuration file.
//
// The launcher shows profile icons from a data URI stored inside
// launcher_profiles.json, so icons are scaled to a fixed square size and
// re-encoded as PNG.
//
// Example usage:
//
//	svc := NewImageService()
//	uri, err := svc.DataURI(ctx, iconPNG, 128)
//	// uri = "data:image/png;base64,iVBORw0..."
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// ResizeImage resizes an image to fit within the specified maximum dimensions.
//
// The aspect ratio is preserved and images are scaled up as well as down.
// Returns the resized image as PNG-encoded bytes.
//
// Nearest-neighbour scaling keeps pixel art icons crisp; the launcher
// renders them at small sizes.
func (s *ImageService) ResizeImage(ctx context.Context, data []byte, maxWidth, maxHeight int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	ratio := float64(width) / float64(height)
	if float64(maxWidth)/float64(maxHeight) > ratio {
		// Height is the limiting factor
		width = int(float64(maxHeight) * ratio)
		height = maxHeight
	} else {
		// Width is the limiting factor
		height = int(float64(maxWidth) / ratio)
		width = maxWidth
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// DataURI scales the image to a size x size square and returns it as a
// base64 PNG data URI.
func (s *ImageService) DataURI(ctx context.Context, data []byte, size int) (string, error) {
	resized, err := s.ResizeImage(ctx, data, size, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(resized), nil
}
