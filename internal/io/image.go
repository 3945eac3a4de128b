package ioutils

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration
	"os"

	"golang.org/x/image/draw"
)

// ImageService prepares station artwork for embedding in recordings.
//
// Stations rarely publish cover art in a tag-friendly shape, so the
// service can resize oversized images and normalize formats to JPEG
// before the Tagger embeds them.
//
// Example usage:
//
//	svc := NewImageService()
//	art, err := svc.LoadStationArt(ctx, "/config/bsr-logo.png", 1000, true)
//	if err != nil {
//	    log.Printf("artwork unavailable: %v", err)
//	}
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// LoadStationArt reads an artwork file and prepares it for tagging.
//
// A positive maxSize scales the image to fit within maxSize×maxSize
// (aspect ratio preserved) and re-encodes it as JPEG. Otherwise, when
// toJPEG is set the image is converted without resizing. With neither
// applied the file bytes pass through untouched, so only use that for
// artwork that is already player-friendly.
func (s *ImageService) LoadStationArt(ctx context.Context, path string, maxSize int, toJPEG bool) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if maxSize > 0 {
		return s.ResizeImage(ctx, data, maxSize, maxSize)
	}
	if toJPEG {
		return s.ConvertToJPEG(ctx, data)
	}
	return data, nil
}

// ResizeImage scales an image to fit within maxWidth×maxHeight, keeping
// the aspect ratio, and returns it as JPEG bytes. Images already inside
// the bounds are re-encoded at their original size.
//
// Scaling uses the Catmull-Rom kernel, which keeps station logos sharp
// at the cost of some CPU.
func (s *ImageService) ResizeImage(ctx context.Context, data []byte, maxWidth, maxHeight int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := fitWithin(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	return encodeJPEG(dst)
}

// ConvertToJPEG re-encodes an image as JPEG without resizing it.
//
// ID3 cover art embedding assumes JPEG bytes, and JPEG keeps merged
// recordings smaller than PNG logos would.
func (s *ImageService) ConvertToJPEG(ctx context.Context, data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return encodeJPEG(img)
}

// fitWithin shrinks width×height to fit the maximum box, preserving the
// aspect ratio. Dimensions already inside the box come back unchanged.
func fitWithin(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}

	ratio := float64(width) / float64(height)
	if float64(maxWidth)/float64(maxHeight) > ratio {
		return int(float64(maxHeight) * ratio), maxHeight
	}
	return maxWidth, int(float64(maxWidth) / ratio)
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
