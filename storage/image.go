package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register PNG decoding for uploaded photos

	"golang.org/x/image/draw"
)

// Canonical dimensions expected by the try-on model.
const (
	TryOnWidth  = 768
	TryOnHeight = 1024
)

const (
	jpegQuality      = 85
	tryOnJPEGQuality = 90
)

// NormalizeImage re-encodes an uploaded image as JPEG without resizing.
// Used for garment and profile images.
func NormalizeImage(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// NormalizeTryOnImage cover-resizes a person photo to the canonical
// 768x1024 frame and re-encodes it as JPEG. The crop is centered.
func NormalizeTryOnImage(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	resized := coverResize(img, TryOnWidth, TryOnHeight)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: tryOnJPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// coverResize scales img so it fully covers a w x h frame, then crops the
// overflow evenly on both sides.
func coverResize(img image.Image, w, h int) image.Image {
	srcB := img.Bounds()
	srcW, srcH := srcB.Dx(), srcB.Dy()

	// Scale factor that covers the target frame in both dimensions.
	scaleW := float64(w) / float64(srcW)
	scaleH := float64(h) / float64(srcH)
	scale := scaleW
	if scaleH > scale {
		scale = scaleH
	}

	scaledW := int(float64(srcW)*scale + 0.5)
	scaledH := int(float64(srcH)*scale + 0.5)
	if scaledW < w {
		scaledW = w
	}
	if scaledH < h {
		scaledH = h
	}

	scaled := image.NewRGBA(image.Rect(0, 0, scaledW, scaledH))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, srcB, draw.Over, nil)

	offX := (scaledW - w) / 2
	offY := (scaledH - h) / 2

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Copy(out, image.Point{}, scaled, image.Rect(offX, offY, offX+w, offY+h), draw.Src, nil)
	return out
}
