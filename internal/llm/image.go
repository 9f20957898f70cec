// Package llm - image.go prepares scanned images for upload: oversized scans
// are downscaled and re-encoded as JPEG before being sent to the model.
package llm

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	// Register decoders for the formats site phones and scanners produce.
	_ "image/gif"
	_ "image/png"
)

// maxImageDimension is the longest side allowed before downscaling. Vision
// models charge by tile and large construction-site scans are routinely
// 4000px+, so anything beyond this is resized.
const maxImageDimension = 2048

// jpegQuality balances OCR legibility against upload size.
const jpegQuality = 85

// PrepareImage downscales an image so its longest side is at most
// maxImageDimension and re-encodes it as JPEG. Images already small enough
// and already JPEG are passed through untouched.
func PrepareImage(data []byte) ([]byte, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	longest := width
	if height > longest {
		longest = height
	}

	if longest <= maxImageDimension && format == "jpeg" {
		return data, "image/jpeg", nil
	}

	if longest > maxImageDimension {
		scale := float64(maxImageDimension) / float64(longest)
		img = downscale(img, int(float64(width)*scale), int(float64(height)*scale))
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, "", fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}

// downscale resamples with nearest-neighbor. Checkbox marks survive this
// fine; the extraction model does not need interpolated scans.
func downscale(src image.Image, width, height int) image.Image {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	srcBounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		srcY := srcBounds.Min.Y + y*srcBounds.Dy()/height
		for x := 0; x < width; x++ {
			srcX := srcBounds.Min.X + x*srcBounds.Dx()/width
			dst.Set(x, y, src.At(srcX, srcY))
		}
	}
	return dst
}
