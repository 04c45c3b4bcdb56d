package assets

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"

	"github.com/tatsuyakari1203/wp-crawl-tool/pkg/fileutil"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// optimizeImage decodes src, scales it to fit inside maxWidth x maxHeight
// without enlarging, and writes it to dst as JPEG.
func optimizeImage(src string, dst string) *AssetsError {
	file, err := os.Open(src)
	if err != nil {
		return &AssetsError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseOptimizationFailure,
		}
	}
	img, format, err := image.Decode(file)
	file.Close()
	if err != nil {
		return &AssetsError{
			Message:   fmt.Sprintf("decode %s: %v", src, err),
			Retryable: false,
			Cause:     ErrCauseOptimizationFailure,
		}
	}

	bounds := img.Bounds()
	width, height := fitInside(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)
	scaled := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return &AssetsError{
			Message:   fmt.Sprintf("encode %s from %s: %v", dst, format, err),
			Retryable: false,
			Cause:     ErrCauseOptimizationFailure,
		}
	}
	if writeErr := fileutil.WriteFile(dst, buf.Bytes()); writeErr != nil {
		return &AssetsError{
			Message:   writeErr.Error(),
			Retryable: false,
			Cause:     ErrCauseOptimizationFailure,
		}
	}
	return nil
}

// fitInside keeps the aspect ratio and never enlarges.
func fitInside(width, height, boundW, boundH int) (int, int) {
	if width <= boundW && height <= boundH {
		return width, height
	}
	scaleW := float64(boundW) / float64(width)
	scaleH := float64(boundH) / float64(height)
	scale := min(scaleW, scaleH)
	return max(1, int(float64(width)*scale+0.5)), max(1, int(float64(height)*scale+0.5))
}
