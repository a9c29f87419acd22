package service

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"net/http"
	"strings"

	"postboard/internal/config"
	"postboard/internal/models"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultImageMaxSizeMB = 5
	MasterMaxSize         = 2048
	JPEGQuality           = 82
	WebPQuality           = 70
	// MaxImagePixels caps the declared raster size checked before decoding.
	MaxImagePixels = 40_000_000
)

// ImageService turns image data URLs attached to a draft into bounded,
// re-encoded data URLs. Remote http(s) references are left untouched.
type ImageService struct {
	maxSizeBytes int64
}

func NewImageService(cfg *config.Config) *ImageService {
	maxSizeMB := DefaultImageMaxSizeMB
	if cfg != nil && cfg.ImageMaxSizeMB > 0 {
		maxSizeMB = cfg.ImageMaxSizeMB
	}
	return &ImageService{maxSizeBytes: int64(maxSizeMB) * 1024 * 1024}
}

// NormalizeAll normalizes every reference, failing on the first bad one.
func (s *ImageService) NormalizeAll(refs []string) ([]string, error) {
	out := make([]string, 0, len(refs))
	for i, ref := range refs {
		normalized, err := s.Normalize(ref)
		if err != nil {
			return nil, models.NewValidationError(fmt.Sprintf("image %d: %s", i+1, err.Error()))
		}
		out = append(out, normalized)
	}
	return out, nil
}

// Normalize decodes a base64 image data URL, scales it to fit
// MasterMaxSize and returns the smaller of its WebP and JPEG encodings.
func (s *ImageService) Normalize(ref string) (string, error) {
	if !strings.HasPrefix(ref, "data:") {
		return ref, nil
	}
	header, payload, ok := strings.Cut(ref, ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return "", fmt.Errorf("malformed data URL")
	}

	content, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("invalid base64 payload")
	}
	if len(content) == 0 {
		return "", fmt.Errorf("empty image")
	}
	if int64(len(content)) > s.maxSizeBytes {
		return "", fmt.Errorf("image too large (max %dMB)", s.maxSizeBytes/(1024*1024))
	}
	if !isAllowedImageMIME(http.DetectContentType(content)) {
		return "", fmt.Errorf("invalid image type")
	}

	dims, _, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("invalid image file")
	}
	if dims.Width <= 0 || dims.Height <= 0 || int64(dims.Width)*int64(dims.Height) > MaxImagePixels {
		return "", fmt.Errorf("image dimensions too large (max %d megapixels)", MaxImagePixels/1_000_000)
	}

	decoded, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("invalid image file")
	}
	master := resizeToFit(decoded, MasterMaxSize, MasterMaxSize)

	encodedWebP, err := encodeWebP(master, WebPQuality)
	if err != nil {
		return "", fmt.Errorf("encode webp: %w", err)
	}
	if !isOpaque(master) {
		return dataURL("image/webp", encodedWebP), nil
	}
	encodedJPEG, err := encodeJPEG(master, JPEGQuality)
	if err == nil && len(encodedJPEG) < len(encodedWebP) {
		return dataURL("image/jpeg", encodedJPEG), nil
	}
	return dataURL("image/webp", encodedWebP), nil
}

func dataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := float64(maxWidth) / float64(w)
	if s := float64(maxHeight) / float64(h); s < scale {
		scale = s
	}
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}

func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0])) {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}
