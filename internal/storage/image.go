package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/nfnt/resize"
)

// ErrUnsupportedMedia 表示上传文件类型不被支持。
var ErrUnsupportedMedia = errors.New("storage: unsupported media type / 不支持的文件类型")

var allowedMedia = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// Detected describes sniffed upload content.
type Detected struct {
	MIME      string
	Extension string
}

// IsImage reports whether thumbnails can be rendered for the content.
func (d Detected) IsImage() bool {
	switch d.MIME {
	case "image/jpeg", "image/png", "image/gif":
		return true
	}
	return false
}

// Detect sniffs the content type and rejects anything outside the allow list.
func Detect(data []byte) (Detected, error) {
	mtype := mimetype.Detect(data)
	for m := mtype; m != nil; m = m.Parent() {
		if ext, ok := allowedMedia[m.String()]; ok {
			return Detected{MIME: m.String(), Extension: ext}, nil
		}
	}
	return Detected{}, fmt.Errorf("%w: %s", ErrUnsupportedMedia, mtype.String())
}

// Thumbnail scales an image to the given width preserving aspect ratio and
// encodes it in its source format. Images narrower than width are re-encoded as-is.
func Thumbnail(r io.Reader, width uint) ([]byte, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("storage: decode image: %w", err)
	}
	if width > 0 && uint(img.Bounds().Dx()) > width {
		img = resize.Resize(width, 0, img, resize.Lanczos3)
	}
	var buf bytes.Buffer
	var contentType string
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85})
		contentType = "image/jpeg"
	case "png":
		err = png.Encode(&buf, img)
		contentType = "image/png"
	case "gif":
		err = gif.Encode(&buf, img, nil)
		contentType = "image/gif"
	default:
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedMedia, format)
	}
	if err != nil {
		return nil, "", fmt.Errorf("storage: encode thumbnail: %w", err)
	}
	return buf.Bytes(), contentType, nil
}
