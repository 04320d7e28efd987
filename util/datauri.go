package util

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
)

var (
	ErrInvalidDataURI = errors.New("invalid data uri")
	ErrImageTooLarge  = errors.New("image too large")
)

// DataURI is a self-describing embedded image: data:<mime>;base64,<payload>.
type DataURI struct {
	MimeType string
	Data     []byte
}

// ParseDataURI accepts only base64 encoded data URIs that carry a MIME type.
func ParseDataURI(s string) (*DataURI, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), "data:")
	if !ok {
		return nil, fmt.Errorf("%w: missing data: prefix", ErrInvalidDataURI)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("%w: missing payload", ErrInvalidDataURI)
	}
	mime, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return nil, fmt.Errorf("%w: payload is not base64", ErrInvalidDataURI)
	}
	if mime == "" {
		return nil, fmt.Errorf("%w: missing mime type", ErrInvalidDataURI)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidDataURI)
	}
	return &DataURI{MimeType: mime, Data: data}, nil
}

func (d *DataURI) String() string {
	return "data:" + d.MimeType + ";base64," + base64.StdEncoding.EncodeToString(d.Data)
}

func (d *DataURI) Image() (image.Image, error) {
	return d.ImageWithin(0)
}

// ImageWithin decodes the payload, refusing images of more than maxPixels
// pixels before any pixel data is allocated. maxPixels <= 0 means no limit.
func (d *DataURI) ImageWithin(maxPixels int) (image.Image, error) {
	img, err := DecodeImage(d.Data, maxPixels)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", d.MimeType, err)
	}
	return img, nil
}

// DecodeImage checks the header dimensions against maxPixels and then decodes
// data. maxPixels <= 0 means no limit.
func DecodeImage(data []byte, maxPixels int) (image.Image, error) {
	if maxPixels > 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > maxPixels/cfg.Height {
			return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, cfg.Width, cfg.Height, maxPixels)
		}
	}
	return imaging.Decode(bytes.NewReader(data))
}

// DecodeDataURIImage parses s and decodes the embedded image.
func DecodeDataURIImage(s string) (image.Image, error) {
	return DecodeDataURIImageWithin(s, 0)
}

// DecodeDataURIImageWithin is DecodeDataURIImage with a pixel budget.
func DecodeDataURIImageWithin(s string, maxPixels int) (image.Image, error) {
	d, err := ParseDataURI(s)
	if err != nil {
		return nil, err
	}
	return d.ImageWithin(maxPixels)
}

// EncodePNGDataURI serialises img the way a canvas toDataURL("image/png") would.
func EncodePNGDataURI(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	d := DataURI{MimeType: "image/png", Data: buf.Bytes()}
	return d.String(), nil
}
