package util

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataURI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    *DataURI
		wantErr bool
	}{
		{name: "png", in: "data:image/png;base64,AQID", want: &DataURI{MimeType: "image/png", Data: []byte{1, 2, 3}}},
		{name: "no prefix", in: "image/png;base64,AQID", wantErr: true},
		{name: "no payload", in: "data:image/png;base64", wantErr: true},
		{name: "not base64", in: "data:image/png,AQID", wantErr: true},
		{name: "no mime", in: "data:;base64,AQID", wantErr: true},
		{name: "bad base64", in: "data:image/png;base64,@@@", wantErr: true},
		{name: "empty", in: "data:image/png;base64,", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseDataURI(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDataURI)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestEncodePNGDataURI(t *testing.T) {
	t.Parallel()

	src := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	src.SetNRGBA(1, 1, color.NRGBA{R: 200, G: 10, B: 30, A: 255})

	uri, err := EncodePNGDataURI(src)
	require.NoError(t, err)
	assert.Contains(t, uri, "data:image/png;base64,")

	img, err := DecodeDataURIImage(uri)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, 3, img.Bounds().Dy())

	r, g, b, a := img.At(1, 1).RGBA()
	assert.Equal(t, []uint32{200, 10, 30, 255}, []uint32{r >> 8, g >> 8, b >> 8, a >> 8})
}

func TestDecodeImageWithinPixelBudget(t *testing.T) {
	uri, err := EncodePNGDataURI(image.NewGray(image.Rect(0, 0, 10, 10)))
	require.NoError(t, err)
	d, err := ParseDataURI(uri)
	require.NoError(t, err)

	tests := []struct {
		name      string
		maxPixels int
		wantErr   error
	}{
		{name: "no limit", maxPixels: 0},
		{name: "exactly at the limit", maxPixels: 100},
		{name: "one pixel over", maxPixels: 99, wantErr: ErrImageTooLarge},
		{name: "far over", maxPixels: 1, wantErr: ErrImageTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := DecodeImage(d.Data, tt.maxPixels)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, img)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 10, 10), img.Bounds())
		})
	}

	_, err = DecodeDataURIImageWithin(uri, 50)
	assert.ErrorIs(t, err, ErrImageTooLarge)

	_, err = DecodeImage([]byte("not an image"), 100)
	assert.Error(t, err)
}
