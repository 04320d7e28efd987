package util

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nhttp "github.com/chaos-io/photobooth/util/http"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestDownloadImage(t *testing.T) {
	t.Parallel()

	img := pngBytes(t, 12, 8)
	mux := http.NewServeMux()
	mux.HandleFunc("/ok.png", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write(img)
	})
	mux.HandleFunc("/missing.png", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/slow.png", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	tests := []struct {
		name       string
		client     nhttp.IClient
		path       string
		wantSize   image.Point
		wantStatus int
		wantErr    bool
	}{
		{name: "成功下载", client: nhttp.NewHTTPClient(), path: "/ok.png", wantSize: image.Pt(12, 8)},
		{name: "默认客户端", path: "/ok.png", wantSize: image.Pt(12, 8)},
		{name: "图片不存在", client: nhttp.NewHTTPClient(), path: "/missing.png", wantStatus: http.StatusNotFound, wantErr: true},
		{name: "请求超时", client: nhttp.NewHTTPClientWith(&http.Client{Timeout: 50 * time.Millisecond}), path: "/slow.png", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DownloadImage(context.Background(), tt.client, srv.URL+tt.path)
			if tt.wantErr {
				require.Error(t, err)
				if tt.wantStatus != 0 {
					var se *nhttp.StatusError
					require.True(t, errors.As(err, &se))
					assert.Equal(t, tt.wantStatus, se.StatusCode)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSize, got.Bounds().Size())
		})
	}
}

func TestLoadImage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "still.png")
	require.NoError(t, os.WriteFile(path, pngBytes(t, 5, 4), 0o600))

	img, err := LoadImage(context.Background(), nil, path)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(5, 4), img.Bounds().Size())

	_, err = LoadImage(context.Background(), nil, filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
