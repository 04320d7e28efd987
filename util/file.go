package util

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/http"
	"os"
	"strings"

	"github.com/disintegration/imaging"

	nhttp "github.com/chaos-io/photobooth/util/http"
)

// LoadImage 打开本地图片或下载 http(s) 图片
func LoadImage(ctx context.Context, client nhttp.IClient, location string) (image.Image, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return DownloadImage(ctx, client, location)
	}
	return OpenImage(location)
}

// DownloadImage 下载图片. A nil client uses nhttp.NewHTTPClient.
func DownloadImage(ctx context.Context, client nhttp.IClient, url string) (image.Image, error) {
	if client == nil {
		client = nhttp.NewHTTPClient()
	}

	var imgData []byte
	if err := client.DoHTTPRequest(ctx, &nhttp.RequestParam{
		RequestURI: url,
		Method:     http.MethodGet,
		Response:   &imgData,
	}); err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}

	return imaging.Decode(bytes.NewReader(imgData), imaging.AutoOrientation(true))
}

// OpenImage 打开本地图片
func OpenImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	return imaging.Decode(file, imaging.AutoOrientation(true))
}
