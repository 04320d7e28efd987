package rembg

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"image"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/chaos-io/photobooth/util"
	nhttp "github.com/chaos-io/photobooth/util/http"
)

const (
	BiRefNetModel = "BiRefNet"

	loadImageNode       = "1"
	defaultPollInterval = 500 * time.Millisecond
)

//go:embed workflow.json
var workflowData []byte

// BiRefNetRemBG runs the BiRefNet matting workflow on a ComfyUI server.
type BiRefNetRemBG struct {
	baseURL      string
	cli          nhttp.IClient
	pollInterval time.Duration
}

func NewBiRefNetRemBG(baseURL string) *BiRefNetRemBG {
	return &BiRefNetRemBG{
		baseURL:      strings.TrimRight(baseURL, "/"),
		cli:          nhttp.NewHTTPClient(),
		pollInterval: defaultPollInterval,
	}
}

func (b *BiRefNetRemBG) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	uploaded, err := b.uploadImage(ctx, img)
	if err != nil {
		return nil, err
	}

	promptID, err := b.prompt(ctx, uploaded.Name)
	if err != nil {
		return nil, err
	}

	out, err := b.waitOutput(ctx, promptID)
	if err != nil {
		return nil, err
	}

	return b.view(ctx, out)
}

type uploadImageResp struct {
	Name      string `json:"name"`
	Subfolder string `json:"subfolder"`
	Type      string `json:"type"`
}

/*
	curl -X POST "$BASE_URL/api/upload/image" \
	  -F "image=@my_image.png" \
	  -F "type=input" \
	  -F "overwrite=true"

{"name": "my_image1.png", "subfolder": "", "type": "input"}
*/
func (b *BiRefNetRemBG) uploadImage(ctx context.Context, img image.Image) (*uploadImageResp, error) {
	uri, err := util.EncodePNGDataURI(img)
	if err != nil {
		return nil, err
	}
	src, err := util.ParseDataURI(uri)
	if err != nil {
		return nil, err
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("image", "photobooth-"+ksuid.New().String()+".png")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(src.Data); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}

	_ = writer.WriteField("type", "input")
	_ = writer.WriteField("overwrite", "true")
	_ = writer.Close()

	resp := &uploadImageResp{}
	reqParam := &nhttp.RequestParam{
		RequestURI: b.baseURL + "/api/upload/image",
		Method:     http.MethodPost,
		Header:     map[string]string{"Content-Type": writer.FormDataContentType()},
		Body:       body,
		Response:   resp,
	}
	if err := b.cli.DoHTTPRequest(ctx, reqParam); err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	if resp.Name == "" {
		return nil, fmt.Errorf("upload image: empty name in response")
	}

	slog.Debug("get the response", "response", resp)

	return resp, nil
}

type promptResp struct {
	PromptID string `json:"prompt_id"`
	Number   int    `json:"number"`
}

/*
	curl -X POST "$BASE_URL/api/prompt" \
	  -H "Content-Type: application/json" \
	  -d '{"prompt": '"$(cat workflow.json)"'}'
*/
func (b *BiRefNetRemBG) prompt(ctx context.Context, imageName string) (string, error) {
	wk := map[string]map[string]any{}
	if err := json.Unmarshal(workflowData, &wk); err != nil {
		return "", fmt.Errorf("unmarshal workflow data: %w", err)
	}
	inputs, ok := wk[loadImageNode]["inputs"].(map[string]any)
	if !ok {
		return "", fmt.Errorf("workflow has no load image node %q", loadImageNode)
	}
	inputs["image"] = imageName

	resp := &promptResp{}
	reqParam := &nhttp.RequestParam{
		RequestURI: b.baseURL + "/api/prompt",
		Method:     http.MethodPost,
		Body:       map[string]any{"prompt": wk},
		Response:   resp,
	}
	if err := b.cli.DoHTTPRequest(ctx, reqParam); err != nil {
		return "", fmt.Errorf("queue prompt: %w", err)
	}
	if resp.PromptID == "" {
		return "", fmt.Errorf("queue prompt: empty prompt id")
	}

	slog.Debug("get the response", "response", resp)

	return resp.PromptID, nil
}

type outputImage struct {
	Filename  string `json:"filename"`
	Subfolder string `json:"subfolder"`
	Type      string `json:"type"`
}

type historyEntry struct {
	Status struct {
		StatusStr string `json:"status_str"`
		Completed bool   `json:"completed"`
	} `json:"status"`
	Outputs map[string]struct {
		Images []outputImage `json:"images"`
	} `json:"outputs"`
}

// waitOutput polls /api/history until the prompt finishes or ctx is done.
func (b *BiRefNetRemBG) waitOutput(ctx context.Context, promptID string) (outputImage, error) {
	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	for {
		history := map[string]historyEntry{}
		reqParam := &nhttp.RequestParam{
			RequestURI: b.baseURL + "/api/history/" + url.PathEscape(promptID),
			Method:     http.MethodGet,
			Response:   &history,
		}
		if err := b.cli.DoHTTPRequest(ctx, reqParam); err != nil {
			return outputImage{}, fmt.Errorf("get history: %w", err)
		}

		if entry, ok := history[promptID]; ok {
			if entry.Status.StatusStr == "error" {
				return outputImage{}, fmt.Errorf("prompt %s failed", promptID)
			}
			for _, out := range entry.Outputs {
				if len(out.Images) > 0 {
					return out.Images[0], nil
				}
			}
			if entry.Status.Completed {
				return outputImage{}, ErrNoImage
			}
		}

		select {
		case <-ctx.Done():
			return outputImage{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (b *BiRefNetRemBG) view(ctx context.Context, out outputImage) (image.Image, error) {
	q := url.Values{}
	q.Set("filename", out.Filename)
	q.Set("subfolder", out.Subfolder)
	q.Set("type", out.Type)

	var data []byte
	reqParam := &nhttp.RequestParam{
		RequestURI: b.baseURL + "/api/view?" + q.Encode(),
		Method:     http.MethodGet,
		Response:   &data,
	}
	if err := b.cli.DoHTTPRequest(ctx, reqParam); err != nil {
		return nil, fmt.Errorf("fetch output: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNoImage
	}

	d := &util.DataURI{MimeType: "image/png", Data: data}
	return d.Image()
}
