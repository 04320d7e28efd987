package rembg

import (
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"strings"

	"github.com/chaos-io/photobooth/util"
	nhttp "github.com/chaos-io/photobooth/util/http"
)

const (
	GeminiModel          = "gemini-2.5-flash-image"
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

	removePrompt = "Remove the background from this image and return the image with a transparent background."
)

type GeminiRemBG struct {
	apiKey  string
	model   string
	baseURL string
	cli     nhttp.IClient
}

type GeminiOption func(*GeminiRemBG)

func WithGeminiModel(model string) GeminiOption {
	return func(g *GeminiRemBG) {
		if model != "" {
			g.model = model
		}
	}
}

func WithGeminiBaseURL(u string) GeminiOption {
	return func(g *GeminiRemBG) {
		if u != "" {
			g.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithGeminiClient(cli nhttp.IClient) GeminiOption {
	return func(g *GeminiRemBG) { g.cli = cli }
}

func NewGeminiRemBG(apiKey string, opts ...GeminiOption) *GeminiRemBG {
	g := &GeminiRemBG{
		apiKey:  apiKey,
		model:   GeminiModel,
		baseURL: DefaultGeminiBaseURL,
		cli:     nhttp.NewHTTPClient(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type geminiBlob struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *geminiBlob `json:"inlineData,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type generateReq struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		ResponseModalities []string `json:"responseModalities"`
	} `json:"generationConfig"`
}

type generateResp struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
}

func (g *GeminiRemBG) Remove(ctx context.Context, img image.Image) (image.Image, error) {
	uri, err := util.EncodePNGDataURI(img)
	if err != nil {
		return nil, err
	}
	src, err := util.ParseDataURI(uri)
	if err != nil {
		return nil, err
	}

	req := generateReq{Contents: []geminiContent{{
		Role: "user",
		Parts: []geminiPart{
			{Text: removePrompt},
			{InlineData: &geminiBlob{MimeType: src.MimeType, Data: base64.StdEncoding.EncodeToString(src.Data)}},
		},
	}}}
	req.GenerationConfig.ResponseModalities = []string{"TEXT", "IMAGE"}

	resp := &generateResp{}
	reqParam := &nhttp.RequestParam{
		RequestURI: fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, g.model),
		Method:     http.MethodPost,
		Header:     map[string]string{"x-goog-api-key": g.apiKey},
		Body:       req,
		Response:   resp,
	}
	if err := g.cli.DoHTTPRequest(ctx, reqParam); err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	for _, c := range resp.Candidates {
		for _, p := range c.Content.Parts {
			if p.InlineData == nil || !strings.HasPrefix(p.InlineData.MimeType, "image/") {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("decode inline data: %w", err)
			}
			out := &util.DataURI{MimeType: p.InlineData.MimeType, Data: data}
			return out.Image()
		}
		slog.Debug("candidate without image", "finishReason", c.FinishReason)
	}
	return nil, ErrNoImage
}
