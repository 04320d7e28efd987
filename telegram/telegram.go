// Package telegram delivers photos to a Telegram chat through the Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/chaos-io/photobooth/util"
	nhttp "github.com/chaos-io/photobooth/util/http"
)

const (
	DefaultAPIURL = "https://api.telegram.org"
	PhotoFilename = "stumble-image.png"

	msgMissingCredentials = "TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set in .env file."
	msgSent               = "Photo sent successfully to Telegram!"
)

type Input struct {
	PhotoDataURI string `json:"photoDataUri"`
	Caption      string `json:"caption"`
}

type Output struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Sender struct {
	token  string
	chatID string
	apiURL string
	cli    nhttp.IClient
}

type Option func(*Sender)

func WithAPIURL(u string) Option {
	return func(s *Sender) {
		if u != "" {
			s.apiURL = strings.TrimRight(u, "/")
		}
	}
}

func WithClient(cli nhttp.IClient) Option {
	return func(s *Sender) { s.cli = cli }
}

func NewSender(token, chatID string, opts ...Option) *Sender {
	s := &Sender{
		token:  token,
		chatID: chatID,
		apiURL: DefaultAPIURL,
		cli:    nhttp.NewHTTPClient(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type sendPhotoResp struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send posts the photo once. Failures are reported in Output, never as an
// error, and are not retried.
func (s *Sender) Send(ctx context.Context, in Input) Output {
	if s.token == "" || s.chatID == "" {
		slog.Error(msgMissingCredentials)
		return Output{Message: msgMissingCredentials}
	}

	resp, err := s.sendPhoto(ctx, in)
	if err != nil {
		slog.Error("error sending to telegram", "err", err)
		return Output{Message: err.Error()}
	}
	if !resp.OK {
		slog.Error("telegram api error", "description", resp.Description)
		return Output{Message: "Failed to send photo: " + resp.Description}
	}
	return Output{Success: true, Message: msgSent}
}

func (s *Sender) sendPhoto(ctx context.Context, in Input) (*sendPhotoResp, error) {
	photo, err := util.ParseDataURI(in.PhotoDataURI)
	if err != nil {
		return nil, err
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	_ = writer.WriteField("chat_id", s.chatID)
	part, err := writer.CreateFormFile("photo", PhotoFilename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(photo.Data); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	_ = writer.WriteField("caption", in.Caption)
	_ = writer.Close()

	resp := &sendPhotoResp{}
	reqParam := &nhttp.RequestParam{
		RequestURI: s.apiURL + "/bot" + s.token + "/sendPhoto",
		Method:     http.MethodPost,
		Header:     map[string]string{"Content-Type": writer.FormDataContentType()},
		Body:       body,
		Response:   resp,
	}
	err = s.cli.DoHTTPRequest(ctx, reqParam)

	// The Bot API answers failures with a 4xx and the usual {"ok":false} body.
	var statusErr *nhttp.StatusError
	if errors.As(err, &statusErr) && json.Unmarshal(statusErr.Body, resp) == nil && resp.Description != "" {
		return resp, nil
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}
