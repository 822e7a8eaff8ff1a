package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultAPIEndpoint = "https://api.resend.com/emails"

type APIConfig struct {
	Endpoint string
	APIKey   string
	From     string
	Client   *http.Client
}

// APISender posts messages to a Resend compatible HTTP API.
type APISender struct {
	cfg APIConfig
}

func NewAPISender(cfg APIConfig) *APISender {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultAPIEndpoint
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 10 * time.Second}
	}
	return &APISender{cfg: cfg}
}

func (s *APISender) Name() string { return "api" }

type apiRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type apiResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

func (s *APISender) Send(ctx context.Context, msg Message) (Result, error) {
	payload, err := json.Marshal(apiRequest{
		From:    s.cfg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.cfg.Client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("mail api request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var parsed apiResponse
	_ = json.Unmarshal(body, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if parsed.Message != "" {
			return Result{}, fmt.Errorf("mail api returned %d: %s", resp.StatusCode, parsed.Message)
		}
		return Result{}, fmt.Errorf("mail api returned %d", resp.StatusCode)
	}

	return Result{Delivered: true, ID: parsed.ID}, nil
}
