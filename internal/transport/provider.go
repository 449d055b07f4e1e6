package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const defaultSendTimeout = 8 * time.Second

type providerClient struct {
	cfg  ProviderConfig
	http *http.Client
	log  zerolog.Logger
}

func newProvider(cfg ProviderConfig, log zerolog.Logger) (*providerClient, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("provider base_url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &providerClient{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
		log:  log,
	}, nil
}

func (c *providerClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

type sendRequest struct {
	To       string   `json:"to"`
	Body     string   `json:"body,omitempty"`
	Template string   `json:"template,omitempty"`
	Params   []string `json:"params,omitempty"`
	OriginID string   `json:"origin_id,omitempty"`
}

type sendResponse struct {
	ID    string `json:"id"`
	Error string `json:"error,omitempty"`
}

func (c *providerClient) SendText(ctx context.Context, to, text string, opt SendOptions) (Result, error) {
	return c.post(ctx, sendRequest{To: to, Body: text, OriginID: c.origin(opt)})
}

// SendTemplate sends a pre-approved structured template with its positional
// parameter list instead of free text.
func (c *providerClient) SendTemplate(ctx context.Context, to, template string, params []string, opt SendOptions) (Result, error) {
	if strings.TrimSpace(template) == "" {
		return Result{}, errors.New("template name is required")
	}
	return c.post(ctx, sendRequest{To: to, Template: template, Params: params, OriginID: c.origin(opt)})
}

func (c *providerClient) origin(opt SendOptions) string {
	if opt.OriginID != "" {
		return opt.OriginID
	}
	return c.cfg.DefaultOrigin
}

func (c *providerClient) post(ctx context.Context, reqBody sendRequest) (Result, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return Result{}, err
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("provider send: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var out sendResponse
		if json.Unmarshal(body, &out) == nil && out.Error != "" {
			return Result{}, fmt.Errorf("provider send: status %d: %s", resp.StatusCode, out.Error)
		}
		return Result{}, fmt.Errorf("provider send: status %d", resp.StatusCode)
	}

	var out sendResponse
	if err := json.Unmarshal(body, &out); err != nil {
		// 2xx with an unreadable body still counts as delivered.
		c.log.Debug().Err(err).Msg("provider response body unreadable")
		return Result{}, nil
	}
	return Result{ProviderID: out.ID}, nil
}
