// Package firecrawl is a small client for Firecrawl's structured extract API.
package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/letieu/agent-directory/config"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

var (
	ErrExtractFailed  = eris.New("firecrawl: extraction failed")
	ErrExtractTimeout = eris.New("firecrawl: extraction did not complete in time")
)

const (
	statusProcessing = "processing"
	statusCompleted  = "completed"
	statusFailed     = "failed"
	statusCancelled  = "cancelled"
)

type Client struct {
	baseURL      string
	apiKey       string
	pollInterval time.Duration
	timeout      time.Duration
	httpClient   *http.Client
	logger       *zap.Logger
}

type ExtractRequest struct {
	URLs   []string       `json:"urls"`
	Prompt string         `json:"prompt,omitempty"`
	Schema map[string]any `json:"schema,omitempty"`
}

type ExtractResponse struct {
	Success bool            `json:"success"`
	ID      string          `json:"id,omitempty"`
	Status  string          `json:"status,omitempty"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		baseURL:      cfg.Firecrawl.BaseURL,
		apiKey:       cfg.Firecrawl.APIKey,
		pollInterval: time.Duration(cfg.Firecrawl.PollIntervalMs) * time.Millisecond,
		timeout:      time.Duration(cfg.Firecrawl.TimeoutSecs) * time.Second,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		logger:       logger,
	}
}

// Extract submits an extract job and polls it until it completes. A job
// that reports failure comes back as ErrExtractFailed.
func (c *Client) Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var started ExtractResponse
	if err := c.do(ctx, http.MethodPost, "/v1/extract", req, &started); err != nil {
		return nil, err
	}
	if !started.Success {
		return &started, eris.Wrap(ErrExtractFailed, started.Error)
	}
	// Some deployments answer synchronously.
	if started.ID == "" || started.Status == statusCompleted {
		return &started, nil
	}

	log := c.logger.With(zap.String("job_id", started.ID), zap.Strings("urls", req.URLs))
	log.Debug("extract job started")

	interval := c.pollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, ErrExtractTimeout
			}
			return nil, eris.Wrap(ctx.Err(), "firecrawl: poll extract job")
		case <-ticker.C:
		}

		var job ExtractResponse
		if err := c.do(ctx, http.MethodGet, "/v1/extract/"+started.ID, nil, &job); err != nil {
			return nil, err
		}

		switch job.Status {
		case statusCompleted:
			log.Debug("extract job completed")
			return &job, nil
		case statusFailed, statusCancelled:
			job.Success = false
			return &job, eris.Wrapf(ErrExtractFailed, "job %s %s: %s", started.ID, job.Status, job.Error)
		case statusProcessing, "":
			if !job.Success {
				return &job, eris.Wrap(ErrExtractFailed, job.Error)
			}
		default:
			log.Warn("unknown extract job status", zap.String("status", job.Status))
		}
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return eris.Wrap(err, "firecrawl: marshal request")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return eris.Wrap(err, "firecrawl: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return eris.Wrap(err, "firecrawl: send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return eris.Wrap(ErrExtractFailed, fmt.Sprintf("status %d: %s", resp.StatusCode, msg))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return eris.Wrap(err, "firecrawl: decode response")
	}
	return nil
}
