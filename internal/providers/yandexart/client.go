package yandexart

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"artbot/internal/domain"
	"artbot/internal/infra"
)

// ErrMissingCredentials indicates the client was configured without an API
// key or folder id.
var ErrMissingCredentials = errors.New("yandexart: api key and folder id are required")

// Options configures the Yandex ART client.
type Options struct {
	APIKey         string
	FolderID       string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the Yandex Foundation Models image
// generation API. Generation runs as a long operation: the async endpoint
// returns an operation id which is polled until done.
type Client struct {
	apiKey     string
	folderID   string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// JobHandle is the operation id assigned to a submitted generation.
type JobHandle string

// Asset is the decoded image of a finished operation.
type Asset struct {
	Data []byte
	MIME string
}

type generateRequest struct {
	ModelURI          string            `json:"modelUri"`
	GenerationOptions generationOptions `json:"generationOptions"`
	Messages          []message         `json:"messages"`
}

type generationOptions struct {
	AspectRatio aspectRatio `json:"aspectRatio"`
}

type aspectRatio struct {
	WidthRatio  string `json:"widthRatio"`
	HeightRatio string `json:"heightRatio"`
}

type message struct {
	Weight string `json:"weight"`
	Text   string `json:"text"`
}

type operation struct {
	ID       string      `json:"id"`
	Done     bool        `json:"done"`
	Error    *opError    `json:"error"`
	Response *opResponse `json:"response"`
}

type opError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type opResponse struct {
	Image string `json:"image"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	folderID := strings.TrimSpace(opts.FolderID)
	if apiKey == "" || folderID == "" {
		return nil, ErrMissingCredentials
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://llm.api.cloud.yandex.net"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		apiKey:     apiKey,
		folderID:   folderID,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

func (c *Client) authHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Api-Key "+c.apiKey)
	req.Header.Set("x-folder-id", c.folderID)
}

// Submit starts an asynchronous generation and returns its operation id.
// Credentials travel as request headers; a 401/403 response maps to the
// credential error, anything else to a submission error.
func (c *Client) Submit(ctx context.Context, prompt string, params domain.GenerationParams) (JobHandle, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("yandexart: empty prompt: %w", domain.ErrSubmission)
	}

	payload := generateRequest{
		ModelURI: "art://" + c.folderID + "/yandex-art/latest",
		GenerationOptions: generationOptions{
			AspectRatio: aspectRatio{
				WidthRatio:  fmt.Sprintf("%d", params.Width),
				HeightRatio: fmt.Sprintf("%d", params.Height),
			},
		},
		Messages: []message{{Weight: "1", Text: prompt}},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("yandexart: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/foundationModels/v1/imageGenerationAsync", bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("yandexart: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("yandexart: %v: %w", err, domain.ErrSubmission)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("yandexart: submit status %d: %w", resp.StatusCode, domain.ErrAuth)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", fmt.Errorf("yandexart: submit status %d: %w", resp.StatusCode, domain.ErrSubmission)
	}

	var op operation
	if err := json.NewDecoder(resp.Body).Decode(&op); err != nil {
		return "", fmt.Errorf("yandexart: decode operation: %w", domain.ErrBadResponse)
	}
	if op.ID == "" {
		return "", fmt.Errorf("yandexart: operation has no id: %w", domain.ErrBadResponse)
	}

	c.logger.Debug().Str("operation", op.ID).Msg("yandexart: generation started")
	return JobHandle(op.ID), nil
}

// Poll queries the operation once. A finished operation carries either the
// base64 image or an error description.
func (c *Client) Poll(ctx context.Context, handle JobHandle) (domain.JobStatus, *Asset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/operations/"+string(handle), nil)
	if err != nil {
		return "", nil, fmt.Errorf("yandexart: build request: %w", err)
	}
	c.authHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("yandexart: poll operation %s: %w", handle, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("yandexart: operation endpoint returned %d: %w", resp.StatusCode, domain.ErrBadResponse)
	}

	var op operation
	if err := json.NewDecoder(resp.Body).Decode(&op); err != nil {
		return "", nil, fmt.Errorf("yandexart: decode operation: %w", domain.ErrBadResponse)
	}

	if !op.Done {
		return domain.JobStatusPending, nil, nil
	}
	if op.Error != nil {
		c.logger.Debug().Str("operation", string(handle)).Str("reason", op.Error.Message).Msg("yandexart: generation failed")
		return domain.JobStatusFailed, nil, nil
	}
	if op.Response == nil || op.Response.Image == "" {
		return "", nil, fmt.Errorf("yandexart: done without image: %w", domain.ErrBadResponse)
	}
	data, err := base64.StdEncoding.DecodeString(op.Response.Image)
	if err != nil {
		return "", nil, fmt.Errorf("yandexart: decode image: %w", domain.ErrBadResponse)
	}
	return domain.JobStatusSucceeded, &Asset{Data: data, MIME: "image/jpeg"}, nil
}

// WaitForResult polls the operation at a fixed interval until it succeeds,
// fails, or the attempt budget runs out.
func (c *Client) WaitForResult(ctx context.Context, handle JobHandle, interval time.Duration, maxAttempts int) (*Asset, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(interval):
			}
		}

		status, asset, err := c.Poll(ctx, handle)
		if err != nil {
			return nil, err
		}
		switch status {
		case domain.JobStatusSucceeded:
			return asset, nil
		case domain.JobStatusFailed:
			return nil, fmt.Errorf("yandexart: operation %s: %w", handle, domain.ErrGeneration)
		}
	}
	return nil, fmt.Errorf("yandexart: operation %s still pending after %d polls: %w", handle, maxAttempts, domain.ErrTimeout)
}
