package fusionbrain

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"artbot/internal/domain"
	"artbot/internal/infra"
)

// ErrMissingCredentials indicates the client was configured without the
// X-Key/X-Secret pair.
var ErrMissingCredentials = errors.New("fusionbrain: api key and secret key are required")

// Options configures the FusionBrain (Kandinsky) client.
type Options struct {
	APIKey         string
	SecretKey      string
	BaseURL        string
	StylesURL      string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the FusionBrain text-to-image API. The API is
// job based: a submission returns an opaque uuid which is then polled until
// the service reports a terminal status.
type Client struct {
	apiKey     string
	secretKey  string
	baseURL    string
	stylesURL  string
	httpClient *http.Client
	logger     *infra.Logger

	mu         sync.Mutex
	pipelineID string
}

// JobHandle is the opaque identifier FusionBrain assigns to a submitted job.
type JobHandle string

// Asset is the decoded image returned for a succeeded job.
type Asset struct {
	Data []byte
	MIME string
}

// Style is one entry of the public style catalog.
type Style struct {
	Title string
	Name  string
}

type pipelineInfo struct {
	ID string `json:"id"`
}

type runResponse struct {
	UUID string `json:"uuid"`
}

type statusResponse struct {
	UUID   string `json:"uuid"`
	Status string `json:"status"`
	Result struct {
		Files []string `json:"files"`
	} `json:"result"`
	ErrorDescription string `json:"errorDescription"`
}

type styleEntry struct {
	Name    string `json:"name"`
	TitleEn string `json:"titleEn"`
}

type runParams struct {
	Type           string         `json:"type"`
	Style          string         `json:"style"`
	NumImages      int            `json:"numImages"`
	Width          int            `json:"width"`
	Height         int            `json:"height"`
	GenerateParams generateParams `json:"generateParams"`
}

type generateParams struct {
	Query string `json:"query"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	secretKey := strings.TrimSpace(opts.SecretKey)
	if apiKey == "" || secretKey == "" {
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
		baseURL = "https://api-key.fusionbrain.ai"
	}
	stylesURL := strings.TrimSpace(opts.StylesURL)
	if stylesURL == "" {
		stylesURL = "https://cdn.fusionbrain.ai/static/styles/key"
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
		secretKey:  secretKey,
		baseURL:    baseURL,
		stylesURL:  stylesURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

func (c *Client) authHeaders(req *http.Request) {
	req.Header.Set("X-Key", "Key "+c.apiKey)
	req.Header.Set("X-Secret", "Secret "+c.secretKey)
}

// Authenticate verifies the configured credentials against the pipeline
// listing endpoint and returns the id of the first available pipeline. The id
// doubles as the session credential for submissions and is cached for the
// lifetime of the client.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pipelineID != "" {
		return c.pipelineID, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/key/api/v1/pipelines", nil)
	if err != nil {
		return "", fmt.Errorf("fusionbrain: build request: %w", err)
	}
	c.authHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fusionbrain: %v: %w", err, domain.ErrAuth)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fusionbrain: pipelines status %d: %w", resp.StatusCode, domain.ErrAuth)
	}

	var pipelines []pipelineInfo
	if err := json.NewDecoder(resp.Body).Decode(&pipelines); err != nil {
		return "", fmt.Errorf("fusionbrain: decode pipelines: %w", domain.ErrBadResponse)
	}
	if len(pipelines) == 0 || pipelines[0].ID == "" {
		return "", fmt.Errorf("fusionbrain: no pipelines available: %w", domain.ErrBadResponse)
	}

	c.pipelineID = pipelines[0].ID
	c.logger.Debug().Str("pipeline_id", c.pipelineID).Msg("fusionbrain: authenticated")
	return c.pipelineID, nil
}

// Submit sends the prompt plus fixed generation parameters to the job
// creation endpoint and returns the handle of the created job. Credentials
// are verified first; no job is created when they are rejected.
func (c *Client) Submit(ctx context.Context, prompt string, params domain.GenerationParams) (JobHandle, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("fusionbrain: empty prompt: %w", domain.ErrSubmission)
	}

	pipelineID, err := c.Authenticate(ctx)
	if err != nil {
		return "", err
	}

	payload := runParams{
		Type:           "GENERATE",
		Style:          params.Style,
		NumImages:      params.Count,
		Width:          params.Width,
		Height:         params.Height,
		GenerateParams: generateParams{Query: prompt},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("fusionbrain: encode params: %w", err)
	}

	// pipeline/run only accepts multipart form data; the params part must
	// carry an explicit application/json content type.
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("pipeline_id", pipelineID); err != nil {
		return "", fmt.Errorf("fusionbrain: encode form: %w", err)
	}
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="params"`)
	header.Set("Content-Type", "application/json")
	part, err := form.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("fusionbrain: encode form: %w", err)
	}
	if _, err := part.Write(raw); err != nil {
		return "", fmt.Errorf("fusionbrain: encode form: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("fusionbrain: encode form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/key/api/v1/pipeline/run", &body)
	if err != nil {
		return "", fmt.Errorf("fusionbrain: build request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	c.authHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fusionbrain: %v: %w", err, domain.ErrSubmission)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("fusionbrain: run status %d: %w", resp.StatusCode, domain.ErrSubmission)
	}

	var decoded runResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("fusionbrain: decode run response: %w", domain.ErrBadResponse)
	}
	if decoded.UUID == "" {
		return "", fmt.Errorf("fusionbrain: run response has no uuid: %w", domain.ErrBadResponse)
	}

	c.logger.Debug().Str("job", decoded.UUID).Msg("fusionbrain: job submitted")
	return JobHandle(decoded.UUID), nil
}

// Poll queries the status of a job once. On DONE it also decodes and returns
// the first generated image.
func (c *Client) Poll(ctx context.Context, handle JobHandle) (domain.JobStatus, *Asset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/key/api/v1/pipeline/status/"+string(handle), nil)
	if err != nil {
		return "", nil, fmt.Errorf("fusionbrain: build request: %w", err)
	}
	c.authHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("fusionbrain: poll job %s: %w", handle, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("fusionbrain: status endpoint returned %d: %w", resp.StatusCode, domain.ErrBadResponse)
	}

	var decoded statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", nil, fmt.Errorf("fusionbrain: decode status response: %w", domain.ErrBadResponse)
	}

	switch decoded.Status {
	case "INITIAL", "PROCESSING":
		return domain.JobStatusPending, nil, nil
	case "DONE":
		if len(decoded.Result.Files) == 0 {
			return "", nil, fmt.Errorf("fusionbrain: done without images: %w", domain.ErrBadResponse)
		}
		data, err := base64.StdEncoding.DecodeString(decoded.Result.Files[0])
		if err != nil {
			return "", nil, fmt.Errorf("fusionbrain: decode image: %w", domain.ErrBadResponse)
		}
		return domain.JobStatusSucceeded, &Asset{Data: data, MIME: "image/png"}, nil
	case "FAIL":
		return domain.JobStatusFailed, nil, nil
	default:
		return "", nil, fmt.Errorf("fusionbrain: unexpected status %q: %w", decoded.Status, domain.ErrBadResponse)
	}
}

// WaitForResult polls the job at a fixed interval until it succeeds, fails,
// or the attempt budget runs out. There is no backoff and no jitter; a
// terminal status on any poll ends the loop immediately.
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
			c.logger.Debug().Str("job", string(handle)).Int("polls", attempt+1).Msg("fusionbrain: job done")
			return asset, nil
		case domain.JobStatusFailed:
			return nil, fmt.Errorf("fusionbrain: job %s: %w", handle, domain.ErrGeneration)
		}
	}
	return nil, fmt.Errorf("fusionbrain: job %s still pending after %d polls: %w", handle, maxAttempts, domain.ErrTimeout)
}

// Styles fetches the public style catalog. The endpoint is a CDN document and
// requires no credentials.
func (c *Client) Styles(ctx context.Context) ([]Style, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.stylesURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fusionbrain: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fusionbrain: fetch styles: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fusionbrain: styles status %d: %w", resp.StatusCode, domain.ErrBadResponse)
	}

	var entries []styleEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("fusionbrain: decode styles: %w", domain.ErrBadResponse)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("fusionbrain: empty style catalog: %w", domain.ErrBadResponse)
	}

	styles := make([]Style, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" || e.TitleEn == "" {
			return nil, fmt.Errorf("fusionbrain: unnamed style: %w", domain.ErrBadResponse)
		}
		styles = append(styles, Style{Title: e.TitleEn, Name: e.Name})
	}
	return styles, nil
}
