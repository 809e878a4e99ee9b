// Package replicate calls the hosted expression-editor model through the
// Replicate predictions API.
package replicate

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/domain"
	"github.com/ayushsharma11098/Thumbnail-Expression-Generator/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("replicate: api token is required")

const (
	defaultBaseURL      = "https://api.replicate.com"
	defaultTimeout      = 60 * time.Second
	defaultPollInterval = time.Second
	maxDownloadBytes    = 50 << 20
)

// Fixed model parameters sent with every edit.
const (
	srcRatio      = 1
	cropFactor    = 1.7
	sampleRatio   = 1
	outputFormat  = "png"
	outputQuality = 95
)

// Options configures the Replicate client.
type Options struct {
	APIToken     string
	BaseURL      string
	ModelVersion string
	// Timeout bounds one whole edit: create, poll and download.
	Timeout      time.Duration
	PollInterval time.Duration
	HTTPClient   *http.Client
	Logger       *infra.Logger
}

// Client edits facial expressions with a single prediction per call.
type Client struct {
	apiToken     string
	baseURL      string
	version      string
	timeout      time.Duration
	pollInterval time.Duration
	httpClient   *http.Client
	logger       *infra.Logger
}

type predictionRequest struct {
	Version string          `json:"version"`
	Input   expressionInput `json:"input"`
}

type expressionInput struct {
	Image string `json:"image"`
	domain.ExpressionVector
	SrcRatio      float64 `json:"src_ratio"`
	CropFactor    float64 `json:"crop_factor"`
	SampleRatio   float64 `json:"sample_ratio"`
	OutputFormat  string  `json:"output_format"`
	OutputQuality int     `json:"output_quality"`
}

type prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  json.RawMessage `json:"error"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

type errorResponse struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	version := strings.TrimSpace(opts.ModelVersion)
	if version == "" {
		version = infra.DefaultReplicateModelVersion
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	poll := opts.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Client{
		apiToken:     strings.TrimSpace(opts.APIToken),
		baseURL:      baseURL,
		version:      version,
		timeout:      timeout,
		pollInterval: poll,
		httpClient:   httpClient,
		logger:       logger,
	}
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiToken != ""
}

// EditExpression sends image with the pose in expr to the model and returns
// the bytes of the single output image. Every failure is a domain upstream
// error; nothing is retried.
func (c *Client) EditExpression(ctx context.Context, image []byte, mimeType string, expr domain.ExpressionVector) ([]byte, error) {
	if !c.HasCredentials() {
		return nil, domain.Upstream("expression editor not configured", ErrMissingAPIKey)
	}
	if len(image) == 0 {
		return nil, domain.Upstream("expression edit failed", errors.New("replicate: image is required"))
	}
	if strings.TrimSpace(mimeType) == "" {
		mimeType = "image/png"
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	data, pred, err := c.edit(ctx, image, mimeType, expr)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.Upstream("expression edit timed out", err)
		}
		return nil, domain.Upstream("expression edit failed", err)
	}
	c.logger.Debug().
		Str("prediction_id", pred.ID).
		Int("bytes", len(data)).
		Dur("elapsed", time.Since(start)).
		Msg("replicate: expression edited")
	return data, nil
}

func (c *Client) edit(ctx context.Context, image []byte, mimeType string, expr domain.ExpressionVector) ([]byte, *prediction, error) {
	payload := predictionRequest{
		Version: c.version,
		Input: expressionInput{
			Image:            domain.DataURL(mimeType, image),
			ExpressionVector: expr,
			SrcRatio:         srcRatio,
			CropFactor:       cropFactor,
			SampleRatio:      sampleRatio,
			OutputFormat:     outputFormat,
			OutputQuality:    outputQuality,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("replicate: encode request: %w", err)
	}
	pred, err := c.call(ctx, http.MethodPost, c.baseURL+"/v1/predictions", body)
	if err != nil {
		return nil, nil, err
	}
	pred, err = c.wait(ctx, pred)
	if err != nil {
		return nil, nil, err
	}
	outputURL, err := firstOutputURL(pred.Output)
	if err != nil {
		return nil, nil, fmt.Errorf("replicate: prediction %s: %w", pred.ID, err)
	}
	data, err := c.download(ctx, outputURL)
	if err != nil {
		return nil, nil, err
	}
	return data, pred, nil
}

// wait polls the prediction until it reaches a terminal status.
func (c *Client) wait(ctx context.Context, pred *prediction) (*prediction, error) {
	for !terminal(pred.Status) {
		if strings.TrimSpace(pred.URLs.Get) == "" {
			return nil, fmt.Errorf("replicate: prediction %s is %s without a poll url", pred.ID, pred.Status)
		}
		timer := time.NewTimer(c.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("replicate: wait for prediction %s: %w", pred.ID, ctx.Err())
		case <-timer.C:
		}
		next, err := c.call(ctx, http.MethodGet, pred.URLs.Get, nil)
		if err != nil {
			return nil, err
		}
		pred = next
	}
	if pred.Status != "succeeded" {
		return nil, fmt.Errorf("replicate: prediction %s %s: %s", pred.ID, pred.Status, errorText(pred.Error))
	}
	return pred, nil
}

func terminal(status string) bool {
	switch status {
	case "succeeded", "failed", "canceled":
		return true
	}
	return false
}

func (c *Client) call(ctx context.Context, method, endpoint string, body []byte) (*prediction, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("replicate: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "wait")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("replicate: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("replicate: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var detail errorResponse
		if err := json.Unmarshal(raw, &detail); err == nil && detail.Detail != "" {
			return nil, fmt.Errorf("replicate: status %d: %s", resp.StatusCode, detail.Detail)
		}
		return nil, fmt.Errorf("replicate: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	var pred prediction
	if err := json.Unmarshal(raw, &pred); err != nil {
		return nil, fmt.Errorf("replicate: decode response: %w", err)
	}
	return &pred, nil
}

// firstOutputURL accepts an array of URLs or a single URL string.
func firstOutputURL(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", errors.New("empty output")
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, u := range list {
			if u = strings.TrimSpace(u); u != "" {
				return u, nil
			}
		}
		return "", errors.New("empty output")
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil && strings.TrimSpace(single) != "" {
		return strings.TrimSpace(single), nil
	}
	return "", fmt.Errorf("unexpected output %s", string(raw))
}

func errorText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return "no error detail"
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func (c *Client) download(ctx context.Context, imageURL string) ([]byte, error) {
	if strings.HasPrefix(imageURL, "data:") {
		return decodeDataURL(imageURL)
	}
	parsed, err := url.Parse(imageURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, fmt.Errorf("replicate: invalid output url: %s", imageURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("replicate: build download request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("replicate: download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("replicate: download status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("replicate: read image: %w", err)
	}
	if len(data) > maxDownloadBytes {
		return nil, errors.New("replicate: output image too large")
	}
	if len(data) == 0 {
		return nil, errors.New("replicate: output image is empty")
	}
	return data, nil
}

func decodeDataURL(s string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, errors.New("replicate: unsupported data url output")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("replicate: decode data url: %w", err)
	}
	return data, nil
}
