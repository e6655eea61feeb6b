package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/hkrewson/collectz/internal/models"
	"github.com/hkrewson/collectz/internal/shared"
	"golang.org/x/oauth2"
)

// Client implements [API] over HTTP with bearer-token authentication.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the catalog API. An empty baseURL falls
// back to the local development server. When token is set, requests go
// through an oauth2 static-token client so every call carries the
// Authorization header.
func NewClient(baseURL, token string, client *http.Client) *Client {
	if baseURL == "" {
		baseURL = "http://127.0.0.1:4000"
	}
	if client == nil {
		if token != "" {
			src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
			client = oauth2.NewClient(context.Background(), src)
		} else {
			client = http.DefaultClient
		}
	}

	return &Client{baseURL: baseURL, httpClient: client}
}

// submitResponse is the envelope returned by the import endpoints.
type submitResponse struct {
	Job models.ImportJob `json:"job"`
}

// SubmitImport starts an import job. Plex imports post their options as
// JSON; CSV imports upload the file as multipart form data. A response
// without a job ID is treated as a submission failure.
func (c *Client) SubmitImport(ctx context.Context, req ImportRequest) (models.ImportJob, error) {
	if !req.Provider.Valid() {
		return models.ImportJob{}, fmt.Errorf("%w: provider %q", shared.ErrInvalidInput, req.Provider)
	}

	endpoint := fmt.Sprintf("%s/api/imports/%s", c.baseURL, req.Provider)

	var httpReq *http.Request
	var err error
	if req.FilePath != "" {
		httpReq, err = c.newUploadRequest(ctx, endpoint, req)
	} else {
		httpReq, err = c.newJSONRequest(ctx, endpoint, map[string]any{"options": req.Options})
	}
	if err != nil {
		return models.ImportJob{}, err
	}

	body, err := c.do(httpReq)
	if err != nil {
		return models.ImportJob{}, err
	}

	var parsed submitResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return models.ImportJob{}, fmt.Errorf("%w: malformed submit response: %v", shared.ErrAPIRequest, err)
	}
	if parsed.Job.ID == 0 {
		return models.ImportJob{}, fmt.Errorf("%w: server returned no job id", shared.ErrAPIRequest)
	}

	return parsed.Job, nil
}

// ListJobs retrieves the most recent import jobs, newest first.
func (c *Client) ListJobs(ctx context.Context, limit int) ([]models.ImportJob, error) {
	endpoint := fmt.Sprintf("%s/api/imports/jobs?limit=%d", c.baseURL, limit)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	body, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	var jobs []models.ImportJob
	if err := json.Unmarshal(body, &jobs); err != nil {
		return nil, fmt.Errorf("%w: malformed job list: %v", shared.ErrAPIRequest, err)
	}
	return jobs, nil
}

// ListComics retrieves the user's catalog.
func (c *Client) ListComics(ctx context.Context) ([]models.Comic, error) {
	endpoint := c.baseURL + "/api/comics"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	body, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	var comics []models.Comic
	if err := json.Unmarshal(body, &comics); err != nil {
		return nil, fmt.Errorf("%w: malformed comic list: %v", shared.ErrAPIRequest, err)
	}
	return comics, nil
}

func (c *Client) newJSONRequest(ctx context.Context, endpoint string, payload any) (*http.Request, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) newUploadRequest(ctx context.Context, endpoint string, req ImportRequest) (*http.Request, error) {
	file, err := os.Open(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open import file: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filepath.Base(req.FilePath))
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}
	for key, value := range req.Options {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("failed to build upload: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	return httpReq, nil
}

// do executes the request and returns the response body, mapping refusal
// statuses to sentinel errors.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrAPIRequest, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: status %d", shared.ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status %d", shared.ErrRateLimited, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, truncate(body, 200))
	}

	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
