// Package client talks to a running vantage server. The CLI uses it to push
// reorder payloads computed offline.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vantage/internal/domain"
	models "vantage/internal/domain/models/orgtree"
)

const defaultTimeout = 15 * time.Second

// ReorderClient posts reorder payloads to /api/companies/{id}/tree/reorder.
// Requests are sent once; reorders are not retried.
type ReorderClient struct {
	http    *http.Client
	baseURL string
	token   string
}

// NewReorderClient creates a client for the server at baseURL. token is sent
// as a Bearer credential when non-empty.
func NewReorderClient(baseURL, token string) *ReorderClient {
	return &ReorderClient{
		http:    &http.Client{Timeout: defaultTimeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

// Persist implements the editor's TreePersister
func (c *ReorderClient) Persist(ctx context.Context, companyID int64, records []models.ReorderRecord) error {
	body, err := json.Marshal(models.ReorderRequest{Items: records})
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	url := fmt.Sprintf("%s/api/companies/%d/tree/reorder", c.baseURL, companyID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post reorder: %w", err)
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}

// problem is the subset of an RFC 7807 body the client reads
type problem struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var p problem
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(data, &p)
	msg := p.Detail
	if msg == "" {
		msg = p.Title
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	var sentinel error
	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		sentinel = domain.ErrValidation
	case http.StatusUnauthorized:
		sentinel = domain.ErrUnauthorized
	case http.StatusForbidden:
		sentinel = domain.ErrForbidden
	case http.StatusNotFound:
		sentinel = domain.ErrNotFound
	case http.StatusConflict:
		sentinel = domain.ErrConflict
	default:
		return fmt.Errorf("reorder failed: status %d: %s", resp.StatusCode, msg)
	}
	return fmt.Errorf("%w: %s", sentinel, msg)
}
