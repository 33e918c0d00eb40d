package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"syscall"
	"time"

	"labeld/internal/api"
)

// client is a thin HTTP wrapper over the labeld API speaking the DTOs from
// internal/api.
type client struct {
	base  string
	token string
	http  *http.Client
}

func newClient(base, token string) *client {
	return &client{
		base:  base,
		token: token,
		http:  &http.Client{Timeout: 30 * time.Second},
	}
}

// errNoContent signals a 204 so callers can distinguish "no work" from a
// decoded payload.
var errNoContent = errors.New("no content")

func (c *client) do(ctx context.Context, method, path string, body any, out any) error {
	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return wrapDialError(err, c.base)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return errNoContent
	}
	if resp.StatusCode >= 400 {
		var apiErr api.ErrorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (%d)", method, path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func wrapDialError(err error, base string) error {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("connect to daemon at %s: connection refused; start the daemon with `labeld`", base)
	}
	return fmt.Errorf("connect to daemon at %s: %w", base, err)
}

func (c *client) allocate(ctx context.Context, projectID, imageID int64) (*api.Lease, error) {
	var lease api.Lease
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/projects/%d/allocate", projectID),
		api.AllocateRequest{ImageID: imageID}, &lease)
	if errors.Is(err, errNoContent) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lease, nil
}

func (c *client) importImages(ctx context.Context, projectID int64, req api.ImportRequest) (api.BatchResult, error) {
	var result api.BatchResult
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/projects/%d/images", projectID), req, &result)
	return result, err
}

func (c *client) registerStub(ctx context.Context, projectID int64, req api.StubRequest) (api.Image, error) {
	var image api.Image
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/projects/%d/images/stub", projectID), req, &image)
	return image, err
}

func (c *client) list(ctx context.Context, projectID int64) ([]api.Image, error) {
	var resp api.ImageListResponse
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/projects/%d/images", projectID), nil, &resp)
	return resp.Images, err
}

func (c *client) listLabeled(ctx context.Context, projectID int64, page, limit int) ([]api.Image, error) {
	var resp api.ImageListResponse
	path := fmt.Sprintf("/api/v1/projects/%d/images/labeled?page=%d&limit=%d", projectID, page, limit)
	err := c.do(ctx, http.MethodGet, path, nil, &resp)
	return resp.Images, err
}

func (c *client) listUnlabeled(ctx context.Context, projectID int64, limit int) ([]api.Stub, error) {
	var resp api.StubListResponse
	path := fmt.Sprintf("/api/v1/projects/%d/images/unlabeled?limit=%d", projectID, limit)
	err := c.do(ctx, http.MethodGet, path, nil, &resp)
	return resp.Stubs, err
}

func (c *client) lookup(ctx context.Context, projectID int64, name string) (api.Image, error) {
	var image api.Image
	path := fmt.Sprintf("/api/v1/projects/%d/images/import?name=%s", projectID, url.QueryEscape(name))
	err := c.do(ctx, http.MethodGet, path, nil, &image)
	return image, err
}

func (c *client) rehome(ctx context.Context, projectID int64, req api.RehomeRequest) (api.BatchResult, error) {
	var result api.BatchResult
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/projects/%d/images/rehome", projectID), req, &result)
	return result, err
}

func (c *client) describe(ctx context.Context, imageID int64) (api.Image, error) {
	var image api.Image
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/images/%d", imageID), nil, &image)
	return image, err
}

func (c *client) submitLabel(ctx context.Context, imageID int64, doc json.RawMessage) error {
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/v1/images/%d/label", imageID),
		api.LabelRequest{LabelData: doc}, nil)
	if errors.Is(err, errNoContent) {
		return nil
	}
	return err
}

func (c *client) setLabeled(ctx context.Context, imageID int64, labeled bool) error {
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/v1/images/%d/labeled", imageID),
		api.LabeledRequest{Labeled: labeled}, nil)
	if errors.Is(err, errNoContent) {
		return nil
	}
	return err
}

func (c *client) deleteImage(ctx context.Context, imageID int64) error {
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/images/%d", imageID), nil, nil)
	if errors.Is(err, errNoContent) {
		return nil
	}
	return err
}

func (c *client) deleteByIDs(ctx context.Context, projectID int64, ids []int64) (int64, error) {
	var resp api.DeleteResponse
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/projects/%d/images/delete", projectID),
		api.IDsRequest{IDs: ids}, &resp)
	return resp.Deleted, err
}

func (c *client) move(ctx context.Context, projectID int64, req api.MoveRequest) (int64, error) {
	var resp api.MoveResponse
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/projects/%d/images/move", projectID), req, &resp)
	return resp.Moved, err
}

func (c *client) stats(ctx context.Context, projectID int64) (api.ProjectSummary, error) {
	var summary api.ProjectSummary
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/projects/%d/stats", projectID), nil, &summary)
	return summary, err
}

func (c *client) status(ctx context.Context) (api.DaemonStatus, error) {
	var status api.DaemonStatus
	err := c.do(ctx, http.MethodGet, "/api/v1/status", nil, &status)
	return status, err
}
