// Package clients calls the stock and user services over HTTP. A 404 maps
// to NotFound and a 409 to Conflict; every other failure, timeouts
// included, maps to DependencyUnavailable.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/doguaydn/microservices-e-commerce/services/common/errors"
	"github.com/doguaydn/microservices-e-commerce/services/common/middleware"
	"go.uber.org/zap"
)

const DefaultTimeout = 5 * time.Second

type httpClient struct {
	service string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func newHTTPClient(service, baseURL string, timeout time.Duration, logger *zap.Logger) httpClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return httpClient{
		service: service,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// remoteError is the {"error": "..."} body every service writes.
type remoteError struct {
	Error string `json:"error"`
}

func (h httpClient) unavailable(err error) error {
	return apperrors.Unavailable(fmt.Sprintf("%s is not available", h.service), err)
}

func (h httpClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return apperrors.Serialization("failed to encode request", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reader)
	if err != nil {
		return h.unavailable(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if rid := middleware.RequestIDFrom(ctx); rid != "" {
		req.Header.Set(middleware.RequestIDHeader, rid)
	}

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Warn("downstream call failed",
			zap.String("service", h.service), zap.String("method", method), zap.String("path", path),
			zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return h.unavailable(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NotFound("%s", h.message(resp, "resource not found"))
	case resp.StatusCode == http.StatusConflict:
		return apperrors.Conflict("%s", h.message(resp, "conflict"))
	case resp.StatusCode >= 300:
		h.logger.Warn("downstream returned error status",
			zap.String("service", h.service), zap.String("path", path), zap.Int("status", resp.StatusCode))
		return h.unavailable(fmt.Errorf("%s %s returned status %d", method, path, resp.StatusCode))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return h.unavailable(fmt.Errorf("decode %s response: %w", path, err))
	}
	return nil
}

func (h httpClient) message(resp *http.Response, fallback string) string {
	var body remoteError
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err != nil || body.Error == "" {
		return fallback
	}
	return body.Error
}
