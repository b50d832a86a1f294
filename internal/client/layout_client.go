package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// LayoutClient advertises this sequencer's presence to an external layout
// service over HTTP. The layout service, not this client, decides which
// sequencer is currently authoritative; a failed or skipped registration
// does not stop this node from serving requests, it only means the layout
// service may not know about it yet.
type LayoutClient struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewLayoutClient creates a new layout service client.
func NewLayoutClient(baseURL string, logger *zap.Logger) *LayoutClient {
	return &LayoutClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

type registerSequencerRequest struct {
	NodeID   string `json:"nodeId"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	LeaseEnd int64  `json:"leaseEnd"`
}

type registerSequencerResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	ErrorMessage string `json:"errorMessage"`
}

// RegisterNode advertises this sequencer to the layout service.
func (c *LayoutClient) RegisterNode(ctx context.Context, nodeID, host string, port int, leaseEnd int64) error {
	body, err := json.Marshal(registerSequencerRequest{
		NodeID:   nodeID,
		Host:     host,
		Port:     port,
		LeaseEnd: leaseEnd,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal layout registration request: %w", err)
	}

	url := fmt.Sprintf("%s/sequencers", c.baseURL)

	c.logger.Info("registering sequencer with layout service",
		zap.String("node_id", nodeID), zap.String("host", host), zap.Int("port", port),
		zap.String("layout_url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build layout registration request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach layout service: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read layout service response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("layout service returned status %d: %s", resp.StatusCode, string(data))
	}

	var result registerSequencerResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("failed to decode layout service response: %w", err)
	}

	if !result.Success {
		return fmt.Errorf("layout registration failed: %s", result.ErrorMessage)
	}

	c.logger.Info("registered with layout service", zap.String("message", result.Message))
	return nil
}

// RegisterWithRetry attempts RegisterNode repeatedly until it succeeds, the
// context is cancelled, or maxRetries is exhausted.
func (c *LayoutClient) RegisterWithRetry(ctx context.Context, nodeID, host string, port int, leaseEnd int64, maxRetries int, retryInterval time.Duration) error {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := c.RegisterNode(ctx, nodeID, host, port, leaseEnd)
		if err == nil {
			return nil
		}

		lastErr = err
		c.logger.Warn("failed to register with layout service, retrying",
			zap.Int("attempt", attempt), zap.Int("max_retries", maxRetries), zap.Error(err))

		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled during layout registration: %w", ctx.Err())
			case <-time.After(retryInterval):
			}
		}
	}

	return fmt.Errorf("failed to register with layout service after %d attempts: %w", maxRetries, lastErr)
}
