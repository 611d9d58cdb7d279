// Package analytics fetches raw sector cluster and rotation records from the analytics backend.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/sectorflow/internal/clientdata"
	"github.com/aristath/sectorflow/internal/domain"
	"github.com/aristath/sectorflow/internal/utils"
)

// maxBodyBytes caps a single payload read
const maxBodyBytes = 16 << 20

// Config holds analytics backend settings
type Config struct {
	BaseURL      string
	ClustersPath string
	RotationPath string
	Timeout      time.Duration
}

// Client for the analytics backend
type Client struct {
	baseURL      string
	clustersPath string
	rotationPath string
	client       *http.Client
	log          zerolog.Logger
	cacheRepo    *clientdata.Repository
}

// NewClient creates a new analytics client.
// cacheRepo is optional - if nil, stale fallback is disabled.
func NewClient(cfg Config, cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	clustersPath := cfg.ClustersPath
	if clustersPath == "" {
		clustersPath = "/clusters"
	}
	rotationPath := cfg.RotationPath
	if rotationPath == "" {
		rotationPath = "/rotation"
	}

	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		clustersPath: clustersPath,
		rotationPath: rotationPath,
		client:       &http.Client{Timeout: timeout},
		log:          log.With().Str("client", "analytics").Logger(),
		cacheRepo:    cacheRepo,
	}
}

// GetClusterRecords fetches the cluster payload.
// Any failure degrades to the last good payload, then to an empty slice.
func (c *Client) GetClusterRecords(ctx context.Context) []domain.RawCluster {
	raws, err := fetch(ctx, c, clientdata.TableAnalyticsClusters, c.clustersPath, domain.DecodeClusters)
	if err != nil {
		c.log.Warn().Err(err).Str("endpoint", c.clustersPath).Msg("Cluster data unavailable, using empty input")
		return []domain.RawCluster{}
	}
	return raws
}

// GetFlowRecords fetches the rotation payload.
// Any failure degrades to the last good payload, then to an empty slice.
func (c *Client) GetFlowRecords(ctx context.Context) []domain.RawFlow {
	raws, err := fetch(ctx, c, clientdata.TableAnalyticsRotation, c.rotationPath, domain.DecodeFlows)
	if err != nil {
		c.log.Warn().Err(err).Str("endpoint", c.rotationPath).Msg("Rotation data unavailable, using empty input")
		return []domain.RawFlow{}
	}
	return raws
}

// fetch downloads and decodes one payload, storing it on success and
// falling back to the cached copy regardless of age on failure.
func fetch[T any](ctx context.Context, c *Client, table, path string, decode func([]byte) ([]T, error)) ([]T, error) {
	stop := utils.OperationTimer("fetch_"+table, c.log)
	body, fetchErr := c.get(ctx, path)
	stop()
	if fetchErr == nil {
		raws, err := decode(body)
		if err == nil {
			c.store(table, path, body)
			c.log.Debug().Str("endpoint", path).Int("records", len(raws)).Msg("Fetched payload")
			return raws, nil
		}
		fetchErr = err
	}

	stale, ok := c.getStaleFromCache(table, path)
	if !ok {
		return nil, fetchErr
	}
	raws, err := decode(stale)
	if err != nil {
		return nil, fmt.Errorf("%v (stale cache unreadable: %w)", fetchErr, err)
	}

	c.log.Warn().
		Err(fetchErr).
		Str("endpoint", path).
		Int("records", len(raws)).
		Msg("API failed, using stale cached payload")
	return raws, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

func (c *Client) store(table, key string, body []byte) {
	if c.cacheRepo == nil {
		return
	}
	if err := c.cacheRepo.Store(table, key, json.RawMessage(body), clientdata.TTLAnalytics); err != nil {
		c.log.Warn().Err(err).Str("endpoint", key).Msg("Failed to cache payload")
	}
}

// getStaleFromCache retrieves the cached payload even if expired.
func (c *Client) getStaleFromCache(table, key string) ([]byte, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}

	data, err := c.cacheRepo.Get(table, key)
	if err != nil || data == nil {
		return nil, false
	}
	return data, true
}
