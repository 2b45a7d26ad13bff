// Package okulbul is the embedded SDK: the same projection and query engine
// the HTTP server runs, wired in-process against a Valkey or Redis entity
// store. Callers refresh the projection themselves and search with the
// fluent builder.
package okulbul

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/okulbul/okulbul/internal/db"
	dbRedis "github.com/okulbul/okulbul/internal/db/redis"
	"github.com/okulbul/okulbul/internal/domain/search/request"
	"github.com/okulbul/okulbul/internal/repository/source"
	"github.com/okulbul/okulbul/internal/snapshot"
	queryuc "github.com/okulbul/okulbul/internal/usecase/query"
	refreshuc "github.com/okulbul/okulbul/internal/usecase/refresh"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "okulbul:"
)

// Client is the okulbul SDK entry point.
type Client struct {
	store      db.Store
	snaps      *snapshot.Store
	refreshSvc *refreshuc.Service
	searchSvc  *queryuc.Service
	bounds     request.Bounds
}

// New creates a Client and connects to the entity store. The projection is
// empty until the first Refresh call.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix: defaultKeyPrefix,
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("okulbul: entity store address required (use WithValkey or WithRedis)")
	}

	// Both driver names speak the same command surface.
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("okulbul: create %s store: %w", cfg.driver, err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("okulbul: entity store not ready: %w", err)
	}

	return wireClient(store, cfg), nil
}

func wireClient(store db.Store, cfg *clientConfig) *Client {
	srcRepo := source.New(store, cfg.keyPrefix)
	snaps := snapshot.NewStore()
	policy := refreshuc.NewWeightedPolicy(toInternalWeights(cfg.weights))

	return &Client{
		store: store,
		snaps: snaps,
		refreshSvc: refreshuc.New(srcRepo, snaps, policy, cfg.logger).
			WithBookkeeping(store, cfg.keyPrefix+"meta:last_refresh"),
		searchSvc: queryuc.New(snaps, cfg.logger),
		bounds:    request.Bounds{},
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks entity store connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Refresh rebuilds the projection from the entity store and publishes it
// atomically. Searches keep serving the previous snapshot until it succeeds.
func (c *Client) Refresh(ctx context.Context) (RefreshStats, error) {
	stats, err := c.refreshSvc.Refresh(ctx)
	if err != nil {
		return RefreshStats{}, fmt.Errorf("refresh: %w", err)
	}
	return fromRefreshStats(stats), nil
}

// Search starts a fluent search query.
func (c *Client) Search() *SearchBuilder {
	return &SearchBuilder{client: c}
}
