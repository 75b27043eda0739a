package welltrend

import (
	"context"
	"errors"

	dbpkg "welltrend/internal/db"
	"welltrend/internal/tasks"
	"welltrend/internal/trend"
)

// Options re-exposes the tasks.Options type for external callers.
type Options = tasks.Options

var (
	ErrInvalidArgument          = trend.ErrInvalidArgument
	ErrExternalStoreUnavailable = trend.ErrExternalStoreUnavailable
)

// Client exposes a stable API for third-party packages to query trend data.
type Client struct{ svc *tasks.Services }

// Open loads configuration, opens the SQLite database (runs migrations) and
// returns a client.
func Open(ctx context.Context, opts Options) (*Client, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	svc, err := tasks.Bootstrap(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Client{svc: svc}, nil
}

// Close releases the underlying resources.
func (c *Client) Close() error { return c.svc.Close() }

// SetExternalStoreEnabled flips the backend used by subsequent calls.
func (c *Client) SetExternalStoreEnabled(enabled bool) {
	c.svc.Source.SetExternalStoreEnabled(enabled)
}

// PurgeCache drops every cached trend item set.
func (c *Client) PurgeCache() { c.svc.Engine.PurgeCache() }

// DefaultWindowDays is the configured downtime window.
func (c *Client) DefaultWindowDays() int { return c.svc.Config.Downtime.WindowDays }

// SeedFile loads a YAML fixture and writes it to the database.
func (c *Client) SeedFile(ctx context.Context, path string) error {
	f, err := dbpkg.LoadFixture(path)
	if err != nil {
		return err
	}
	return c.svc.DB.Seed(ctx, f)
}

// Result carries the outcome of an asynchronous call.
type Result[T any] struct {
	Value T
	Err   error
}

// async runs fn on its own goroutine. The channel receives exactly one result.
func async[T any](ctx context.Context, fn func(context.Context) (T, error)) <-chan Result[T] {
	ch := make(chan Result[T], 1)
	go func() {
		v, err := fn(ctx)
		ch <- Result[T]{Value: v, Err: err}
		close(ch)
	}()
	return ch
}
