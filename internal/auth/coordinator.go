package auth

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vidwarden/vidwarden/internal/models"
)

//go:generate moq -out credential_source_mock.go . CredentialSource

// CredentialSource is the store surface the Coordinator drives.
type CredentialSource interface {
	// Credential returns the current credential or ErrNotAuthenticated
	Credential() (models.Credential, error)

	// Refresh performs one refresh grant and installs the result
	Refresh(ctx context.Context) (models.Credential, error)

	// Invalidate forces the current credential into the expired state
	Invalidate()
}

// Coordinator serializes credential refreshes. However many operations race
// on an expired credential, exactly one refresh grant reaches the provider
// and every caller observes the identical outcome. Refresh tokens can be
// single-use, so two parallel refreshes could invalidate each other.
type Coordinator struct {
	source         CredentialSource
	logger         *slog.Logger
	flight         singleflight.Group
	skew           time.Duration
	refreshTimeout time.Duration
}

// NewCoordinator creates a refresh coordinator. skew is the expiry safety
// margin; refreshTimeout bounds each refresh attempt so a hung provider
// call releases waiters instead of deadlocking them behind the leader.
func NewCoordinator(source CredentialSource, skew, refreshTimeout time.Duration, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		source:         source,
		skew:           skew,
		refreshTimeout: refreshTimeout,
		logger:         logger,
	}
}

// EnsureValid returns a credential guaranteed not to expire within the skew
// window. If the current one is stale, one caller becomes the refresh leader
// and everyone else joins its flight; all of them receive the same new
// credential or the same error.
func (c *Coordinator) EnsureValid(ctx context.Context) (models.Credential, error) {
	cred, err := c.source.Credential()
	if err != nil {
		return models.Credential{}, err
	}
	if !cred.IsExpired(c.skew) {
		return cred, nil
	}

	ch := c.flight.DoChan("refresh", func() (any, error) {
		return c.refresh(ctx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return models.Credential{}, res.Err
		}
		return res.Val.(models.Credential), nil
	case <-ctx.Done():
		// The flight keeps running for the remaining waiters; only this
		// caller gives up.
		return models.Credential{}, ctx.Err()
	}
}

// Invalidate marks the current credential expired so the next EnsureValid
// refreshes it. Called by the gateway after the platform rejects an access
// token that still looked valid locally.
func (c *Coordinator) Invalidate() {
	c.logger.Warn("credential invalidated: access token rejected upstream")
	c.source.Invalidate()
}

func (c *Coordinator) refresh(ctx context.Context) (models.Credential, error) {
	// Re-check after winning the flight: a refresh that settled while this
	// caller was queueing already produced a fresh credential.
	if cred, err := c.source.Credential(); err == nil && !cred.IsExpired(c.skew) {
		return cred, nil
	}

	// Detached from the caller's context: the leader refreshes on behalf of
	// every waiter, so one canceled caller must not abort the shared flight.
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout)
	defer cancel()

	start := time.Now()
	cred, err := c.source.Refresh(rctx)
	if err != nil {
		c.logger.Error("credential refresh failed",
			slog.Any("error", err),
			slog.Duration("elapsed", time.Since(start)))
		return models.Credential{}, err
	}

	c.logger.Debug("credential refresh settled", slog.Duration("elapsed", time.Since(start)))
	return cred, nil
}
