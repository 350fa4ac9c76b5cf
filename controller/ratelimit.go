package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/semaphore"
)

// Bounds on concurrent note inserts. Writes beyond the limit wait up to the
// timeout, then fail with 503 so callers can retry instead of piling up on
// the database connection pool.
const (
	defaultMaxConcurrentWrites = 8
	defaultWriteTimeout        = 10 * time.Second
)

type writeLimiter struct {
	sem     *semaphore.Weighted
	timeout time.Duration
}

func newWriteLimiter(maxConcurrent int64, timeout time.Duration) *writeLimiter {
	return &writeLimiter{
		sem:     semaphore.NewWeighted(maxConcurrent),
		timeout: timeout,
	}
}

func (wl *writeLimiter) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), wl.timeout)
		defer cancel()
		if err := wl.sem.Acquire(ctx, 1); err != nil {
			return &appError{
				Code:   "TOO_BUSY",
				Status: http.StatusServiceUnavailable,
				Err:    err,
				Public: "The service is busy. Please try again shortly.",
			}
		}
		defer wl.sem.Release(1)
		return next(c)
	}
}
