// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package retry

import (
	"context"
	"errors"
	"time"
)

// Func is one attempt; it must honour ctx
type Func func(ctx context.Context) error

// Backoff returns the wait before retry number attempt (0-based)
type Backoff func(attempt int) time.Duration

func Fixed(interval time.Duration) Backoff {
	return func(int) time.Duration { return interval }
}

// Exponential doubles base per attempt, capped at limit when limit > 0
func Exponential(base, limit time.Duration) Backoff {
	return func(attempt int) time.Duration {
		d := base << attempt
		if limit > 0 && (d > limit || d <= 0) {
			return limit
		}
		return d
	}
}

type config struct {
	attempts int
	backoff  Backoff
	retryIf  func(error) bool
}

type Option func(*config)

// WithMaxAttempts counts the first call too
func WithMaxAttempts(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.attempts = n
		}
	}
}

func WithBackoff(b Backoff) Option {
	return func(c *config) {
		if b != nil {
			c.backoff = b
		}
	}
}

func WithRetryIf(fn func(error) bool) Option {
	return func(c *config) {
		if fn != nil {
			c.retryIf = fn
		}
	}
}

// Do runs fn until it succeeds, returns a non-retryable error, runs out of
// attempts or ctx ends. The last error from fn is returned.
func Do(ctx context.Context, fn Func, opts ...Option) error {
	cfg := &config{attempts: 3, backoff: Fixed(time.Second), retryIf: Retryable}
	for _, opt := range opts {
		opt(cfg)
	}

	var err error
	for attempt := 0; attempt < cfg.attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if err != nil {
				return err
			}
			return ctxErr
		}
		if err = fn(ctx); err == nil || !cfg.retryIf(err) {
			return err
		}
		if attempt == cfg.attempts-1 {
			break
		}
		if wait := cfg.backoff(attempt); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return err
			}
		}
	}
	return err
}

// Retryable retries everything except context cancellation and expiry
func Retryable(err error) bool {
	return err != nil &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}
