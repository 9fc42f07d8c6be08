// go-mfrc522
// Copyright (c) 2025 The Tapware Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-mfrc522.
//
// go-mfrc522 is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-mfrc522 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-mfrc522; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package mfrc522

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// RetryConfig configures retry behavior for transport operations
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first
	MaxAttempts int
	// InitialBackoff is the delay before the first retry
	InitialBackoff time.Duration
	// MaxBackoff caps the exponential backoff
	MaxBackoff time.Duration
	// BackoffMultiplier scales the backoff after each attempt
	BackoffMultiplier float64
	// Jitter adds up to this fraction of random variation to each backoff
	Jitter float64
	// RetryTimeout bounds the total time spent across all attempts.
	// Zero means no overall bound.
	RetryTimeout time.Duration
}

// DefaultRetryConfig returns retry defaults suitable for a directly wired
// bus: a couple of quick retries, then give up.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    1 * time.Millisecond,
		MaxBackoff:        20 * time.Millisecond,
		BackoffMultiplier: 2.0,
		Jitter:            0.1,
		RetryTimeout:      250 * time.Millisecond,
	}
}

// RetryWithConfig runs operation until it succeeds, returns a
// non-retryable error, or the attempt/time budget is exhausted.
func RetryWithConfig(ctx context.Context, config *RetryConfig, operation func() error) error {
	if config == nil {
		config = DefaultRetryConfig()
	}

	if config.RetryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.RetryTimeout)
		defer cancel()
	}

	backoff := config.InitialBackoff
	var lastErr error

	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return retryExhausted(lastErr, err)
		}

		lastErr = operation()
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}

		debugf("retry: attempt %d failed: %v", attempt+1, lastErr)

		if attempt == config.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return retryExhausted(lastErr, ctx.Err())
		case <-time.After(jitterBackoff(backoff, config.Jitter)):
		}

		backoff = time.Duration(float64(backoff) * config.BackoffMultiplier)
		if backoff > config.MaxBackoff {
			backoff = config.MaxBackoff
		}
	}

	return lastErr
}

// jitterBackoff applies random jitter to a backoff duration
func jitterBackoff(backoff time.Duration, jitter float64) time.Duration {
	if jitter <= 0 {
		return backoff
	}
	return backoff + time.Duration(rand.Float64()*jitter*float64(backoff))
}

// retryExhausted reports the last operation error when the context ran out
// mid-retry, so callers see the underlying failure rather than a bare
// deadline error.
func retryExhausted(lastErr, ctxErr error) error {
	if lastErr == nil {
		return ctxErr
	}
	return fmt.Errorf("retries aborted: %w (last error: %w)", ctxErr, lastErr)
}
