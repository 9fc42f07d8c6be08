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

// Package transport provides internal transport utilities
package transport

import (
	"time"

	mfrc522 "github.com/TapwareProject/go-mfrc522"
)

// RetryOperation represents a function that can be retried
// Returns: data, shouldRetry, error
//   - data: the result if successful
//   - shouldRetry: true if the operation should be retried
//   - error: any permanent error that should stop retries
type RetryOperation[T any] func() (T, bool, error)

// RetryConfig configures retry behavior
type RetryConfig struct {
	OnRetry     func() error
	Description string
	MaxRetries  int
	RetryDelay  time.Duration
}

// WithRetry executes an operation with retry logic
// This consolidates the common probe-and-retry pattern used by transports
func WithRetry[T any](config RetryConfig, operation RetryOperation[T]) (T, error) {
	var zero T

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		result, shouldRetry, err := operation()
		if err != nil {
			return zero, err
		}

		if !shouldRetry {
			return result, nil
		}

		if attempt >= config.MaxRetries {
			break
		}

		if config.OnRetry != nil {
			if err := config.OnRetry(); err != nil {
				return zero, err
			}
		}

		if config.RetryDelay > 0 {
			time.Sleep(config.RetryDelay)
		}
	}

	return zero, mfrc522.NewTransportError(config.Description, "",
		mfrc522.ErrCommunicationFailed, mfrc522.ErrorTypeTransient)
}

// TimeoutRetry executes an operation with timeout-based retry logic
// Common pattern for polling operations, like waiting for the chip to
// come up after a hardware reset
func TimeoutRetry[T any](timeout time.Duration, operation RetryOperation[T]) (T, error) {
	var zero T
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		result, shouldRetry, err := operation()
		if err != nil {
			return zero, err
		}

		if !shouldRetry {
			return result, nil
		}

		// Small delay before next attempt
		time.Sleep(time.Millisecond)
	}

	return zero, mfrc522.NewTimeoutError("timeoutRetry", "")
}
