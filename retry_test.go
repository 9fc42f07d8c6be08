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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithConfigSucceedsFirstAttempt(t *testing.T) {
	t.Parallel()

	var calls int
	err := RetryWithConfig(context.Background(), fastRetryConfig(3), func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithConfigRecoversAfterFailures(t *testing.T) {
	t.Parallel()

	var calls int
	err := RetryWithConfig(context.Background(), fastRetryConfig(5), func() error {
		calls++
		if calls < 3 {
			return ErrTransportTimeout
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithConfigExhaustsAttempts(t *testing.T) {
	t.Parallel()

	var calls int
	err := RetryWithConfig(context.Background(), fastRetryConfig(3), func() error {
		calls++
		return ErrTransportRead
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransportRead)
	assert.Equal(t, 3, calls)
}

func TestRetryWithConfigStopsOnNonRetryable(t *testing.T) {
	t.Parallel()

	fatal := errors.New("chip select shorted")
	var calls int
	err := RetryWithConfig(context.Background(), fastRetryConfig(5), func() error {
		calls++
		return fatal
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestRetryWithConfigNilUsesDefaults(t *testing.T) {
	t.Parallel()

	var calls int
	err := RetryWithConfig(context.Background(), nil, func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithConfigCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int
	err := RetryWithConfig(ctx, fastRetryConfig(3), func() error {
		calls++
		return ErrTransportTimeout
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestRetryWithConfigTimeoutCarriesLastError(t *testing.T) {
	t.Parallel()

	config := &RetryConfig{
		MaxAttempts:       10,
		InitialBackoff:    20 * time.Millisecond,
		MaxBackoff:        20 * time.Millisecond,
		BackoffMultiplier: 1.0,
		RetryTimeout:      10 * time.Millisecond,
	}

	err := RetryWithConfig(context.Background(), config, func() error {
		return ErrTransportRead
	})
	require.Error(t, err)

	// The overall deadline fires during backoff; the result must still
	// expose what actually failed.
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.ErrorIs(t, err, ErrTransportRead)
}

func TestJitterBackoffBounds(t *testing.T) {
	t.Parallel()

	base := 10 * time.Millisecond
	for i := 0; i < 100; i++ {
		d := jitterBackoff(base, 0.5)
		assert.GreaterOrEqual(t, d, base)
		assert.LessOrEqual(t, d, base+base/2)
	}

	assert.Equal(t, base, jitterBackoff(base, 0))
}
