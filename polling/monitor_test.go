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

package polling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mfrc522 "github.com/TapwareProject/go-mfrc522"
)

const eventTimeout = 5 * time.Second

// monitorEvent is what a callback observed, sent to the test goroutine.
type monitorEvent struct {
	kind string
	uid  string
}

func newTestMonitor(t *testing.T, mock *mfrc522.MockTransport) (*Monitor, chan monitorEvent) {
	t.Helper()

	device, err := mfrc522.New(mock, mfrc522.WithIRQAttempts(2))
	require.NoError(t, err)

	config := &Config{
		PollInterval:  time.Millisecond,
		RemovalMisses: 2,
	}
	monitor := NewMonitor(device, config)

	events := make(chan monitorEvent, 16)
	monitor.OnCardDetected = func(tag *mfrc522.DetectedTag) error {
		events <- monitorEvent{kind: "detected", uid: tag.UID}
		return nil
	}
	monitor.OnCardChanged = func(tag *mfrc522.DetectedTag) error {
		events <- monitorEvent{kind: "changed", uid: tag.UID}
		return nil
	}
	monitor.OnCardRemoved = func() {
		events <- monitorEvent{kind: "removed"}
	}

	return monitor, events
}

// waitEvent blocks until the next callback fires or the test times out.
func waitEvent(t *testing.T, events chan monitorEvent) monitorEvent {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(eventTimeout):
		t.Fatal("timed out waiting for monitor event")
		return monitorEvent{}
	}
}

func TestMonitorDetectAndRemove(t *testing.T) {
	t.Parallel()

	mock := mfrc522.NewMockTransport()
	monitor, events := newTestMonitor(t, mock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- monitor.Start(ctx) }()

	mock.SetCardPresent([4]byte{0x04, 0xAA, 0xBB, 0xCC})
	ev := waitEvent(t, events)
	assert.Equal(t, "detected", ev.kind)
	assert.Equal(t, "04AABBCCD9", ev.uid)

	// Removal is reported only after the miss threshold, not on the first
	// empty poll.
	mock.RemoveCard()
	ev = waitEvent(t, events)
	assert.Equal(t, "removed", ev.kind)

	// A new card after removal is a fresh detection.
	mock.SetCardPresent([4]byte{0xDE, 0xAD, 0xBE, 0xEF})
	ev = waitEvent(t, events)
	assert.Equal(t, "detected", ev.kind)
	assert.Equal(t, "DEADBEEF96", ev.uid)

	cancel()
	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMonitorCardChanged(t *testing.T) {
	t.Parallel()

	mock := mfrc522.NewMockTransport()
	monitor, events := newTestMonitor(t, mock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- monitor.Start(ctx) }()

	mock.SetCardPresent([4]byte{0x04, 0xAA, 0xBB, 0xCC})
	ev := waitEvent(t, events)
	require.Equal(t, "detected", ev.kind)

	// Swapping cards between polls skips the removal step entirely.
	mock.SetCardPresent([4]byte{0x12, 0x34, 0x56, 0x78})
	ev = waitEvent(t, events)
	assert.Equal(t, "changed", ev.kind)
	assert.Equal(t, "1234567808", ev.uid)

	cancel()
	<-done
}

func TestMonitorRepeatedDetectionIsSilent(t *testing.T) {
	t.Parallel()

	mock := mfrc522.NewMockTransport()
	mock.SetCardPresent([4]byte{0x04, 0xAA, 0xBB, 0xCC})
	monitor, events := newTestMonitor(t, mock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- monitor.Start(ctx) }()

	ev := waitEvent(t, events)
	require.Equal(t, "detected", ev.kind)

	// The same card sitting in the field produces no further events.
	select {
	case ev := <-events:
		t.Fatalf("unexpected event %q for unchanged card", ev.kind)
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	<-done
}

func TestMonitorCallbackErrorStopsStart(t *testing.T) {
	t.Parallel()

	mock := mfrc522.NewMockTransport()
	mock.SetCardPresent([4]byte{0x04, 0xAA, 0xBB, 0xCC})

	device, err := mfrc522.New(mock, mfrc522.WithIRQAttempts(2))
	require.NoError(t, err)

	monitor := NewMonitor(device, &Config{PollInterval: time.Millisecond, RemovalMisses: 2})
	stop := errors.New("handler rejected card")
	monitor.OnCardDetected = func(*mfrc522.DetectedTag) error {
		return stop
	}

	err = monitor.Start(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, stop)
}

func TestMonitorTransportFailureStopsStart(t *testing.T) {
	t.Parallel()

	mock := mfrc522.NewMockTransport()
	device, err := mfrc522.New(mock, mfrc522.WithIRQAttempts(2))
	require.NoError(t, err)
	require.NoError(t, mock.Close())

	monitor := NewMonitor(device, DefaultConfig())

	err = monitor.Start(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, mfrc522.ErrTransportWrite)
}

func TestMonitorStateAfterStop(t *testing.T) {
	t.Parallel()

	mock := mfrc522.NewMockTransport()
	mock.SetCardPresent([4]byte{0x04, 0xAA, 0xBB, 0xCC})
	monitor, events := newTestMonitor(t, mock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- monitor.Start(ctx) }()

	waitEvent(t, events)
	cancel()
	<-done

	state := monitor.State()
	assert.True(t, state.Present)
	assert.Equal(t, "04AABBCCD9", state.LastUID)
}

func TestMonitorDefaultConfig(t *testing.T) {
	t.Parallel()

	device, err := mfrc522.New(mfrc522.NewMockTransport())
	require.NoError(t, err)

	monitor := NewMonitor(device, nil)
	assert.Equal(t, device, monitor.Device())
	assert.Equal(t, CardState{}, monitor.State())
	require.NoError(t, monitor.Close())
}
