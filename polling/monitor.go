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
	"fmt"
	"time"

	mfrc522 "github.com/TapwareProject/go-mfrc522"
)

// Monitor handles continuous card monitoring. It polls the device from the
// calling goroutine; callbacks run inline between polls.
type Monitor struct {
	device *mfrc522.Device
	config *Config

	// OnCardDetected is called when a card enters the field
	OnCardDetected func(tag *mfrc522.DetectedTag) error
	// OnCardRemoved is called when the present card leaves the field
	OnCardRemoved func()
	// OnCardChanged is called when the card in the field is replaced by
	// one with a different UID between polls
	OnCardChanged func(tag *mfrc522.DetectedTag) error

	state CardState
}

// NewMonitor creates a new card monitor
func NewMonitor(device *mfrc522.Device, config *Config) *Monitor {
	if config == nil {
		config = DefaultConfig()
	}
	return &Monitor{
		device: device,
		config: config,
		state:  CardState{},
	}
}

// State returns the current card state
func (m *Monitor) State() CardState {
	return m.state
}

// Device returns the underlying device
func (m *Monitor) Device() *mfrc522.Device {
	return m.device
}

// Close closes the underlying device
func (m *Monitor) Close() error {
	if err := m.device.Close(); err != nil {
		return fmt.Errorf("failed to close device: %w", err)
	}
	return nil
}

// Start begins continuous monitoring for cards. It blocks until the
// context is cancelled or the device fails.
func (m *Monitor) Start(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		tag, err := m.pollOnce(ctx)
		switch {
		case err == nil:
			if cbErr := m.handleCardSeen(tag); cbErr != nil {
				return cbErr
			}
		case errors.Is(err, ErrNoTagInPoll):
			m.handleCardMissed()
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return err
		default:
			// A failing bus means the card state is unknowable; report
			// removal and surface the error.
			m.handleRemoval()
			return fmt.Errorf("card detection failed: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.config.PollInterval):
		}
	}
}

// pollOnce performs a single detection cycle
func (m *Monitor) pollOnce(ctx context.Context) (*mfrc522.DetectedTag, error) {
	tag, err := m.device.DetectTagContext(ctx)
	if err != nil {
		if errors.Is(err, mfrc522.ErrNoCard) || errors.Is(err, mfrc522.ErrMalformedResponse) {
			return nil, ErrNoTagInPoll
		}
		return nil, err
	}
	return tag, nil
}

// handleCardSeen updates state for a successful detection
func (m *Monitor) handleCardSeen(tag *mfrc522.DetectedTag) error {
	m.state.Misses = 0

	if !m.state.Present {
		m.state.Present = true
		m.state.LastUID = tag.UID
		if m.OnCardDetected != nil {
			return m.OnCardDetected(tag)
		}
		return nil
	}

	if m.state.LastUID != tag.UID {
		m.state.LastUID = tag.UID
		if m.OnCardChanged != nil {
			return m.OnCardChanged(tag)
		}
	}
	return nil
}

// handleCardMissed counts an empty poll toward removal
func (m *Monitor) handleCardMissed() {
	if !m.state.Present {
		return
	}
	m.state.Misses++
	if m.state.Misses >= m.config.RemovalMisses {
		m.handleRemoval()
	}
}

// handleRemoval reports a card leaving the field
func (m *Monitor) handleRemoval() {
	if !m.state.Present {
		return
	}
	m.state.reset()
	if m.OnCardRemoved != nil {
		m.OnCardRemoved()
	}
}
