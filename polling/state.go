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

// Package polling provides continuous card monitoring on top of the
// mfrc522 driver.
package polling

import (
	"errors"
	"time"
)

// ErrNoTagInPoll signals a poll cycle that saw no card. It is internal
// flow control, never returned from Monitor.Start.
var ErrNoTagInPoll = errors.New("no tag in poll")

// Config controls monitor timing
type Config struct {
	// PollInterval is the delay between detection attempts
	PollInterval time.Duration
	// RemovalMisses is how many consecutive empty polls are required
	// before a present card is reported removed. A card sitting at the
	// edge of the field fails individual polls routinely.
	RemovalMisses int
}

// DefaultConfig returns the default monitor configuration
func DefaultConfig() *Config {
	return &Config{
		PollInterval:  100 * time.Millisecond,
		RemovalMisses: 3,
	}
}

// CardState tracks the card currently in the field
type CardState struct {
	// LastUID is the UID of the card currently present
	LastUID string
	// Misses counts consecutive polls that did not see the card
	Misses int
	// Present reports whether a card is considered in the field
	Present bool
}

// reset returns the state to empty-field
func (s *CardState) reset() {
	*s = CardState{}
}
