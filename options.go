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
	"time"
)

// Option is a functional option for configuring a Device
type Option func(*Device) error

// WithRetryConfig sets the retry configuration for the device
func WithRetryConfig(config *RetryConfig) Option {
	return func(d *Device) error {
		d.SetRetryConfig(config)
		return nil
	}
}

// WithTimeout sets the default timeout for detection operations
func WithTimeout(timeout time.Duration) Option {
	return func(d *Device) error {
		return d.SetTimeout(timeout)
	}
}

// WithMaxRetries sets the maximum number of transport attempts per operation
func WithMaxRetries(maxAttempts int) Option {
	return func(device *Device) error {
		if maxAttempts < 1 {
			return ErrInvalidParameter
		}
		if device.config.RetryConfig == nil {
			device.config.RetryConfig = DefaultRetryConfig()
		}
		device.config.RetryConfig.MaxAttempts = maxAttempts
		if tr, ok := device.transport.(*TransportWithRetry); ok {
			tr.SetRetryConfig(device.config.RetryConfig)
		}
		return nil
	}
}

// WithResetAttempts bounds the soft reset completion poll
func WithResetAttempts(attempts int) Option {
	return func(device *Device) error {
		if attempts < 1 {
			return ErrInvalidParameter
		}
		device.config.ResetAttempts = attempts
		return nil
	}
}

// WithIRQAttempts bounds the transceive completion poll
func WithIRQAttempts(attempts int) Option {
	return func(device *Device) error {
		if attempts < 1 {
			return ErrInvalidParameter
		}
		device.config.IRQAttempts = attempts
		return nil
	}
}
