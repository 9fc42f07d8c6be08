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
)

// Transport defines the register access layer for MFRC522 devices.
// This can be implemented by SPI or UART backends. Every register access
// is a single framed bus transaction; the backend owns chip-select (or
// byte-echo) framing.
//
// Implementations are not required to be safe for concurrent use.
type Transport interface {
	// WriteRegister writes a single register
	WriteRegister(reg Register, value byte) error

	// ReadRegister reads a single register
	ReadRegister(reg Register) (byte, error)

	// ReadFIFO drains len(buf) bytes from the chip FIFO in order
	ReadFIFO(buf []byte) error

	// WriteFIFO stages data into the chip FIFO in order
	WriteFIFO(data []byte) error

	// Close closes the transport connection
	Close() error

	// IsConnected returns true if the transport is connected
	IsConnected() bool

	// Type returns the transport type
	Type() TransportType
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportSPI represents SPI bus transport.
	TransportSPI TransportType = "spi"
	// TransportUART represents UART/serial transport.
	TransportUART TransportType = "uart"
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
)

// TransportCapability represents specific capabilities or behaviors of a transport
type TransportCapability string

const (
	// CapabilityHardReset indicates the transport drives the chip's RST
	// line and can perform a hardware reset.
	CapabilityHardReset TransportCapability = "hard_reset"
)

// TransportCapabilityChecker defines an interface for querying transport capabilities
type TransportCapabilityChecker interface {
	// HasCapability returns true if the transport has the specified capability
	HasCapability(capability TransportCapability) bool
}

// HardResetter is implemented by transports that control the RST line.
type HardResetter interface {
	// HardReset pulses the reset line and waits for the chip to start up
	HardReset() error
}

// TransportWithRetry wraps a Transport with retry capabilities
type TransportWithRetry struct {
	transport Transport
	config    *RetryConfig
}

// NewTransportWithRetry creates a new transport wrapper with retry logic
func NewTransportWithRetry(transport Transport, config *RetryConfig) *TransportWithRetry {
	if config == nil {
		config = DefaultRetryConfig()
	}
	return &TransportWithRetry{
		transport: transport,
		config:    config,
	}
}

// WriteRegister writes a register with retry logic
func (t *TransportWithRetry) WriteRegister(reg Register, value byte) error {
	return RetryWithConfig(context.Background(), t.config, func() error {
		return t.wrap("WriteRegister", t.transport.WriteRegister(reg, value))
	})
}

// ReadRegister reads a register with retry logic
func (t *TransportWithRetry) ReadRegister(reg Register) (byte, error) {
	var result byte
	err := RetryWithConfig(context.Background(), t.config, func() error {
		var err error
		result, err = t.transport.ReadRegister(reg)
		return t.wrap("ReadRegister", err)
	})
	return result, err
}

// ReadFIFO drains the chip FIFO with retry logic
func (t *TransportWithRetry) ReadFIFO(buf []byte) error {
	return RetryWithConfig(context.Background(), t.config, func() error {
		return t.wrap("ReadFIFO", t.transport.ReadFIFO(buf))
	})
}

// WriteFIFO stages FIFO data with retry logic
func (t *TransportWithRetry) WriteFIFO(data []byte) error {
	return RetryWithConfig(context.Background(), t.config, func() error {
		return t.wrap("WriteFIFO", t.transport.WriteFIFO(data))
	})
}

// wrap converts transport failures into *TransportError for consistent
// retry classification. Errors that already carry a classification pass
// through unchanged.
func (t *TransportWithRetry) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{
		Op:        op,
		Err:       err,
		Type:      GetErrorType(err),
		Retryable: IsRetryable(err),
	}
}

// Close closes the transport connection
func (t *TransportWithRetry) Close() error {
	if err := t.transport.Close(); err != nil {
		return fmt.Errorf("failed to close underlying transport: %w", err)
	}
	return nil
}

// IsConnected returns true if the transport is connected
func (t *TransportWithRetry) IsConnected() bool {
	return t.transport.IsConnected()
}

// Type returns the transport type
func (t *TransportWithRetry) Type() TransportType {
	return t.transport.Type()
}

// HasCapability forwards capability checking to the underlying transport
func (t *TransportWithRetry) HasCapability(capability TransportCapability) bool {
	if capChecker, ok := t.transport.(TransportCapabilityChecker); ok {
		return capChecker.HasCapability(capability)
	}
	return false
}

// HardReset forwards a hardware reset to the underlying transport, if supported
func (t *TransportWithRetry) HardReset() error {
	if hr, ok := t.transport.(HardResetter); ok {
		return hr.HardReset()
	}
	return ErrNotSupported
}

// SetRetryConfig updates the retry configuration
func (t *TransportWithRetry) SetRetryConfig(config *RetryConfig) {
	t.config = config
}
