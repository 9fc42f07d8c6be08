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
	"errors"
	"fmt"
)

// Protocol errors returned by device operations.
var (
	// ErrNoCard is returned when the presence poll does not see a card
	// in the field. A timed-out poll and a genuinely empty field are not
	// distinguishable at the protocol level.
	ErrNoCard = errors.New("no card detected")

	// ErrMalformedResponse is returned when the anti-collision exchange
	// leaves an unexpected number of bytes in the FIFO. Collisions between
	// multiple cards surface as this error.
	ErrMalformedResponse = errors.New("malformed card response")

	// ErrChipUnresponsive is returned when the chip does not clear its
	// power-down bit within the configured reset retry budget.
	ErrChipUnresponsive = errors.New("chip unresponsive after reset")

	// ErrInvalidParameter is returned for invalid configuration values.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrDeviceNotFound is returned when a transport cannot locate its
	// underlying bus or port.
	ErrDeviceNotFound = errors.New("device not found")

	// ErrNotSupported is returned when an optional capability is invoked
	// on a transport that does not provide it.
	ErrNotSupported = errors.New("operation not supported by transport")
)

// Transport errors.
var (
	// ErrTransportRead indicates a failed bus read.
	ErrTransportRead = errors.New("transport read failed")
	// ErrTransportWrite indicates a failed bus write.
	ErrTransportWrite = errors.New("transport write failed")
	// ErrTransportTimeout indicates a bus operation timed out.
	ErrTransportTimeout = errors.New("transport timeout")
	// ErrCommunicationFailed indicates a bus exchange that completed but
	// produced garbage, for example a UART register write whose address
	// echo did not match.
	ErrCommunicationFailed = errors.New("communication failed")
	// ErrFrameCorrupted indicates a corrupted wire frame.
	ErrFrameCorrupted = errors.New("frame corrupted")
)

// ErrorType classifies errors for retry decisions
type ErrorType int

const (
	// ErrorTypePermanent indicates an error that will not resolve by retrying
	ErrorTypePermanent ErrorType = iota
	// ErrorTypeTransient indicates an error that may resolve by retrying
	ErrorTypeTransient
	// ErrorTypeTimeout indicates a timeout that may resolve by retrying
	ErrorTypeTimeout
)

// TransportError wraps an error from the register access layer with
// context about the operation and bus it occurred on.
type TransportError struct {
	Err       error
	Op        string
	Port      string
	Type      ErrorType
	Retryable bool
}

// Error implements the error interface
func (e *TransportError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("mfrc522: %s %s: %v", e.Op, e.Port, e.Err)
	}
	return fmt.Sprintf("mfrc522: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a new TransportError
func NewTransportError(op, port string, err error, errType ErrorType) *TransportError {
	return &TransportError{
		Op:        op,
		Port:      port,
		Err:       err,
		Type:      errType,
		Retryable: errType == ErrorTypeTransient || errType == ErrorTypeTimeout,
	}
}

// NewTimeoutError creates a TransportError for a timed-out operation
func NewTimeoutError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrTransportTimeout, ErrorTypeTimeout)
}

// NewFrameCorruptedError creates a TransportError for a corrupted frame
func NewFrameCorruptedError(op, port string) *TransportError {
	return NewTransportError(op, port, ErrFrameCorrupted, ErrorTypeTransient)
}

// NewReadError creates a TransportError for a failed bus read
func NewReadError(op, port string, err error) *TransportError {
	return NewTransportError(op, port, fmt.Errorf("%w: %w", ErrTransportRead, err), ErrorTypeTransient)
}

// NewWriteError creates a TransportError for a failed bus write
func NewWriteError(op, port string, err error) *TransportError {
	return NewTransportError(op, port, fmt.Errorf("%w: %w", ErrTransportWrite, err), ErrorTypeTransient)
}

// IsRetryable reports whether an operation that failed with err is worth
// retrying. TransportError carries an explicit flag; sentinel errors are
// classified by kind.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Retryable
	}

	switch {
	case errors.Is(err, ErrTransportTimeout),
		errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite),
		errors.Is(err, ErrCommunicationFailed),
		errors.Is(err, ErrFrameCorrupted):
		return true
	default:
		return false
	}
}

// GetErrorType returns the classification of err for retry decisions.
func GetErrorType(err error) ErrorType {
	if err == nil {
		return ErrorTypePermanent
	}

	var te *TransportError
	if errors.As(err, &te) {
		return te.Type
	}

	switch {
	case errors.Is(err, ErrTransportTimeout):
		return ErrorTypeTimeout
	case errors.Is(err, ErrTransportRead),
		errors.Is(err, ErrTransportWrite),
		errors.Is(err, ErrCommunicationFailed),
		errors.Is(err, ErrFrameCorrupted):
		return ErrorTypeTransient
	default:
		return ErrorTypePermanent
	}
}
