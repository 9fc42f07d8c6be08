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

// Package uart provides the UART transport implementation for the MFRC522.
//
// The chip's serial host interface frames register access differently from
// SPI: the address byte carries the register address in bits 5..0, with the
// MSB selecting read (1) or write (0). The chip acknowledges a register
// write by echoing the address byte before accepting the data byte
// (datasheet section 8.1.3).
package uart

import (
	"fmt"
	"time"

	mfrc522 "github.com/TapwareProject/go-mfrc522"
	"github.com/TapwareProject/go-mfrc522/internal/transport"
	"go.bug.st/serial"
)

const (
	// defaultBaudRate is the chip's serial rate after reset.
	defaultBaudRate = 9600

	// defaultReadTimeout bounds a single byte read.
	defaultReadTimeout = 50 * time.Millisecond

	// probeRetries is how often the version register probe is repeated
	// while the port settles after opening.
	probeRetries = 3
)

// Config holds UART transport configuration
type Config struct {
	// Port is the serial device path, for example "/dev/ttyUSB0"
	Port string
	// BaudRate is the serial rate. Zero selects the chip default 9600.
	BaudRate int
	// ReadTimeout bounds each byte read. Zero selects the default 50ms.
	ReadTimeout time.Duration
}

// Transport implements the mfrc522.Transport interface over the chip's
// UART host interface
type Transport struct {
	port serial.Port
	path string
}

// New creates a new UART transport on the given serial port and verifies
// the chip answers on its version register
func New(path string) (*Transport, error) {
	return NewWithConfig(Config{Port: path})
}

// NewWithConfig creates a new UART transport
func NewWithConfig(cfg Config) (*Transport, error) {
	baud := cfg.BaudRate
	if baud == 0 {
		baud = defaultBaudRate
	}
	readTimeout := cfg.ReadTimeout
	if readTimeout == 0 {
		readTimeout = defaultReadTimeout
	}

	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %q: %w", cfg.Port, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %q: %w", cfg.Port, err)
	}

	t := &Transport{
		port: port,
		path: cfg.Port,
	}

	// Drain line noise, then probe the chip. USB adapters often need a
	// moment before the first exchange succeeds.
	_ = port.ResetInputBuffer()
	_, err = transport.WithRetry(transport.RetryConfig{
		Description: "probe",
		MaxRetries:  probeRetries,
		RetryDelay:  10 * time.Millisecond,
		OnRetry: func() error {
			return t.port.ResetInputBuffer()
		},
	}, func() (byte, bool, error) {
		v, readErr := t.ReadRegister(mfrc522.RegisterVersion)
		if readErr != nil {
			// Transient: the adapter may still be settling.
			return 0, true, nil
		}
		if v == 0x00 || v == 0xFF {
			return 0, true, nil
		}
		return v, false, nil
	})
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("no MFRC522 on %q: %w", cfg.Port, err)
	}

	return t, nil
}

// writeFrame computes the UART address byte for a register write
func writeFrame(reg mfrc522.Register) byte {
	return byte(reg) & 0x3F
}

// readFrame computes the UART address byte for a register read
func readFrame(reg mfrc522.Register) byte {
	return (byte(reg) & 0x3F) | 0x80
}

// WriteRegister writes a single register. The chip echoes the address
// byte before the data byte is sent; a mismatched echo means the exchange
// desynchronized.
func (t *Transport) WriteRegister(reg mfrc522.Register, value byte) error {
	addr := writeFrame(reg)
	if err := t.writeByte(addr); err != nil {
		return mfrc522.NewWriteError("WriteRegister", t.path, err)
	}

	echo, err := t.readByte()
	if err != nil {
		return mfrc522.NewWriteError("WriteRegister", t.path, err)
	}
	if echo != addr {
		return mfrc522.NewFrameCorruptedError("WriteRegister", t.path)
	}

	if err := t.writeByte(value); err != nil {
		return mfrc522.NewWriteError("WriteRegister", t.path, err)
	}
	return nil
}

// ReadRegister reads a single register
func (t *Transport) ReadRegister(reg mfrc522.Register) (byte, error) {
	if err := t.writeByte(readFrame(reg)); err != nil {
		return 0, mfrc522.NewReadError("ReadRegister", t.path, err)
	}
	value, err := t.readByte()
	if err != nil {
		return 0, mfrc522.NewReadError("ReadRegister", t.path, err)
	}
	return value, nil
}

// ReadFIFO drains len(buf) bytes from the FIFO data register. The UART
// interface has no burst mode, so this is a loop of single reads.
func (t *Transport) ReadFIFO(buf []byte) error {
	for i := range buf {
		value, err := t.ReadRegister(mfrc522.RegisterFIFOData)
		if err != nil {
			return err
		}
		buf[i] = value
	}
	return nil
}

// WriteFIFO stages data into the FIFO data register byte by byte
func (t *Transport) WriteFIFO(data []byte) error {
	for _, b := range data {
		if err := t.WriteRegister(mfrc522.RegisterFIFOData, b); err != nil {
			return err
		}
	}
	return nil
}

func (t *Transport) writeByte(b byte) error {
	n, err := t.port.Write([]byte{b})
	if err != nil {
		return err
	}
	if n != 1 {
		return mfrc522.ErrTransportWrite
	}
	return nil
}

func (t *Transport) readByte() (byte, error) {
	buf := make([]byte, 1)
	n, err := t.port.Read(buf)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		// go.bug.st/serial reports a read timeout as a zero-length read.
		return 0, mfrc522.ErrTransportTimeout
	}
	return buf[0], nil
}

// Close closes the transport connection
func (t *Transport) Close() error {
	if t.port == nil {
		return nil
	}
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("failed to close serial port: %w", err)
	}
	t.port = nil
	return nil
}

// IsConnected returns true if the transport is connected
func (t *Transport) IsConnected() bool {
	return t.port != nil
}

// Type returns the transport type
func (*Transport) Type() mfrc522.TransportType {
	return mfrc522.TransportUART
}

// Ensure Transport implements mfrc522.Transport
var _ mfrc522.Transport = (*Transport)(nil)
