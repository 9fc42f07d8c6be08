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

// Package spi provides the SPI transport implementation for the MFRC522
package spi

import (
	"fmt"
	"time"

	mfrc522 "github.com/TapwareProject/go-mfrc522"
	"github.com/TapwareProject/go-mfrc522/internal/transport"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Default SPI clock rate. The chip tolerates up to 10 MHz; 1 MHz matches
// the common breakout board wiring.
const defaultSpeed = 1 * physic.MegaHertz

// startupTimeout bounds the wait for the chip to answer on its version
// register after a hardware reset.
const startupTimeout = 50 * time.Millisecond

// Config holds SPI transport configuration
type Config struct {
	// Device is the SPI port name, for example "/dev/spidev0.0".
	// Empty selects the first available port.
	Device string
	// ResetPin is the GPIO name wired to the chip's RST line, for
	// example "GPIO25". Empty disables hardware reset support.
	ResetPin string
	// Speed is the SPI clock rate. Zero selects the default 1 MHz.
	Speed physic.Frequency
}

// Transport implements the mfrc522.Transport interface over a 4-wire SPI
// bus. Chip-select framing is handled per transaction by the kernel SPI
// device, so every register access is bracketed by CS low and high.
type Transport struct {
	port     spi.PortCloser
	conn     spi.Conn
	resetPin gpio.PinIO
	device   string
}

// New creates a new SPI transport on the given port with defaults
func New(device string) (*Transport, error) {
	return NewWithConfig(Config{Device: device})
}

// NewWithConfig creates a new SPI transport
func NewWithConfig(cfg Config) (*Transport, error) {
	// Initialize host
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	port, err := spireg.Open(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("failed to open SPI port %q: %w", cfg.Device, err)
	}

	speed := cfg.Speed
	if speed == 0 {
		speed = defaultSpeed
	}

	// The MFRC522 expects SPI mode 0 (datasheet section 8.1.2).
	conn, err := port.Connect(speed, spi.Mode0, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to connect to SPI port %q: %w", cfg.Device, err)
	}

	t := &Transport{
		port:   port,
		conn:   conn,
		device: cfg.Device,
	}

	if cfg.ResetPin != "" {
		pin := gpioreg.ByName(cfg.ResetPin)
		if pin == nil {
			_ = port.Close()
			return nil, fmt.Errorf("%w: reset pin %q", mfrc522.ErrDeviceNotFound, cfg.ResetPin)
		}
		// RST is active low; idle high.
		if err := pin.Out(gpio.High); err != nil {
			_ = port.Close()
			return nil, fmt.Errorf("failed to configure reset pin %q: %w", cfg.ResetPin, err)
		}
		t.resetPin = pin
	}

	return t, nil
}

// writeFrame computes the SPI address byte for a register write:
// address shifted into bits 6..1, MSB clear.
func writeFrame(reg mfrc522.Register) byte {
	return (byte(reg) << 1) & 0x7E
}

// readFrame computes the SPI address byte for a register read: MSB set.
func readFrame(reg mfrc522.Register) byte {
	return ((byte(reg) << 1) & 0x7E) | 0x80
}

// WriteRegister writes a single register
func (t *Transport) WriteRegister(reg mfrc522.Register, value byte) error {
	w := []byte{writeFrame(reg), value}
	if err := t.conn.Tx(w, make([]byte, len(w))); err != nil {
		return mfrc522.NewWriteError("WriteRegister", t.device, err)
	}
	return nil
}

// ReadRegister reads a single register
func (t *Transport) ReadRegister(reg mfrc522.Register) (byte, error) {
	w := []byte{readFrame(reg), 0x00}
	r := make([]byte, len(w))
	if err := t.conn.Tx(w, r); err != nil {
		return 0, mfrc522.NewReadError("ReadRegister", t.device, err)
	}
	return r[1], nil
}

// ReadFIFO drains len(buf) bytes from the FIFO data register in a single
// burst transaction: the address byte is repeated for every byte clocked
// out, with a trailing zero ending the access (datasheet section 8.1.2.1).
func (t *Transport) ReadFIFO(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	w := make([]byte, len(buf)+1)
	for i := 0; i < len(buf); i++ {
		w[i] = readFrame(mfrc522.RegisterFIFOData)
	}
	r := make([]byte, len(w))
	if err := t.conn.Tx(w, r); err != nil {
		return mfrc522.NewReadError("ReadFIFO", t.device, err)
	}
	copy(buf, r[1:])
	return nil
}

// WriteFIFO stages data into the FIFO data register in a single burst
// transaction
func (t *Transport) WriteFIFO(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	w := make([]byte, 0, len(data)+1)
	w = append(w, writeFrame(mfrc522.RegisterFIFOData))
	w = append(w, data...)
	if err := t.conn.Tx(w, make([]byte, len(w))); err != nil {
		return mfrc522.NewWriteError("WriteFIFO", t.device, err)
	}
	return nil
}

// HardReset pulses the RST line low and waits for the chip to answer on
// its version register
func (t *Transport) HardReset() error {
	if t.resetPin == nil {
		return mfrc522.ErrNotSupported
	}

	if err := t.resetPin.Out(gpio.Low); err != nil {
		return fmt.Errorf("failed to drive reset pin low: %w", err)
	}
	// The datasheet asks for 100ns minimum; 1ms is far beyond any GPIO
	// slew concern.
	time.Sleep(1 * time.Millisecond)
	if err := t.resetPin.Out(gpio.High); err != nil {
		return fmt.Errorf("failed to release reset pin: %w", err)
	}

	// Wait until the version register reads something plausible.
	_, err := transport.TimeoutRetry(startupTimeout, func() (byte, bool, error) {
		v, err := t.ReadRegister(mfrc522.RegisterVersion)
		if err != nil {
			return 0, false, err
		}
		if v == 0x00 || v == 0xFF {
			return 0, true, nil
		}
		return v, false, nil
	})
	if err != nil {
		return fmt.Errorf("chip did not come up after hardware reset: %w", err)
	}
	return nil
}

// HasCapability returns true if the transport has the specified capability
func (t *Transport) HasCapability(capability mfrc522.TransportCapability) bool {
	return capability == mfrc522.CapabilityHardReset && t.resetPin != nil
}

// Close closes the transport connection
func (t *Transport) Close() error {
	if t.port == nil {
		return nil
	}
	if err := t.port.Close(); err != nil {
		return fmt.Errorf("failed to close SPI port: %w", err)
	}
	t.port = nil
	t.conn = nil
	return nil
}

// IsConnected returns true if the transport is connected
func (t *Transport) IsConnected() bool {
	return t.conn != nil
}

// Type returns the transport type
func (*Transport) Type() mfrc522.TransportType {
	return mfrc522.TransportSPI
}

// Ensure Transport implements mfrc522.Transport
var _ mfrc522.Transport = (*Transport)(nil)
