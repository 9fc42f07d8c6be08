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
	"time"
)

// DeviceConfig contains configuration options for the Device
type DeviceConfig struct {
	// RetryConfig configures retry behavior for transport operations
	RetryConfig *RetryConfig
	// Timeout is the default timeout for detection operations
	Timeout time.Duration
	// ResetSettle is the fixed delay after issuing a soft reset before
	// the completion poll starts
	ResetSettle time.Duration
	// ResetAttempts bounds the soft reset completion poll. The original
	// chip sequence waits forever; a chip that never comes back now
	// fails with ErrChipUnresponsive instead.
	ResetAttempts int
	// IRQAttempts bounds the transceive completion poll
	IRQAttempts int
	// IRQInterval is the delay between transceive completion polls
	IRQInterval time.Duration
	// TransmitPause is the time StartSend is held before being cleared
	TransmitPause time.Duration
}

// DefaultDeviceConfig returns default device configuration
func DefaultDeviceConfig() *DeviceConfig {
	return &DeviceConfig{
		RetryConfig:   DefaultRetryConfig(),
		Timeout:       1 * time.Second,
		ResetSettle:   50 * time.Millisecond,
		ResetAttempts: 50,
		IRQAttempts:   25,
		IRQInterval:   1 * time.Millisecond,
		TransmitPause: 10 * time.Millisecond,
	}
}

// Device represents an MFRC522 RFID reader
//
// Thread Safety: Device is NOT thread-safe. All methods must be called from
// a single goroutine or protected with external synchronization. Register
// access is a non-atomic read-modify-write in several places, so a
// concurrent caller can corrupt chip state even if the transport itself is
// serialized. For concurrent access, wrap the Device with a mutex.
type Device struct {
	transport Transport
	config    *DeviceConfig
}

// New creates a new MFRC522 device with the given transport
func New(transport Transport, opts ...Option) (*Device, error) {
	device := &Device{
		transport: transport,
		config:    DefaultDeviceConfig(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(device); err != nil {
			return nil, err
		}
	}

	return device, nil
}

// Transport returns the underlying transport
func (d *Device) Transport() Transport {
	return d.transport
}

// SetRetryConfig updates the retry configuration
func (d *Device) SetRetryConfig(config *RetryConfig) {
	d.config.RetryConfig = config
	if tr, ok := d.transport.(*TransportWithRetry); ok {
		tr.SetRetryConfig(config)
	}
}

// SetTimeout sets the default timeout for detection operations
func (d *Device) SetTimeout(timeout time.Duration) error {
	if timeout <= 0 {
		return ErrInvalidParameter
	}
	d.config.Timeout = timeout
	return nil
}

// Close closes the device connection
func (d *Device) Close() error {
	if d.transport != nil {
		if err := d.transport.Close(); err != nil {
			return fmt.Errorf("failed to close transport: %w", err)
		}
	}
	return nil
}

// Init initializes the MFRC522: soft reset, timer and modulation setup,
// antenna on. It must be called before any detection operation. Calling it
// again re-arms the chip from scratch.
func (d *Device) Init() error {
	return d.InitContext(context.Background())
}

// InitContext initializes the MFRC522 with context support
func (d *Device) InitContext(ctx context.Context) error {
	if err := d.ResetContext(ctx); err != nil {
		return err
	}

	// Timer: TAuto on, ~25ms guard period (datasheet section 8.5).
	setup := []struct {
		reg   Register
		value byte
	}{
		{regTMode, initTMode},
		{regTPrescaler, initTPrescaler},
		{regTReloadL, initTReloadL},
		{regTReloadH, initTReloadH},
		{regTxASK, initTxASK},
		{regMode, initMode},
	}
	for _, s := range setup {
		if err := d.writeRegister(s.reg, s.value); err != nil {
			return err
		}
	}

	return d.AntennaOn()
}

// Reset performs a soft reset and waits for the chip to come back up
func (d *Device) Reset() error {
	return d.ResetContext(context.Background())
}

// ResetContext performs a soft reset with context support. The completion
// wait is bounded by DeviceConfig.ResetAttempts; exhausting it returns
// ErrChipUnresponsive.
func (d *Device) ResetContext(ctx context.Context) error {
	if err := d.writeRegister(regCommand, cmdSoftReset); err != nil {
		return err
	}

	if err := sleepContext(ctx, d.config.ResetSettle); err != nil {
		return err
	}

	for attempt := 0; attempt < d.config.ResetAttempts; attempt++ {
		cmd, err := d.readRegister(regCommand)
		if err != nil {
			return err
		}
		if cmd&commandPowerDown == 0 {
			debugf("reset complete after %d polls", attempt+1)
			return nil
		}
		if err := sleepContext(ctx, d.config.IRQInterval); err != nil {
			return err
		}
	}

	return ErrChipUnresponsive
}

// AntennaOn enables the antenna drivers. It is a no-op if both drivers are
// already enabled.
func (d *Device) AntennaOn() error {
	current, err := d.readRegister(regTxControl)
	if err != nil {
		return err
	}
	if current&txControlAntennaOn == txControlAntennaOn {
		return nil
	}
	return d.setBits(regTxControl, txControlAntennaOn)
}

// AntennaOff disables the antenna drivers
func (d *Device) AntennaOff() error {
	return d.clearBits(regTxControl, txControlAntennaOn)
}

// FirmwareVersion reads the chip's version register. Known values are
// VersionV1 (0x91) and VersionV2 (0x92); 0x00 or 0xFF usually means a
// wiring problem.
func (d *Device) FirmwareVersion() (byte, error) {
	return d.readRegister(regVersion)
}

// setBits ORs mask into a register. Read-modify-write, not atomic.
func (d *Device) setBits(reg Register, mask byte) error {
	current, err := d.readRegister(reg)
	if err != nil {
		return err
	}
	return d.writeRegister(reg, current|mask)
}

// clearBits clears the bits of mask in a register. Read-modify-write, not
// atomic.
func (d *Device) clearBits(reg Register, mask byte) error {
	current, err := d.readRegister(reg)
	if err != nil {
		return err
	}
	return d.writeRegister(reg, current&^mask)
}

func (d *Device) writeRegister(reg Register, value byte) error {
	if err := d.transport.WriteRegister(reg, value); err != nil {
		return fmt.Errorf("write register %#02x: %w", byte(reg), err)
	}
	debugf(">> %#02x = %#02x", byte(reg), value)
	return nil
}

func (d *Device) readRegister(reg Register) (byte, error) {
	value, err := d.transport.ReadRegister(reg)
	if err != nil {
		return 0, fmt.Errorf("read register %#02x: %w", byte(reg), err)
	}
	debugf("<< %#02x = %#02x", byte(reg), value)
	return value, nil
}

// sleepContext sleeps for d or until the context is cancelled
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
