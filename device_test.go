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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDevice builds a device on the mock with all fixed delays zeroed
// so tests don't sleep.
func newTestDevice(t *testing.T, mock *MockTransport) *Device {
	t.Helper()
	device, err := New(mock)
	require.NoError(t, err)
	device.config.ResetSettle = 0
	device.config.IRQInterval = 0
	device.config.TransmitPause = 0
	return device
}

func TestWriteThenReadRegister(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	device := newTestDevice(t, mock)

	// Registers without read side effects hold whatever was written.
	for _, reg := range []Register{regTMode, regTPrescaler, regTxControl, regMode} {
		require.NoError(t, device.writeRegister(reg, 0x5A))
		value, err := device.readRegister(reg)
		require.NoError(t, err)
		assert.Equal(t, byte(0x5A), value)
	}
}

func TestSetBitsIdempotent(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	device := newTestDevice(t, mock)

	require.NoError(t, device.writeRegister(regTxControl, 0x40))

	require.NoError(t, device.setBits(regTxControl, 0x03))
	once := mock.RegisterValue(regTxControl)

	require.NoError(t, device.setBits(regTxControl, 0x03))
	twice := mock.RegisterValue(regTxControl)

	assert.Equal(t, byte(0x43), once)
	assert.Equal(t, once, twice)
}

func TestClearThenSetBitsRestoresMask(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		initial byte
		mask    byte
	}{
		{name: "mask bits previously set", initial: 0xFF, mask: 0x03},
		{name: "mask bits previously clear", initial: 0xF0, mask: 0x03},
		{name: "mixed prior state", initial: 0xA5, mask: 0x0F},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mock := NewMockTransport()
			device := newTestDevice(t, mock)

			require.NoError(t, device.writeRegister(regTxControl, tt.initial))
			require.NoError(t, device.clearBits(regTxControl, tt.mask))
			require.NoError(t, device.setBits(regTxControl, tt.mask))

			got := mock.RegisterValue(regTxControl)
			assert.Equal(t, tt.initial|tt.mask, got)
			assert.Equal(t, tt.mask, got&tt.mask)
		})
	}
}

func TestResetCompletesAfterBusyPolls(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.SetResetBusyReads(3)
	device := newTestDevice(t, mock)

	require.NoError(t, device.Reset())
	assert.Zero(t, mock.RegisterValue(regCommand)&commandPowerDown)
}

func TestResetUnresponsiveChip(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	mock.SetResetBusyReads(-1) // power-down bit never clears
	device := newTestDevice(t, mock)
	device.config.ResetAttempts = 10

	err := device.Reset()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrChipUnresponsive)
}

func TestInitConfiguresChip(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	device := newTestDevice(t, mock)

	require.NoError(t, device.Init())

	assert.Equal(t, initTMode, mock.RegisterValue(regTMode))
	assert.Equal(t, initTPrescaler, mock.RegisterValue(regTPrescaler))
	assert.Equal(t, initTReloadL, mock.RegisterValue(regTReloadL))
	assert.Equal(t, initTReloadH, mock.RegisterValue(regTReloadH))
	assert.Equal(t, initTxASK, mock.RegisterValue(regTxASK))
	assert.Equal(t, initMode, mock.RegisterValue(regMode))
	assert.Equal(t, txControlAntennaOn, mock.RegisterValue(regTxControl)&txControlAntennaOn)
}

func TestAntennaOnIdempotent(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	device := newTestDevice(t, mock)

	require.NoError(t, device.AntennaOn())
	assert.Equal(t, txControlAntennaOn, mock.RegisterValue(regTxControl)&txControlAntennaOn)

	// A second call must not perform a read-modify-write: hook writes to
	// prove none happen.
	var writes int
	mock.WriteHook = func(Register, byte) error {
		writes++
		return nil
	}
	require.NoError(t, device.AntennaOn())
	assert.Zero(t, writes)
}

func TestAntennaOff(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	device := newTestDevice(t, mock)

	require.NoError(t, device.AntennaOn())
	require.NoError(t, device.AntennaOff())
	assert.Zero(t, mock.RegisterValue(regTxControl)&txControlAntennaOn)
}

func TestFirmwareVersion(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	device := newTestDevice(t, mock)

	version, err := device.FirmwareVersion()
	require.NoError(t, err)
	assert.Equal(t, VersionV2, version)
}

func TestTransportFaultSurfaces(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	busFault := NewReadError("ReadRegister", "mock", errors.New("bus gone"))
	mock.ReadHook = func(Register) (byte, bool, error) {
		return 0, false, busFault
	}
	device := newTestDevice(t, mock)

	err := device.AntennaOn()
	require.Error(t, err)

	var te *TransportError
	assert.ErrorAs(t, err, &te)
	assert.ErrorIs(t, err, ErrTransportRead)
}

func TestNewAppliesOptions(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	device, err := New(mock,
		WithResetAttempts(7),
		WithIRQAttempts(9),
	)
	require.NoError(t, err)
	assert.Equal(t, 7, device.config.ResetAttempts)
	assert.Equal(t, 9, device.config.IRQAttempts)
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opt  Option
	}{
		{name: "zero reset attempts", opt: WithResetAttempts(0)},
		{name: "zero IRQ attempts", opt: WithIRQAttempts(0)},
		{name: "zero max retries", opt: WithMaxRetries(0)},
		{name: "negative timeout", opt: WithTimeout(-1)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(NewMockTransport(), tt.opt)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func TestDeviceClose(t *testing.T) {
	t.Parallel()

	mock := NewMockTransport()
	device := newTestDevice(t, mock)

	require.NoError(t, device.Close())
	assert.False(t, mock.IsConnected())
}
