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
	"sync"
)

// MockTransport is an in-memory register file that emulates the chip
// behaviors the driver depends on: the soft reset busy bit, FIFO flush and
// level, and the transceive exchange against a scriptable virtual card.
// It is used by this package's tests and is exported so applications can
// test their own card handling without hardware.
type MockTransport struct {
	// WriteHook, if set, intercepts register writes. Returning an error
	// aborts the write.
	WriteHook func(reg Register, value byte) error
	// ReadHook, if set, intercepts register reads. The bool reports
	// whether the returned value should be used.
	ReadHook func(reg Register) (byte, bool, error)

	registers map[Register]byte
	fifo      []byte
	txBuf     []byte

	cardPresent   bool
	atqa          []byte
	anticollResp  []byte
	pendingIRQ    bool
	irqDelayPolls int
	irqDelayLeft  int

	// resetBusyReads is how many CommandReg polls report the power-down
	// bit after a soft reset. Negative means the bit never clears.
	resetBusyReads int
	busyLeft       int

	version byte
	closed  bool

	mu sync.Mutex
}

// NewMockTransport creates a mock transport with no card in the field
func NewMockTransport() *MockTransport {
	return &MockTransport{
		registers: make(map[Register]byte),
		atqa:      []byte{0x04, 0x00},
		version:   VersionV2,
	}
}

// SetCardPresent places a virtual card with the given 4-byte UID in the
// field. The BCC check byte is computed.
func (m *MockTransport) SetCardPresent(uid [4]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var bcc byte
	for _, b := range uid {
		bcc ^= b
	}
	m.cardPresent = true
	m.anticollResp = []byte{uid[0], uid[1], uid[2], uid[3], bcc}
}

// RemoveCard clears the virtual card from the field
func (m *MockTransport) RemoveCard() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cardPresent = false
	m.anticollResp = nil
}

// SetATQA overrides the answer to a presence request. Lengths other than
// 2 make the driver report no card.
func (m *MockTransport) SetATQA(atqa []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.atqa = append([]byte(nil), atqa...)
}

// SetAnticollResponse overrides the anti-collision response verbatim,
// without computing a BCC. Used to simulate corrupted exchanges.
func (m *MockTransport) SetAnticollResponse(resp []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cardPresent = true
	m.anticollResp = append([]byte(nil), resp...)
}

// SetResetBusyReads configures how many CommandReg polls report the
// power-down bit after a soft reset. Negative means the bit never clears,
// simulating an unresponsive chip.
func (m *MockTransport) SetResetBusyReads(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetBusyReads = n
}

// SetIRQDelayPolls configures how many ComIrqReg polls return no IRQ
// before a completed transceive reports one.
func (m *MockTransport) SetIRQDelayPolls(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.irqDelayPolls = n
}

// RegisterValue returns the last value written to a register
func (m *MockTransport) RegisterValue(reg Register) byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registers[reg]
}

// FIFOContents returns a copy of the current FIFO bytes
func (m *MockTransport) FIFOContents() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.fifo...)
}

// WriteRegister implements Transport
func (m *MockTransport) WriteRegister(reg Register, value byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrTransportWrite
	}
	if m.WriteHook != nil {
		if err := m.WriteHook(reg, value); err != nil {
			return err
		}
	}

	switch reg {
	case regCommand:
		m.registers[reg] = value
		if value == cmdSoftReset {
			m.registers[regCommand] |= commandPowerDown
			m.busyLeft = m.resetBusyReads
		}
	case regFIFOLevel:
		if value&fifoFlushBuffer != 0 {
			m.fifo = nil
			m.txBuf = nil
			m.pendingIRQ = false
			m.registers[regComIrq] = 0
		}
		// The flush bit is not stored; the level itself is derived
		// from the FIFO contents.
	case regBitFraming:
		m.registers[reg] = value
		if value&bitFramingStartSend != 0 {
			m.execTransceive()
		}
	case regFIFOData:
		m.txBuf = append(m.txBuf, value)
	default:
		m.registers[reg] = value
	}
	return nil
}

// ReadRegister implements Transport
func (m *MockTransport) ReadRegister(reg Register) (byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrTransportRead
	}
	if m.ReadHook != nil {
		value, ok, err := m.ReadHook(reg)
		if err != nil {
			return 0, err
		}
		if ok {
			return value, nil
		}
	}

	switch reg {
	case regCommand:
		value := m.registers[reg]
		if value&commandPowerDown != 0 && m.busyLeft >= 0 {
			if m.busyLeft == 0 {
				value &^= commandPowerDown
				m.registers[reg] = value
			} else {
				m.busyLeft--
			}
		}
		return value, nil
	case regFIFOLevel:
		return byte(len(m.fifo)), nil
	case regFIFOData:
		if len(m.fifo) == 0 {
			return 0, nil
		}
		value := m.fifo[0]
		m.fifo = m.fifo[1:]
		return value, nil
	case regComIrq:
		if m.pendingIRQ {
			if m.irqDelayLeft > 0 {
				m.irqDelayLeft--
				return 0, nil
			}
			return irqWait, nil
		}
		return 0, nil
	case regVersion:
		return m.version, nil
	default:
		return m.registers[reg], nil
	}
}

// execTransceive resolves a staged exchange against the virtual card.
// Called with the mutex held.
func (m *MockTransport) execTransceive() {
	if m.registers[regCommand] != cmdTransceive {
		return
	}
	request := m.txBuf
	m.txBuf = nil
	m.fifo = nil
	m.pendingIRQ = false

	if !m.cardPresent {
		return
	}

	switch {
	case len(request) == 1 && (request[0] == PICCRequestIdle || request[0] == PICCRequestAll):
		m.fifo = append([]byte(nil), m.atqa...)
	case len(request) == 2 && request[0] == piccAnticollCL1 && request[1] == nvbAllBits:
		m.fifo = append([]byte(nil), m.anticollResp...)
	default:
		return
	}
	m.pendingIRQ = true
	m.irqDelayLeft = m.irqDelayPolls
}

// ReadFIFO implements Transport
func (m *MockTransport) ReadFIFO(buf []byte) error {
	for i := range buf {
		value, err := m.ReadRegister(regFIFOData)
		if err != nil {
			return err
		}
		buf[i] = value
	}
	return nil
}

// WriteFIFO implements Transport
func (m *MockTransport) WriteFIFO(data []byte) error {
	for _, b := range data {
		if err := m.WriteRegister(regFIFOData, b); err != nil {
			return err
		}
	}
	return nil
}

// Close implements Transport
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// IsConnected implements Transport
func (m *MockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

// Type returns TransportMock
func (*MockTransport) Type() TransportType {
	return TransportMock
}

// Ensure MockTransport implements Transport
var _ Transport = (*MockTransport)(nil)
