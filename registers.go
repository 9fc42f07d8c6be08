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

// Register identifies one of the chip's 6-bit register addresses.
// Transports translate it into the wire framing of their interface
// (datasheet section 8.1).
type Register byte

// MFRC522 register addresses (datasheet table 20).
const (
	regCommand    Register = 0x01
	regComIEn     Register = 0x02
	regComIrq     Register = 0x04
	regDivIrq     Register = 0x05
	regError      Register = 0x06
	regStatus1    Register = 0x07
	regStatus2    Register = 0x08
	regFIFOData   Register = 0x09
	regFIFOLevel  Register = 0x0A
	regControl    Register = 0x0C
	regBitFraming Register = 0x0D
	regColl       Register = 0x0E
	regMode       Register = 0x11
	regTxMode     Register = 0x12
	regRxMode     Register = 0x13
	regTxControl  Register = 0x14
	regTxASK      Register = 0x15
	regCRCResultH Register = 0x21
	regCRCResultL Register = 0x22
	regTMode      Register = 0x2A
	regTPrescaler Register = 0x2B
	regTReloadH   Register = 0x2C
	regTReloadL   Register = 0x2D
	regVersion    Register = 0x37
)

// Registers that transport implementations address directly.
const (
	// RegisterFIFOData is the FIFO data port; transports use it for
	// burst access.
	RegisterFIFOData = regFIFOData
	// RegisterVersion identifies the silicon revision; transports probe
	// it to verify the chip is responding.
	RegisterVersion = regVersion
)

// MFRC522 command codes, written to CommandReg. One command is active at a
// time (datasheet table 149).
const (
	cmdIdle       = 0x00
	cmdMem        = 0x01
	cmdCalcCRC    = 0x03
	cmdTransmit   = 0x04
	cmdReceive    = 0x08
	cmdTransceive = 0x0C
	cmdMFAuthent  = 0x0E
	cmdSoftReset  = 0x0F
)

// ISO14443A PICC command set (the subset this driver speaks).
const (
	// PICCRequestIdle (REQA) wakes PICCs in idle state. Sent as a 7-bit
	// short frame.
	PICCRequestIdle byte = 0x26
	// PICCRequestAll (WUPA) additionally wakes PICCs in halt state.
	PICCRequestAll byte = 0x52

	// piccAnticollCL1 selects cascade level 1 anti-collision, which
	// resolves 4-byte UIDs.
	piccAnticollCL1 byte = 0x93
	// nvbAllBits is the NVB byte requesting the full UID CL1 response:
	// no bits of the UID are known yet.
	nvbAllBits byte = 0x20
)

// Register bit masks used by the protocol sequences.
const (
	// CommandReg bit 4 is set while the chip is powering down, including
	// during the soft reset sequence.
	commandPowerDown byte = 0x10

	// ComIrqReg bits: RxIRq signals end of receive, IdleIRq signals a
	// command completing on its own.
	irqRx   byte = 0x20
	irqIdle byte = 0x10
	// irqWait is what the transceive poll loop waits for.
	irqWait = irqRx | irqIdle

	// FIFOLevelReg FlushBuffer bit clears the FIFO and its pointers.
	fifoFlushBuffer byte = 0x80

	// BitFramingReg StartSend bit begins transmission of FIFO data.
	bitFramingStartSend byte = 0x80
	// bitFramingShortFrame sets TxLastBits to 7 for the REQA short frame.
	bitFramingShortFrame byte = 0x07

	// TxControlReg antenna driver enable bits (Tx1RFEn | Tx2RFEn).
	txControlAntennaOn byte = 0x03
)

// Chip configuration values written during Init (datasheet sections 8.5
// and 9.3). The timer runs at a fixed ~25ms period used as the transceive
// guard time.
const (
	initTMode      byte = 0x8D // TAuto, prescaler high bits
	initTPrescaler byte = 0x3E
	initTReloadL   byte = 30
	initTReloadH   byte = 0
	initTxASK      byte = 0x40 // Force100ASK
	initMode       byte = 0x3D // CRC coprocessor preset 0x6363
)

// VersionReg values for known silicon revisions.
const (
	VersionV1 byte = 0x91
	VersionV2 byte = 0x92
)
