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

/*
Package mfrc522 provides a pure Go driver for the NXP MFRC522 RFID reader IC.

The MFRC522 is a low-cost reader/writer for contactless communication at
13.56 MHz, commonly found on RC522 breakout boards. This library configures
the chip, detects ISO14443A proximity cards (PICCs) in range, and reads
their unique identifier (UID) using the single-cascade anti-collision
sequence.

Features:
  - Multiple transport support: SPI (4-wire plus reset line) and UART
  - Register-level transport abstraction, unit-testable without hardware
  - Typed errors distinguishing no-card, malformed response, and an
    unresponsive chip
  - Retry logic with configurable backoff
  - Continuous card monitoring via the polling package

Basic Usage:

	import (
	    mfrc522 "github.com/TapwareProject/go-mfrc522"
	    "github.com/TapwareProject/go-mfrc522/transport/spi"
	)

	// Create an SPI transport
	transport, err := spi.New("/dev/spidev0.0")
	if err != nil {
	    log.Fatal(err)
	}
	defer transport.Close()

	// Create and initialize the device
	device, err := mfrc522.New(transport)
	if err != nil {
	    log.Fatal(err)
	}
	if err := device.Init(); err != nil {
	    log.Fatal(err)
	}

	// Detect a card
	tag, err := device.DetectTag()
	if errors.Is(err, mfrc522.ErrNoCard) {
	    fmt.Println("no card in range")
	} else if err != nil {
	    log.Fatal(err)
	}

	if tag != nil {
	    fmt.Printf("Card detected: %s\n", tag.UID)
	}

Scope:

The driver implements the REQA presence poll and cascade level 1
anti-collision only, which resolves 4-byte UIDs. Cascade levels 2 and 3
(7- and 10-byte UIDs), MIFARE sector authentication, and card data
read/write are out of scope.

Error Handling:

All operations return meaningful errors that can be inspected:

	if errors.Is(err, mfrc522.ErrNoCard) {
	    // No card in the field
	}
	if errors.Is(err, mfrc522.ErrChipUnresponsive) {
	    // Chip did not come out of soft reset
	}

Thread Safety:

Device operations are not thread-safe. If you need concurrent access,
implement appropriate synchronization in your application.
*/
package mfrc522
