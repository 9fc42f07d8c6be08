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
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

const (
	// atqaLength is the expected size of the answer to a REQA. The
	// presence heuristic treats exactly this many FIFO bytes as "card
	// present" and anything else, including zero, as "absent".
	atqaLength = 2

	// uidLength is the cascade level 1 anti-collision response size:
	// 4 UID bytes plus the BCC check byte.
	uidLength = 5
)

// DetectedTag contains information about a card found in the field
type DetectedTag struct {
	// DetectedAt is when the card was seen
	DetectedAt time.Time
	// UID is the uppercase hex encoding of UIDBytes, two digits per
	// byte, 10 characters total
	UID string
	// UIDBytes holds the raw 4-byte UID followed by the BCC check byte
	UIDBytes []byte
}

// DetectTag polls for a card and resolves its UID.
//
// It returns ErrNoCard when the presence poll does not see a card and
// ErrMalformedResponse when the anti-collision exchange is corrupted; a
// chip on a broken bus surfaces a *TransportError.
func (d *Device) DetectTag() (*DetectedTag, error) {
	return d.DetectTagContext(context.Background())
}

// DetectTagContext polls for a card with context support. Cancellation is
// observed between poll iterations; an in-flight register transaction is
// never interrupted.
func (d *Device) DetectTagContext(ctx context.Context) (*DetectedTag, error) {
	ctx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	present, err := d.request(ctx, PICCRequestIdle)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, ErrNoCard
	}

	uid, err := d.anticollision(ctx)
	if err != nil {
		return nil, err
	}

	return &DetectedTag{
		UIDBytes:   uid,
		UID:        formatUID(uid),
		DetectedAt: time.Now(),
	}, nil
}

// ReadUID is a convenience wrapper around DetectTag that returns only the
// hex-encoded UID string.
func (d *Device) ReadUID() (string, error) {
	tag, err := d.DetectTag()
	if err != nil {
		return "", err
	}
	return tag.UID, nil
}

// GetCardUID returns the UID of a card in the field, or the empty string
// when there is no card or the exchange failed. All failure causes are
// collapsed; callers that need to tell them apart should use DetectTag.
func (d *Device) GetCardUID() string {
	tag, err := d.DetectTag()
	if err != nil {
		if !errors.Is(err, ErrNoCard) && !errors.Is(err, ErrMalformedResponse) {
			debugf("detect: %v", err)
		}
		return ""
	}
	return tag.UID
}

// request issues a presence poll (REQA or WUPA, depending on mode) and
// reports whether a card answered. The request is sent as a 7-bit short
// frame per ISO14443-3.
func (d *Device) request(ctx context.Context, mode byte) (bool, error) {
	// Short frame: only 7 bits of the last (and only) byte are sent.
	if err := d.writeRegister(regBitFraming, bitFramingShortFrame); err != nil {
		return false, err
	}

	if err := d.transceive(ctx, []byte{mode}); err != nil {
		return false, err
	}

	level, err := d.readRegister(regFIFOLevel)
	if err != nil {
		return false, err
	}
	debugf("request: FIFO level %d", level)

	// Exactly the ATQA length means a card answered. Zero means silence,
	// anything else is a garbled response; the heuristic does not
	// distinguish the two.
	return level == atqaLength, nil
}

// anticollision runs the cascade level 1 anti-collision exchange and
// returns the 4 UID bytes plus the BCC check byte.
func (d *Device) anticollision(ctx context.Context) ([]byte, error) {
	// Full bytes from here on; drop the short-frame setting.
	if err := d.writeRegister(regBitFraming, 0x00); err != nil {
		return nil, err
	}

	if err := d.transceive(ctx, []byte{piccAnticollCL1, nvbAllBits}); err != nil {
		return nil, err
	}

	level, err := d.readRegister(regFIFOLevel)
	if err != nil {
		return nil, err
	}
	if level != uidLength {
		debugf("anticollision: unexpected FIFO level %d", level)
		return nil, ErrMalformedResponse
	}

	uid := make([]byte, uidLength)
	if err := d.transport.ReadFIFO(uid); err != nil {
		return nil, err
	}

	// BCC should be the XOR of the four UID bytes (ISO14443-3 section
	// 6.5.4). Cards in the field answer with off-spec check bytes often
	// enough that a mismatch is only worth a trace line, not a rejection.
	var bcc byte
	for _, b := range uid[:4] {
		bcc ^= b
	}
	if bcc != uid[4] {
		debugf("anticollision: BCC mismatch: computed %#02x, got %#02x", bcc, uid[4])
	}

	return uid, nil
}

// transceive stages data in the FIFO, runs the Transceive command with a
// StartSend pulse, and polls for receive completion. On return the FIFO
// holds whatever the card answered; callers inspect FIFOLevelReg.
func (d *Device) transceive(ctx context.Context, data []byte) error {
	if err := d.setBits(regFIFOLevel, fifoFlushBuffer); err != nil {
		return err
	}
	if err := d.transport.WriteFIFO(data); err != nil {
		return err
	}
	if err := d.writeRegister(regCommand, cmdTransceive); err != nil {
		return err
	}

	if err := d.setBits(regBitFraming, bitFramingStartSend); err != nil {
		return err
	}
	if err := sleepContext(ctx, d.config.TransmitPause); err != nil {
		return err
	}
	if err := d.clearBits(regBitFraming, bitFramingStartSend); err != nil {
		return err
	}

	return d.waitReceive(ctx)
}

// waitReceive polls ComIrqReg for RxIRq or IdleIRq under the configured
// attempt budget. Exhausting the budget is not an error: the caller will
// see an empty FIFO and report no card.
func (d *Device) waitReceive(ctx context.Context) error {
	for attempt := 0; attempt < d.config.IRQAttempts; attempt++ {
		irq, err := d.readRegister(regComIrq)
		if err != nil {
			return err
		}
		if irq&irqWait != 0 {
			debugf("transceive: IRQ %#02x after %d polls", irq, attempt+1)
			return nil
		}
		if err := sleepContext(ctx, d.config.IRQInterval); err != nil {
			return err
		}
	}
	debugln("transceive: IRQ poll budget exhausted")
	return nil
}

// formatUID serializes UID bytes as uppercase hex, two digits per byte.
func formatUID(uid []byte) string {
	return strings.ToUpper(hex.EncodeToString(uid))
}
