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

// Command readuid waits for contactless cards and prints their UIDs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	mfrc522 "github.com/TapwareProject/go-mfrc522"
	"github.com/TapwareProject/go-mfrc522/polling"
	"github.com/TapwareProject/go-mfrc522/transport/spi"
	"github.com/TapwareProject/go-mfrc522/transport/uart"
)

type config struct {
	device       *string
	transport    *string
	resetPin     *string
	timeout      *time.Duration
	pollInterval *time.Duration
	debug        *bool
}

func parseFlags() *config {
	cfg := &config{
		device: flag.String("device", "",
			"Device path (e.g., /dev/spidev0.0 or /dev/ttyUSB0). Empty selects the first SPI port."),
		transport: flag.String("transport", "spi", "Transport to use: spi or uart"),
		resetPin:  flag.String("reset-pin", "", "GPIO name wired to RST (SPI only, e.g., GPIO25)"),
		timeout:   flag.Duration("timeout", 0, "Stop after this long (0 runs until interrupted)"),
		pollInterval: flag.Duration("poll-interval", 100*time.Millisecond,
			"Polling interval for card detection"),
		debug: flag.Bool("debug", false, "Enable debug output"),
	}
	flag.Parse()

	if *cfg.debug {
		mfrc522.SetDebugEnabled(true)
	}

	return cfg
}

// newTransport creates a transport from the configured kind and path
func newTransport(cfg *config) (mfrc522.Transport, error) {
	switch strings.ToLower(*cfg.transport) {
	case "spi":
		transport, err := spi.NewWithConfig(spi.Config{
			Device:   *cfg.device,
			ResetPin: *cfg.resetPin,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create SPI transport: %w", err)
		}
		return transport, nil
	case "uart":
		if *cfg.device == "" {
			return nil, errors.New("uart transport requires -device")
		}
		transport, err := uart.New(*cfg.device)
		if err != nil {
			return nil, fmt.Errorf("failed to create UART transport: %w", err)
		}
		return transport, nil
	default:
		return nil, fmt.Errorf("unsupported transport type: %s", *cfg.transport)
	}
}

func run(cfg *config) error {
	transport, err := newTransport(cfg)
	if err != nil {
		return err
	}

	device, err := mfrc522.New(mfrc522.NewTransportWithRetry(transport, nil))
	if err != nil {
		_ = transport.Close()
		return fmt.Errorf("failed to create device: %w", err)
	}
	defer func() { _ = device.Close() }()

	if err := device.Init(); err != nil {
		return fmt.Errorf("failed to initialize device: %w", err)
	}

	if version, versionErr := device.FirmwareVersion(); versionErr == nil {
		_, _ = fmt.Printf("MFRC522 version: 0x%02X\n", version)
	}

	monitorConfig := polling.DefaultConfig()
	monitorConfig.PollInterval = *cfg.pollInterval

	monitor := polling.NewMonitor(device, monitorConfig)
	monitor.OnCardDetected = func(tag *mfrc522.DetectedTag) error {
		_, _ = fmt.Printf("Card detected: %s\n", tag.UID)
		return nil
	}
	monitor.OnCardChanged = func(tag *mfrc522.DetectedTag) error {
		_, _ = fmt.Printf("Card changed: %s\n", tag.UID)
		return nil
	}
	monitor.OnCardRemoved = func() {
		_, _ = fmt.Println("Card removed - ready for next card...")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *cfg.timeout)
		defer cancel()
	}

	_, _ = fmt.Printf("Waiting for cards (poll interval: %s)...\n", *cfg.pollInterval)

	err = monitor.Start(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func main() {
	cfg := parseFlags()
	if err := run(cfg); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
