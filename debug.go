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
	"github.com/sirupsen/logrus"
)

// debugLog carries the driver's register-level trace output. It is silent
// unless SetDebugEnabled(true) is called.
var debugLog = newDebugLogger()

func newDebugLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.InfoLevel)
	return log
}

// SetDebugEnabled toggles debug tracing of register traffic and protocol
// steps to stderr.
func SetDebugEnabled(enabled bool) {
	if enabled {
		debugLog.SetLevel(logrus.DebugLevel)
	} else {
		debugLog.SetLevel(logrus.InfoLevel)
	}
}

// DebugEnabled reports whether debug tracing is on.
func DebugEnabled() bool {
	return debugLog.IsLevelEnabled(logrus.DebugLevel)
}

func debugf(format string, args ...any) {
	debugLog.Debugf(format, args...)
}

func debugln(args ...any) {
	debugLog.Debugln(args...)
}
