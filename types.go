// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package bdf

import (
	"time"

	"github.com/samber/lo"
)

const (
	// BytesPerSample is the width of a single BDF sample (24-bit
	// little-endian two's-complement).
	BytesPerSample = 3

	// DataFormatVersion identifies 24-bit BDF files in the 44-byte
	// format field of the header.
	DataFormatVersion = "24BIT"

	fixedHeaderBytes     = 256
	perSignalHeaderBytes = 256
)

// Header represents the BDF file header.
type Header struct {
	PatientID          string        // Local subject identification
	RecordingID        string        // Local recording identification
	StartTime          time.Time     // Start date and time of the recording
	HeaderBytes        int           // Number of bytes in the header
	DataFormat         string        // Version of the data format (usually "24BIT")
	DataRecords        int           // Number of data records, -1 if unknown
	DataRecordDuration time.Duration // Duration of a single data record in seconds
	SignalCount        int           // Number of signals in each data record
	Signals            []Signal      // Details of each signal
}

// Signal represents the characteristics of each signal in the BDF file.
type Signal struct {
	Label             string // Label of the signal (e.g., Fp1, Status)
	TransducerType    string // Type of transducer used
	PhysicalDimension string // Physical dimension (e.g., uV)
	PhysicalMin       int    // Minimum physical value
	PhysicalMax       int    // Maximum physical value
	DigitalMin        int    // Minimum digital value
	DigitalMax        int    // Maximum digital value
	Prefiltering      string // Pre-filtering information
	SamplesPerRecord  int    // Number of samples in each data record for this signal
	Reserved          string // Reserved for future use
}

// RecordSize returns the number of bytes in a single data record: each
// signal's samples-per-record block of 3-byte samples, in table order.
func (hdr *Header) RecordSize() int64 {
	return int64(lo.SumBy(hdr.Signals, func(s Signal) int {
		return s.SamplesPerRecord * BytesPerSample
	}))
}

// DataSize returns the number of record payload bytes declared by the
// header, excluding the header itself.
func (hdr *Header) DataSize() int64 {
	return int64(hdr.DataRecords) * hdr.RecordSize()
}
