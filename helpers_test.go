// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package bdf_test

import (
	"bytes"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/OpenPSG/bdf"
	"github.com/stretchr/testify/require"
)

// testHeader returns a valid header for a recording with signalCount
// channels of 4 samples per one-second record.
func testHeader(signalCount, dataRecords int) *bdf.Header {
	signals := make([]bdf.Signal, signalCount)
	for i := range signals {
		signals[i] = bdf.Signal{
			Label:             fmt.Sprintf("EEG A%d", i+1),
			TransducerType:    "AgAgCl electrode",
			PhysicalDimension: "uV",
			PhysicalMin:       -262144,
			PhysicalMax:       262143,
			DigitalMin:        -8388608,
			DigitalMax:        8388607,
			Prefiltering:      "HP:0.16Hz LP:500Hz",
			SamplesPerRecord:  4,
		}
	}

	return &bdf.Header{
		PatientID:          "Patient X",
		RecordingID:        "Recording 1",
		StartTime:          time.Date(2024, time.March, 1, 10, 30, 0, 0, time.UTC),
		HeaderBytes:        256 * (signalCount + 1),
		DataFormat:         bdf.DataFormatVersion,
		DataRecords:        dataRecords,
		DataRecordDuration: time.Second,
		SignalCount:        signalCount,
		Signals:            signals,
	}
}

// recordPayload returns deterministic record bytes for hdr, distinguishable
// between files via seed.
func recordPayload(hdr *bdf.Header, seed byte) []byte {
	payload := make([]byte, hdr.DataSize())
	for i := range payload {
		payload[i] = byte((int(seed) + i*31) % 251)
	}
	return payload
}

// writeTestBDF writes a BDF file consisting of the encoded header followed
// by payload.
func writeTestBDF(t *testing.T, path string, hdr *bdf.Header, payload []byte) {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, bdf.EncodeHeader(&buf, hdr))
	buf.Write(payload)

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}
