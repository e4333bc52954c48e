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
	"testing"

	"github.com/OpenPSG/bdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	hdr := testHeader(2, 10)
	hdr.Signals[1].Label = "Status"
	hdr.Signals[1].TransducerType = "Triggers and Status"
	hdr.Signals[1].PhysicalDimension = "Boolean"

	var buf bytes.Buffer
	require.NoError(t, bdf.EncodeHeader(&buf, hdr))
	require.Len(t, buf.Bytes(), hdr.HeaderBytes)

	decoded, err := bdf.DecodeHeader(&buf)
	require.NoError(t, err)
	require.Equal(t, hdr, decoded)
}

func TestEncodeHeaderLayout(t *testing.T) {
	hdr := testHeader(1, 3)

	var buf bytes.Buffer
	require.NoError(t, bdf.EncodeHeader(&buf, hdr))
	b := buf.Bytes()

	// Identification code: 0xFF followed by "BIOSEMI".
	assert.Equal(t, byte(0xFF), b[0])
	assert.Equal(t, "BIOSEMI", string(b[1:8]))

	// Fixed-width space-padded ASCII fields.
	assert.Equal(t, "Patient X", string(bytes.TrimRight(b[8:88], " ")))
	assert.Equal(t, "01.03.24", string(b[168:176]))
	assert.Equal(t, "10.30.00", string(b[176:184]))
	assert.Equal(t, "512", string(bytes.TrimRight(b[184:192], " ")))
	assert.Equal(t, "24BIT", string(bytes.TrimRight(b[192:236], " ")))
	assert.Equal(t, "3", string(bytes.TrimRight(b[236:244], " ")))
	assert.Equal(t, "1", string(bytes.TrimRight(b[244:252], " ")))
	assert.Equal(t, "1", string(bytes.TrimRight(b[252:256], " ")))
}

func TestEncodeHeaderOversizedNumericField(t *testing.T) {
	// A 9-digit record count cannot fit its 8-byte field; writing it
	// anyway would shift every following header byte.
	hdr := testHeader(1, 123456789)

	var buf bytes.Buffer
	err := bdf.EncodeHeader(&buf, hdr)
	require.ErrorIs(t, err, bdf.ErrMalformedHeader)
	assert.ErrorContains(t, err, "number of data records")
}

func TestEncodeHeaderOversizedStringField(t *testing.T) {
	hdr := testHeader(1, 3)
	hdr.Signals[0].Label = "a label longer than sixteen bytes"

	var buf bytes.Buffer
	err := bdf.EncodeHeader(&buf, hdr)
	require.ErrorIs(t, err, bdf.ErrMalformedHeader)
	assert.ErrorContains(t, err, "label")
}

func TestDecodeHeaderBadMagic(t *testing.T) {
	hdr := testHeader(1, 3)

	var buf bytes.Buffer
	require.NoError(t, bdf.EncodeHeader(&buf, hdr))
	b := buf.Bytes()
	copy(b[0:8], "0       ") // EDF identification code

	_, err := bdf.DecodeHeader(bytes.NewReader(b))
	require.ErrorIs(t, err, bdf.ErrMalformedHeader)
}

func TestDecodeHeaderNonNumericField(t *testing.T) {
	hdr := testHeader(1, 3)

	var buf bytes.Buffer
	require.NoError(t, bdf.EncodeHeader(&buf, hdr))
	b := buf.Bytes()
	copy(b[236:244], "lots    ") // number of data records

	_, err := bdf.DecodeHeader(bytes.NewReader(b))
	require.ErrorIs(t, err, bdf.ErrMalformedHeader)
}

func TestDecodeHeaderShortInput(t *testing.T) {
	hdr := testHeader(2, 3)

	var buf bytes.Buffer
	require.NoError(t, bdf.EncodeHeader(&buf, hdr))

	// Declared header length is 768 bytes; drop the channel table tail.
	_, err := bdf.DecodeHeader(bytes.NewReader(buf.Bytes()[:300]))
	require.ErrorIs(t, err, bdf.ErrMalformedHeader)
}

func TestDecodeHeaderInconsistentLength(t *testing.T) {
	hdr := testHeader(2, 3)

	var buf bytes.Buffer
	require.NoError(t, bdf.EncodeHeader(&buf, hdr))
	b := buf.Bytes()
	copy(b[252:256], "3   ") // channel count no longer matches header bytes

	_, err := bdf.DecodeHeader(bytes.NewReader(b))
	require.ErrorIs(t, err, bdf.ErrMalformedHeader)
}

func TestRecordSize(t *testing.T) {
	hdr := testHeader(2, 10)
	// 2 signals x 4 samples x 3 bytes.
	assert.Equal(t, int64(24), hdr.RecordSize())
	assert.Equal(t, int64(240), hdr.DataSize())
}
