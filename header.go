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
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ansel1/merry/v2"
)

// identificationCode is the 8-byte magic at the start of every BDF file:
// a single 0xFF byte followed by "BIOSEMI".
var identificationCode = append([]byte{0xFF}, []byte("BIOSEMI")...)

// DecodeHeader reads the fixed-layout BDF header from r: the 256-byte
// file block followed by 256 bytes of channel-table fields per signal.
// It fails with ErrMalformedHeader if the magic is wrong, a numeric field
// is unparsable, or the input is shorter than the declared header length.
func DecodeHeader(r io.Reader) (*Header, error) {
	reader := bufio.NewReader(r)

	b := make([]byte, fixedHeaderBytes)
	if _, err := io.ReadFull(reader, b); err != nil {
		return nil, merry.Prependf(ErrMalformedHeader, "reading header: %v", err)
	}

	if string(b[0:8]) != string(identificationCode) {
		return nil, merry.Prepend(ErrMalformedHeader, "bad identification code")
	}

	hdr := &Header{}
	hdr.PatientID = strings.TrimSpace(string(b[8:88]))
	hdr.RecordingID = strings.TrimSpace(string(b[88:168]))
	dateStr := strings.TrimSpace(string(b[168:176]))
	timeStr := strings.TrimSpace(string(b[176:184]))

	startDate, err := time.Parse("02.01.06", dateStr)
	if err != nil {
		return nil, merry.Prependf(ErrMalformedHeader, "parsing start date: %v", err)
	}
	startTime, err := time.Parse("15.04.05", timeStr)
	if err != nil {
		return nil, merry.Prependf(ErrMalformedHeader, "parsing start time: %v", err)
	}
	hdr.StartTime = time.Date(startDate.Year(), startDate.Month(), startDate.Day(),
		startTime.Hour(), startTime.Minute(), startTime.Second(), 0, time.UTC)

	hdr.HeaderBytes, err = parseIntField(b[184:192], "header bytes")
	if err != nil {
		return nil, err
	}

	hdr.DataFormat = strings.TrimSpace(string(b[192:236]))

	hdr.DataRecords, err = parseIntField(b[236:244], "number of data records")
	if err != nil {
		return nil, err
	}

	hdr.DataRecordDuration, err = time.ParseDuration(strings.TrimSpace(string(b[244:252])) + "s")
	if err != nil {
		return nil, merry.Prependf(ErrMalformedHeader, "parsing data record duration: %v", err)
	}

	hdr.SignalCount, err = parseIntField(b[252:256], "signal count")
	if err != nil {
		return nil, err
	}
	if hdr.SignalCount < 1 {
		return nil, merry.Prependf(ErrMalformedHeader, "signal count %d", hdr.SignalCount)
	}
	if hdr.HeaderBytes != fixedHeaderBytes+hdr.SignalCount*perSignalHeaderBytes {
		return nil, merry.Prependf(ErrMalformedHeader,
			"header bytes %d does not match %d signals", hdr.HeaderBytes, hdr.SignalCount)
	}

	// Read the channel table, one field block at a time.
	hdr.Signals = make([]Signal, hdr.SignalCount)

	if err := readSignalField(reader, hdr.Signals, 16, "label", func(s *Signal, v []byte) error {
		s.Label = strings.TrimSpace(string(v))
		return nil
	}); err != nil {
		return nil, err
	}

	if err := readSignalField(reader, hdr.Signals, 80, "transducer type", func(s *Signal, v []byte) error {
		s.TransducerType = strings.TrimSpace(string(v))
		return nil
	}); err != nil {
		return nil, err
	}

	if err := readSignalField(reader, hdr.Signals, 8, "physical dimension", func(s *Signal, v []byte) error {
		s.PhysicalDimension = strings.TrimSpace(string(v))
		return nil
	}); err != nil {
		return nil, err
	}

	if err := readSignalField(reader, hdr.Signals, 8, "physical minimum", func(s *Signal, v []byte) (err error) {
		s.PhysicalMin, err = parseIntField(v, "physical minimum")
		return err
	}); err != nil {
		return nil, err
	}

	if err := readSignalField(reader, hdr.Signals, 8, "physical maximum", func(s *Signal, v []byte) (err error) {
		s.PhysicalMax, err = parseIntField(v, "physical maximum")
		return err
	}); err != nil {
		return nil, err
	}

	if err := readSignalField(reader, hdr.Signals, 8, "digital minimum", func(s *Signal, v []byte) (err error) {
		s.DigitalMin, err = parseIntField(v, "digital minimum")
		return err
	}); err != nil {
		return nil, err
	}

	if err := readSignalField(reader, hdr.Signals, 8, "digital maximum", func(s *Signal, v []byte) (err error) {
		s.DigitalMax, err = parseIntField(v, "digital maximum")
		return err
	}); err != nil {
		return nil, err
	}

	if err := readSignalField(reader, hdr.Signals, 80, "prefiltering", func(s *Signal, v []byte) error {
		s.Prefiltering = strings.TrimSpace(string(v))
		return nil
	}); err != nil {
		return nil, err
	}

	if err := readSignalField(reader, hdr.Signals, 8, "samples per record", func(s *Signal, v []byte) (err error) {
		s.SamplesPerRecord, err = parseIntField(v, "samples per record")
		return err
	}); err != nil {
		return nil, err
	}

	if err := readSignalField(reader, hdr.Signals, 32, "reserved", func(s *Signal, v []byte) error {
		s.Reserved = strings.TrimSpace(string(v))
		return nil
	}); err != nil {
		return nil, err
	}

	return hdr, nil
}

// EncodeHeader writes hdr to w in the exact fixed-width, space-padded BDF
// layout. A field value wider than its fixed field would shift every
// following byte, so it fails with ErrMalformedHeader instead of writing a
// corrupt header. DecodeHeader(EncodeHeader(hdr)) round-trips for any
// valid hdr.
func EncodeHeader(w io.Writer, hdr *Header) error {
	writer := bufio.NewWriter(w)

	if _, err := writer.Write(identificationCode); err != nil {
		return err
	}

	if err := writeField(writer, hdr.PatientID, 80, "patient identification"); err != nil {
		return err
	}
	if err := writeField(writer, hdr.RecordingID, 80, "recording identification"); err != nil {
		return err
	}

	if err := writeField(writer, hdr.StartTime.Format("02.01.06"), 8, "start date"); err != nil {
		return err
	}
	if err := writeField(writer, hdr.StartTime.Format("15.04.05"), 8, "start time"); err != nil {
		return err
	}

	headerBytes := fixedHeaderBytes + hdr.SignalCount*perSignalHeaderBytes
	if err := writeField(writer, strconv.Itoa(headerBytes), 8, "header bytes"); err != nil {
		return err
	}

	if err := writeField(writer, hdr.DataFormat, 44, "data format version"); err != nil {
		return err
	}

	if err := writeField(writer, strconv.Itoa(hdr.DataRecords), 8, "number of data records"); err != nil {
		return err
	}

	durationStr := strconv.FormatFloat(hdr.DataRecordDuration.Seconds(), 'f', -1, 64)
	if err := writeField(writer, durationStr, 8, "data record duration"); err != nil {
		return err
	}

	if err := writeField(writer, strconv.Itoa(hdr.SignalCount), 4, "signal count"); err != nil {
		return err
	}

	for _, signal := range hdr.Signals {
		if err := writeField(writer, signal.Label, 16, "label"); err != nil {
			return err
		}
	}

	for _, signal := range hdr.Signals {
		if err := writeField(writer, signal.TransducerType, 80, "transducer type"); err != nil {
			return err
		}
	}

	for _, signal := range hdr.Signals {
		if err := writeField(writer, signal.PhysicalDimension, 8, "physical dimension"); err != nil {
			return err
		}
	}

	for _, signal := range hdr.Signals {
		if err := writeField(writer, strconv.Itoa(signal.PhysicalMin), 8, "physical minimum"); err != nil {
			return err
		}
	}

	for _, signal := range hdr.Signals {
		if err := writeField(writer, strconv.Itoa(signal.PhysicalMax), 8, "physical maximum"); err != nil {
			return err
		}
	}

	for _, signal := range hdr.Signals {
		if err := writeField(writer, strconv.Itoa(signal.DigitalMin), 8, "digital minimum"); err != nil {
			return err
		}
	}

	for _, signal := range hdr.Signals {
		if err := writeField(writer, strconv.Itoa(signal.DigitalMax), 8, "digital maximum"); err != nil {
			return err
		}
	}

	for _, signal := range hdr.Signals {
		if err := writeField(writer, signal.Prefiltering, 80, "prefiltering"); err != nil {
			return err
		}
	}

	for _, signal := range hdr.Signals {
		if err := writeField(writer, strconv.Itoa(signal.SamplesPerRecord), 8, "samples per record"); err != nil {
			return err
		}
	}

	for _, signal := range hdr.Signals {
		if err := writeField(writer, signal.Reserved, 32, "reserved"); err != nil {
			return err
		}
	}

	return writer.Flush()
}

// writeField writes value right-padded with spaces to exactly width bytes.
func writeField(w *bufio.Writer, value string, width int, name string) error {
	if len(value) > width {
		return merry.Prependf(ErrMalformedHeader,
			"field %s value %q exceeds %d bytes", name, value, width)
	}
	_, err := w.WriteString(fmt.Sprintf("%-*s", width, value))
	return err
}

func readSignalField(r io.Reader, signals []Signal, width int, name string, set func(*Signal, []byte) error) error {
	b := make([]byte, width)
	for i := range signals {
		if _, err := io.ReadFull(r, b); err != nil {
			return merry.Prependf(ErrMalformedHeader, "reading signal %s fields: %v", name, err)
		}
		if err := set(&signals[i], b); err != nil {
			return err
		}
	}
	return nil
}

func parseIntField(b []byte, name string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, merry.Prependf(ErrMalformedHeader, "field %s: %v", name, err)
	}
	return v, nil
}
