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
	"strconv"

	"github.com/ansel1/merry/v2"
	"github.com/samber/lo"
)

// Validate checks that the given headers describe mergeable recordings and
// returns the merged header: a copy of the first input's header whose
// record count is the sum of all inputs' record counts. Every other field
// of the channel table, and the record duration, must be pairwise identical
// across inputs; the first divergence is reported with its channel index
// and field name.
func Validate(headers []*Header) (*Header, error) {
	if len(headers) < 2 {
		return nil, merry.Prependf(ErrTooFewInputs, "got %d", len(headers))
	}

	first := headers[0]
	for _, hdr := range headers {
		if hdr.DataRecords < 0 {
			return nil, merry.Prepend(ErrMalformedHeader, "unknown number of data records")
		}
	}

	for i, hdr := range headers[1:] {
		if err := compatible(first, hdr); err != nil {
			return nil, merry.Prependf(err, "input %d", i+1)
		}
	}

	merged := *first
	merged.Signals = append([]Signal(nil), first.Signals...)
	merged.DataRecords = lo.SumBy(headers, func(hdr *Header) int {
		return hdr.DataRecords
	})

	// The record count lives in an 8-byte ASCII field; a wider sum cannot
	// be written without corrupting the header.
	if len(strconv.Itoa(merged.DataRecords)) > 8 {
		return nil, merry.Prependf(ErrMalformedHeader,
			"merged record count %d does not fit the 8 byte header field", merged.DataRecords)
	}

	return &merged, nil
}

// compatible compares hdr against the reference header field by field,
// returning an ErrIncompatibleRecordings wrap for the first mismatch.
func compatible(ref, hdr *Header) error {
	if hdr.SignalCount != ref.SignalCount {
		return mismatch(-1, "signal count", ref.SignalCount, hdr.SignalCount)
	}
	if hdr.DataRecordDuration != ref.DataRecordDuration {
		return mismatch(-1, "data record duration", ref.DataRecordDuration, hdr.DataRecordDuration)
	}

	for i := range ref.Signals {
		a, b := ref.Signals[i], hdr.Signals[i]
		switch {
		case a.Label != b.Label:
			return mismatch(i, "label", a.Label, b.Label)
		case a.TransducerType != b.TransducerType:
			return mismatch(i, "transducer type", a.TransducerType, b.TransducerType)
		case a.PhysicalDimension != b.PhysicalDimension:
			return mismatch(i, "physical dimension", a.PhysicalDimension, b.PhysicalDimension)
		case a.PhysicalMin != b.PhysicalMin:
			return mismatch(i, "physical minimum", a.PhysicalMin, b.PhysicalMin)
		case a.PhysicalMax != b.PhysicalMax:
			return mismatch(i, "physical maximum", a.PhysicalMax, b.PhysicalMax)
		case a.DigitalMin != b.DigitalMin:
			return mismatch(i, "digital minimum", a.DigitalMin, b.DigitalMin)
		case a.DigitalMax != b.DigitalMax:
			return mismatch(i, "digital maximum", a.DigitalMax, b.DigitalMax)
		case a.Prefiltering != b.Prefiltering:
			return mismatch(i, "prefiltering", a.Prefiltering, b.Prefiltering)
		case a.SamplesPerRecord != b.SamplesPerRecord:
			return mismatch(i, "samples per record", a.SamplesPerRecord, b.SamplesPerRecord)
		}
	}

	return nil
}

func mismatch(signal int, field string, want, got any) error {
	if signal < 0 {
		return merry.Prependf(ErrIncompatibleRecordings, "%s does not match (%v != %v)", field, want, got)
	}
	err := merry.Wrap(ErrIncompatibleRecordings,
		merry.WithValue("signal", signal),
		merry.WithValue("field", field),
	)
	return merry.Prependf(err, "signal %d: %s does not match (%v != %v)", signal, field, want, got)
}
