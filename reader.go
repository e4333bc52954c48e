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
	"errors"
	"io"

	"github.com/ansel1/merry/v2"
)

// RecordReader reads whole data records from a BDF file by position. It
// keeps no cursor between calls, so independent readers (or one reader
// from several goroutines) may read disjoint record ranges of the same
// file concurrently.
type RecordReader struct {
	r          io.ReaderAt
	hdr        *Header
	recordSize int64
}

// NewRecordReader returns a reader for the record payload described by
// hdr. The header must already have been decoded from the same file.
func NewRecordReader(r io.ReaderAt, hdr *Header) *RecordReader {
	return &RecordReader{
		r:          r,
		hdr:        hdr,
		recordSize: hdr.RecordSize(),
	}
}

// RecordSize returns the byte length of a single data record.
func (rr *RecordReader) RecordSize() int64 {
	return rr.recordSize
}

// ReadRecords reads count records starting at record start into dst, which
// must be at least count*RecordSize() bytes. It fails with ErrTruncatedFile
// if the file holds fewer bytes than the header declares for that range.
func (rr *RecordReader) ReadRecords(start, count int, dst []byte) error {
	n := int(rr.recordSize) * count
	if len(dst) < n {
		return merry.Errorf("buffer too small: %d < %d", len(dst), n)
	}

	off := int64(rr.hdr.HeaderBytes) + int64(start)*rr.recordSize
	if _, err := rr.r.ReadAt(dst[:n], off); err != nil {
		if errors.Is(err, io.EOF) {
			return merry.Prependf(ErrTruncatedFile, "records %d-%d", start, start+count)
		}
		return merry.Prependf(err, "reading records %d-%d", start, start+count)
	}

	return nil
}

// ReadRange reads count records starting at record start into a newly
// allocated buffer.
func (rr *RecordReader) ReadRange(start, count int) ([]byte, error) {
	dst := make([]byte, int(rr.recordSize)*count)
	if err := rr.ReadRecords(start, count, dst); err != nil {
		return nil, err
	}
	return dst, nil
}
