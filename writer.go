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
	"os"

	"github.com/ansel1/merry/v2"
)

// Writer owns the merged output file. It writes the header on creation and
// then accepts positional record payload writes; positional I/O means
// several goroutines may write non-overlapping ranges without locking.
type Writer struct {
	f   *os.File
	hdr *Header
}

// Create creates the output file at path and writes the serialized header
// as its first HeaderBytes bytes. Unless overwrite is set, an existing
// file at path fails with ErrOutputExists.
func Create(path string, hdr *Header, overwrite bool) (*Writer, error) {
	flags := os.O_RDWR | os.O_CREATE | os.O_EXCL
	if overwrite {
		flags = os.O_RDWR | os.O_CREATE | os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, merry.Prepend(ErrOutputExists, path)
		}
		return nil, merry.Prependf(err, "creating %s", path)
	}

	if err := EncodeHeader(f, hdr); err != nil {
		_ = f.Close()
		return nil, merry.Prependf(err, "writing header to %s", path)
	}

	return &Writer{f: f, hdr: hdr}, nil
}

// Header returns the merged header the file was created with.
func (w *Writer) Header() *Header {
	return w.hdr
}

// WriteAt writes p at byte offset off. The caller is responsible for
// keeping writes within [HeaderBytes, HeaderBytes+DataSize) and
// non-overlapping.
func (w *Writer) WriteAt(p []byte, off int64) (int, error) {
	return w.f.WriteAt(p, off)
}

// Sync flushes the file contents to stable storage.
func (w *Writer) Sync() error {
	return w.f.Sync()
}

// Close closes the output file.
func (w *Writer) Close() error {
	return w.f.Close()
}
