// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package bdf

import "github.com/ansel1/merry/v2"

// Errors returned by the merge engine. Call sites attach the file path,
// record index or field name via merry wrappers; classify with errors.Is.
var (
	// ErrMalformedHeader indicates an unparsable or internally
	// inconsistent BDF header.
	ErrMalformedHeader = merry.Sentinel("malformed bdf header")

	// ErrTooFewInputs indicates fewer than two recordings were given.
	ErrTooFewInputs = merry.Sentinel("at least two input recordings are required")

	// ErrIncompatibleRecordings indicates the inputs do not share an
	// identical channel table and record layout.
	ErrIncompatibleRecordings = merry.Sentinel("incompatible recordings")

	// ErrTruncatedFile indicates a file holds fewer record bytes than its
	// header declares.
	ErrTruncatedFile = merry.Sentinel("truncated bdf file")

	// ErrOutputExists indicates the output path already exists and
	// overwriting was not requested.
	ErrOutputExists = merry.Sentinel("output file already exists")

	// ErrChunkTask wraps a read or write failure for a single chunk of
	// records; the whole merge is aborted.
	ErrChunkTask = merry.Sentinel("chunk task failed")
)
