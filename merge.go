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
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/ansel1/merry/v2"
	"github.com/orsinium-labs/enum"
	"golang.org/x/sync/errgroup"
)

// State is the lifecycle state of a single merge operation.
type State enum.Member[string]

var (
	StateValidating    = State{Value: "validating"}
	StateHeaderWritten = State{Value: "header written"}
	StateMerging       = State{Value: "merging"}
	StateFinalizing    = State{Value: "finalizing"}
	StateDone          = State{Value: "done"}
	StateFailed        = State{Value: "failed"}
	States             = enum.New(StateValidating, StateHeaderWritten, StateMerging, StateFinalizing, StateDone, StateFailed)
)

// Options configures a Merger.
type Options struct {
	// ChunkSize is the number of records copied per chunk task.
	// Defaults to 1.
	ChunkSize int
	// Workers is the size of the worker pool in parallel mode.
	// Defaults to runtime.GOMAXPROCS(0).
	Workers int
	// Sequential disables the worker pool and copies chunks in task
	// order on the calling goroutine.
	Sequential bool
	// Overwrite replaces an existing output file instead of failing
	// with ErrOutputExists.
	Overwrite bool
	// Logger receives per-input progress messages. Defaults to a
	// discarded logger.
	Logger *slog.Logger
}

// Merger merges two or more BDF recordings into a single output file by
// concatenating their data records. Records are copied verbatim; the
// merged header is the first input's header with the summed record count.
type Merger struct {
	opts Options
}

// NewMerger returns a Merger with the given options.
func NewMerger(opts Options) (*Merger, error) {
	if opts.ChunkSize < 0 {
		return nil, merry.Errorf("chunk size must be a positive integer, got %d", opts.ChunkSize)
	}
	if opts.ChunkSize == 0 {
		opts.ChunkSize = 1
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Merger{opts: opts}, nil
}

// chunkTask copies one contiguous run of records from a source file to a
// precomputed byte offset in the output. The offset alone determines where
// the chunk lands, so tasks may complete in any order.
type chunkTask struct {
	path   string
	reader *RecordReader
	start  int   // first source record
	count  int   // number of records
	dstOff int64 // destination byte offset in the output file
}

// Merge merges the recordings at inputs, in order, into a new file at
// output. On failure the output file may exist with partial contents and
// must not be treated as a valid recording.
func (m *Merger) Merge(ctx context.Context, inputs []string, output string) (err error) {
	state := StateValidating
	defer func() {
		if err != nil {
			// Record the stage the operation was in when it failed.
			err = merry.Wrap(err,
				merry.WithValue("state", StateFailed.Value),
				merry.WithValue("during", state.Value),
			)
		}
	}()

	files := make([]*os.File, 0, len(inputs))
	defer func() {
		for _, f := range files {
			_ = f.Close()
		}
	}()

	headers := make([]*Header, 0, len(inputs))
	for _, path := range inputs {
		f, err := os.Open(path)
		if err != nil {
			return merry.Wrap(err)
		}
		files = append(files, f)

		hdr, err := DecodeHeader(f)
		if err != nil {
			return merry.Prepend(err, path)
		}
		headers = append(headers, hdr)
	}

	merged, err := Validate(headers)
	if err != nil {
		return err
	}

	// Reject short inputs before any output byte is written.
	for i, f := range files {
		fi, err := f.Stat()
		if err != nil {
			return merry.Wrap(err)
		}
		if want := int64(headers[i].HeaderBytes) + headers[i].DataSize(); fi.Size() < want {
			return merry.Prependf(ErrTruncatedFile, "%s: %d bytes, header declares %d",
				inputs[i], fi.Size(), want)
		}
	}

	out, err := Create(output, merged, m.opts.Overwrite)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = merry.Wrap(cerr)
		}
	}()
	state = StateHeaderWritten

	tasks := m.buildTasks(inputs, files, headers, merged)

	state = StateMerging
	if m.opts.Sequential {
		err = m.runSequential(ctx, tasks, out)
	} else {
		err = m.runParallel(ctx, tasks, out)
	}
	if err != nil {
		return err
	}

	state = StateFinalizing
	if err := out.Sync(); err != nil {
		return merry.Wrap(err)
	}

	state = StateDone
	m.opts.Logger.Info("merged recordings",
		"inputs", len(inputs), "records", merged.DataRecords, "output", output)
	return nil
}

// buildTasks partitions every input's record range into chunk tasks in
// canonical order: all records of input 0, then input 1, and so on. Each
// task's destination offset is precomputed from the cumulative record
// count of the inputs before it.
func (m *Merger) buildTasks(inputs []string, files []*os.File, headers []*Header, merged *Header) []chunkTask {
	recordSize := merged.RecordSize()
	dstOff := int64(merged.HeaderBytes)

	var tasks []chunkTask
	for i, hdr := range headers {
		reader := NewRecordReader(files[i], hdr)
		for start := 0; start < hdr.DataRecords; start += m.opts.ChunkSize {
			count := min(m.opts.ChunkSize, hdr.DataRecords-start)
			tasks = append(tasks, chunkTask{
				path:   inputs[i],
				reader: reader,
				start:  start,
				count:  count,
				dstOff: dstOff,
			})
			dstOff += int64(count) * recordSize
		}
		m.opts.Logger.Info("queued records",
			"path", inputs[i], "input", i+1, "of", len(inputs), "records", hdr.DataRecords)
	}
	return tasks
}

// runSequential copies chunks in task order, reusing a single buffer.
func (m *Merger) runSequential(ctx context.Context, tasks []chunkTask, out *Writer) error {
	var buf []byte
	for _, t := range tasks {
		if err := ctx.Err(); err != nil {
			return merry.Wrap(err)
		}
		if n := int(t.reader.RecordSize()) * t.count; len(buf) < n {
			buf = make([]byte, n)
		}
		if err := copyChunk(t, buf, out); err != nil {
			return err
		}
	}
	return nil
}

// runParallel copies chunks on a bounded worker pool. The first failure
// stops dispatch; in-flight workers drain before the aggregate error is
// returned. Output correctness does not depend on completion order since
// every task writes at its own precomputed offset.
func (m *Merger) runParallel(ctx context.Context, tasks []chunkTask, out *Writer) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.Workers)

	for _, t := range tasks {
		t := t
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			buf := make([]byte, int(t.reader.RecordSize())*t.count)
			return copyChunk(t, buf, out)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	// Dispatch may have stopped early on cancellation without any task
	// failing.
	return merry.Wrap(ctx.Err())
}

// copyChunk reads one chunk's records from its source and writes them at
// the chunk's destination offset. buf must hold at least the chunk's bytes.
func copyChunk(t chunkTask, buf []byte, out *Writer) error {
	n := int(t.reader.RecordSize()) * t.count
	if err := t.reader.ReadRecords(t.start, t.count, buf); err != nil {
		return fmt.Errorf("%s records %d-%d: %w: %w", t.path, t.start, t.start+t.count, ErrChunkTask, err)
	}
	if _, err := out.WriteAt(buf[:n], t.dstOff); err != nil {
		return fmt.Errorf("%s records %d-%d: %w: %w", t.path, t.start, t.start+t.count, ErrChunkTask, err)
	}
	return nil
}
