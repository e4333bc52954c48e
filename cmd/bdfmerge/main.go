// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Command bdfmerge concatenates two or more BDF recordings into one file.
package main

import (
	"log/slog"
	"os"

	"github.com/OpenPSG/bdf"
	"github.com/spf13/cobra"
)

func main() {
	var (
		out                    string
		chunkSize              int
		workers                int
		disableMultiprocessing bool
		overwrite              bool
	)

	cmd := &cobra.Command{
		Use:           "bdfmerge --out merged.bdf <input.bdf> <input.bdf>...",
		Short:         "Merge two or more BDF recordings into a single file",
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}))

			merger, err := bdf.NewMerger(bdf.Options{
				ChunkSize:  chunkSize,
				Workers:    workers,
				Sequential: disableMultiprocessing,
				Overwrite:  overwrite,
				Logger:     logger,
			})
			if err != nil {
				return err
			}

			return merger.Merge(cmd.Context(), args, out)
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "output BDF file")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 1, "number of records to copy per chunk")
	cmd.Flags().IntVar(&workers, "workers", 0, "number of parallel workers (0 = number of CPUs)")
	cmd.Flags().BoolVar(&disableMultiprocessing, "disable-multiprocessing", false, "copy chunks sequentially")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace the output file if it already exists")
	_ = cmd.MarkFlagRequired("out")

	if err := cmd.Execute(); err != nil {
		slog.Error("merge failed", "error", err)
		os.Exit(1)
	}
}
