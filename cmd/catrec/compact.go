package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/davidvella/concat/compactor"
	"github.com/davidvella/concat/internal/config"
	"github.com/davidvella/concat/internal/source"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCompactCmd(a *app) *cobra.Command {
	var mode, output string

	cmd := &cobra.Command{
		Use:   "compact [SRC...]",
		Short: "Write the sources into a single sstable",
		Long: `
compact writes the records of the sources into one sstable.

In merge mode the sources may overlap; records are merged into key order,
only the newest version of each key is kept and deleted keys are dropped.
In concat mode the sources are written one after another and must already
be in key order across their boundaries.
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("mode") {
				a.cfg.Compact.Mode = mode
			}
			if cmd.Flags().Changed("output") {
				a.cfg.Compact.Output = output
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			if a.cfg.Compact.Output == "" {
				return errors.New("no output file given")
			}

			sources, _, err := a.open(cmd.Context(), args)
			if err != nil {
				return err
			}
			defer a.close(sources)

			start := time.Now()
			n, err := a.compact(sources)
			if err != nil {
				a.log.Error("compaction failed", zap.String("output", a.cfg.Compact.Output), zap.Error(err))
				return err
			}

			a.log.Info("compacted sources",
				zap.String("mode", a.cfg.Compact.Mode),
				zap.String("output", a.cfg.Compact.Output),
				zap.Int("sources", len(sources)),
				zap.Int("records", n),
				zap.Duration("elapsed", time.Since(start)),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", config.ModeMerge, "compaction mode (merge, concat)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "sstable to write")
	return cmd
}

// compact writes the table to a temporary file next to the output and
// renames it into place once every source has been read, so an output
// that is also an input survives a failure and is read intact.
func (a *app) compact(sources []*source.Source) (n int, err error) {
	path := a.cfg.Compact.Output
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err == nil {
			err = os.Rename(f.Name(), path)
		}
		if err != nil {
			os.Remove(f.Name())
		}
	}()

	w := bufio.NewWriter(f)
	ranges := source.Ranges(sources)
	switch a.cfg.Compact.Mode {
	case config.ModeConcat:
		n, err = compactor.Concat(w, ranges...)
	default:
		n, err = compactor.Merge(w, ranges...)
	}
	if err != nil {
		return n, err
	}
	if err := readErr(sources); err != nil {
		return n, err
	}
	return n, w.Flush()
}
