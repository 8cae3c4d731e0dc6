package main

import (
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/davidvella/concat"
	"github.com/davidvella/concat/internal/config"
	"github.com/davidvella/concat/record"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCatCmd(a *app) *cobra.Command {
	var (
		reverse bool
		skip    int
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "cat [SRC...]",
		Short: "Print the records of the sources in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			if skip < 0 || limit < 0 {
				return fmt.Errorf("--skip and --limit must not be negative")
			}

			sources, v, err := a.open(cmd.Context(), args)
			if err != nil {
				return err
			}
			defer a.close(sources)

			var seq iter.Seq[record.Record]
			switch {
			case reverse:
				if seq, err = concat.Backward(v); err != nil {
					return fmt.Errorf("cannot reverse %s sources: %w", concat.CategoryOf(v), err)
				}
			default:
				seq = from(v, skip)
			}

			n, err := printRecords(a.out, a.cfg.Output.Format, seq, limit)
			if err != nil {
				return err
			}
			if err := readErr(sources); err != nil {
				return err
			}

			a.log.Debug("printed records", zap.Int("records", n))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&reverse, "reverse", "r", false, "print from last to first")
	cmd.Flags().IntVar(&skip, "skip", 0, "skip the first n records")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "print at most n records")
	cmd.MarkFlagsMutuallyExclusive("reverse", "skip")
	return cmd
}

// from iterates v starting n records past its beginning.
func from(v concat.Range[record.Record], n int) iter.Seq[record.Record] {
	return func(yield func(record.Record) bool) {
		c := concat.Seek(v, n)
		if s, ok := c.(concat.Stopper); ok {
			defer s.Stop()
		}
		for ; !v.AtEnd(c); c.Next() {
			if !yield(c.Value()) {
				return
			}
		}
	}
}

type jsonRecord struct {
	PartitionKey string    `json:"partition_key"`
	ID           string    `json:"id"`
	Watermark    time.Time `json:"watermark"`
	Data         string    `json:"data,omitempty"`
	Deleted      bool      `json:"deleted,omitempty"`
}

// printRecords writes at most limit records of seq, all of them when limit
// is 0. A nil record ends the output; the failing source reports why.
func printRecords(w io.Writer, format string, seq iter.Seq[record.Record], limit int) (int, error) {
	enc := json.NewEncoder(w)

	n := 0
	for rec := range seq {
		if rec == nil || limit > 0 && n == limit {
			break
		}

		var err error
		switch format {
		case config.FormatJSON:
			err = enc.Encode(jsonRecord{
				PartitionKey: rec.GetPartitionKey(),
				ID:           rec.GetID(),
				Watermark:    rec.GetWatermark(),
				Data:         string(rec.GetData()),
				Deleted:      rec.IsTombstone(),
			})
		default:
			data := string(rec.GetData())
			if rec.IsTombstone() {
				data = "<deleted>"
			}
			_, err = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				rec.GetPartitionKey(), rec.GetID(), rec.GetWatermark().Format(time.RFC3339Nano), data)
		}
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
