package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/davidvella/concat/record"
	"github.com/davidvella/concat/sstable"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultPartitionKey = "default"

func newWriteCmd(a *app) *cobra.Command {
	var partitionKey, output string

	cmd := &cobra.Command{
		Use:   "write",
		Short: "Write lines from stdin into an sstable",
		Long: `
write stores each line read from stdin as one record. Records get
time-ordered IDs, so the table stays sorted in arrival order.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("partition") {
				a.cfg.Write.PartitionKey = partitionKey
			}
			if cmd.Flags().Changed("output") {
				a.cfg.Write.Output = output
			}
			if a.cfg.Write.Output == "" {
				return errors.New("no output file given")
			}
			if a.cfg.Write.PartitionKey == "" {
				a.cfg.Write.PartitionKey = defaultPartitionKey
			}

			n, err := a.write()
			if err != nil {
				return err
			}

			a.log.Info("wrote records",
				zap.String("output", a.cfg.Write.Output),
				zap.String("partition", a.cfg.Write.PartitionKey),
				zap.Int("records", n),
			)
			return nil
		},
	}

	cmd.Flags().StringVarP(&partitionKey, "partition", "p", defaultPartitionKey, "partition key of the records")
	cmd.Flags().StringVarP(&output, "output", "o", "", "sstable to write")
	return cmd
}

func (a *app) write() (int, error) {
	w, err := sstable.OpenWriterFile(a.cfg.Write.Output, nil)
	if err != nil {
		return 0, err
	}

	bw := w.BatchWriter()
	scanner := bufio.NewScanner(a.in)
	for scanner.Scan() {
		id, err := uuid.NewV7()
		if err != nil {
			w.Close()
			return 0, fmt.Errorf("failed to generate id: %w", err)
		}

		err = bw.Add(record.Impl{
			ID:           id.String(),
			PartitionKey: a.cfg.Write.PartitionKey,
			Timestamp:    time.Now().UTC(),
			Data:         bytes.Clone(scanner.Bytes()),
		})
		if err != nil {
			w.Close()
			return 0, err
		}
	}
	if err := scanner.Err(); err != nil {
		w.Close()
		return 0, fmt.Errorf("failed to read input: %w", err)
	}

	n := w.Count()
	return n, bw.Close()
}
