// Package source opens the record stores catrec reads from. A source is
// named by a "kind:path" string and is opened as a concat range of
// records.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/davidvella/concat"
	"github.com/davidvella/concat/kv"
	"github.com/davidvella/concat/record"
	"github.com/davidvella/concat/sstable"
	"github.com/davidvella/concat/wal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrUnknownKind = errors.New("source: unknown kind")

type Kind string

const (
	KindSSTable Kind = "sst"
	KindWAL     Kind = "wal"
	KindPebble  Kind = "pebble"
	// KindDir is a directory of sstables, read in file name order.
	KindDir Kind = "dir"
)

type options struct {
	log *zap.Logger
}

type Option func(*options)

func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// Source is an opened record store.
type Source struct {
	Name  string
	Kind  Kind
	Range concat.Range[record.Record]

	err     func() error
	closers []io.Closer
}

// Err returns the first error hit while reading the source's records.
func (s *Source) Err() error {
	if s.err == nil {
		return nil
	}
	return s.err()
}

// Close releases the files and snapshots held by the source.
func (s *Source) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i].Close())
	}
	s.closers = nil
	return errors.Join(errs...)
}

// Parse splits a "kind:path" string.
func Parse(name string) (Kind, string, error) {
	kind, path, ok := strings.Cut(name, ":")
	if !ok || path == "" {
		return "", "", fmt.Errorf("source: malformed source %q, want kind:path", name)
	}
	switch k := Kind(kind); k {
	case KindSSTable, KindWAL, KindPebble, KindDir:
		return k, path, nil
	default:
		return "", "", fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
}

// Open opens the source called name, a "kind:path" string.
func Open(ctx context.Context, name string, opts ...Option) (*Source, error) {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	kind, path, err := Parse(name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var src *Source
	switch kind {
	case KindSSTable:
		src, err = openSSTable(path)
	case KindWAL:
		src, err = openWAL(path)
	case KindPebble:
		src, err = openPebble(path)
	case KindDir:
		src, err = openDir(path)
	}
	if err != nil {
		o.log.Error("failed to open source", zap.String("source", name), zap.Error(err))
		return nil, err
	}

	src.Name, src.Kind = name, kind
	fields := []zap.Field{
		zap.String("source", name),
		zap.Stringer("category", concat.CategoryOf(src.Range)),
	}
	if n, ok := concat.Size(src.Range); ok {
		fields = append(fields, zap.Int("records", n))
	}
	o.log.Debug("opened source", fields...)
	return src, nil
}

// OpenAll opens the named sources concurrently. The sources are returned in the
// order given. If any fails the others are closed.
func OpenAll(ctx context.Context, names []string, opts ...Option) ([]*Source, error) {
	sources := make([]*Source, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			src, err := Open(gctx, name, opts...)
			if err != nil {
				return err
			}
			sources[i] = src
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, src := range sources {
			if src != nil {
				src.Close()
			}
		}
		return nil, err
	}
	return sources, nil
}

// Ranges returns the ranges of sources, in order.
func Ranges(sources []*Source) []concat.Range[record.Record] {
	ranges := make([]concat.Range[record.Record], len(sources))
	for i, src := range sources {
		ranges[i] = src.Range
	}
	return ranges
}

func openSSTable(path string) (*Source, error) {
	r, err := sstable.OpenReaderFile(path, &sstable.Options{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	return &Source{
		Range:   r,
		err:     r.Err,
		closers: []io.Closer{r},
	}, nil
}

func openWAL(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: failed to open log: %w", err)
	}

	r := wal.NewReader(f)
	rng, err := r.Replay()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("source: failed to read log %s: %w", path, err)
	}
	return &Source{
		Range:   rng,
		err:     r.Err,
		closers: []io.Closer{f},
	}, nil
}

func openPebble(dir string) (*Source, error) {
	store, err := kv.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("source: failed to open store: %w", err)
	}

	rng := store.Range(nil, nil)
	return &Source{
		Range:   rng,
		err:     rng.Err,
		closers: []io.Closer{store, rng},
	}, nil
}

// List returns the names of the sstable files in dir, sorted.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".sst" {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}

func openDir(dir string) (*Source, error) {
	files, err := List(dir)
	if err != nil {
		return nil, fmt.Errorf("source: failed to list %s: %w", dir, err)
	}
	if len(files) == 0 {
		return &Source{Range: concat.Values[record.Record]()}, nil
	}

	var (
		src    = &Source{}
		slots  = make([]concat.Range[record.Record], 0, len(files))
		checks = make([]func() error, 0, len(files))
	)
	for _, name := range files {
		r, err := sstable.OpenReaderFile(filepath.Join(dir, name), &sstable.Options{ReadOnly: true})
		if err != nil {
			src.Close()
			return nil, fmt.Errorf("source: failed to open %s: %w", name, err)
		}
		src.closers = append(src.closers, r)
		slots = append(slots, r)
		checks = append(checks, r.Err)
	}

	src.Range = concat.New(slots[0], slots[1:]...)
	src.err = func() error {
		var errs []error
		for _, check := range checks {
			errs = append(errs, check())
		}
		return errors.Join(errs...)
	}
	return src, nil
}
