package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// DefaultBatchSize bounds how many pending records accumulate before a
// batch commit.
const DefaultBatchSize = 1000

// ErrBadHeader rejects a whole file whose header does not match its
// contract. No rows are read past a bad header.
var ErrBadHeader = errors.New("unexpected CSV header")

// headerSpec lists, per column, the accepted header names. Matching is
// case-insensitive and the file may carry extra trailing columns.
type headerSpec [][]string

func matchHeader(header []string, spec headerSpec) bool {
	if len(header) < len(spec) {
		return false
	}
	for i, alternatives := range spec {
		actual := strings.TrimSpace(header[i])
		ok := false
		for _, alt := range alternatives {
			if strings.EqualFold(actual, alt) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// rowFunc processes one data row. Returning an error marks the row as
// skipped; it never aborts the file.
type rowFunc func(line []string, lineNum int) error

// streamCSV reads one CSV stream top to bottom. bind receives the header
// and returns the row handler, so importers that map columns by name can
// inspect the header before any row is processed. Row handler errors are
// logged and counted as skipped; read errors abort the file.
func streamCSV(r io.Reader, stats *Stats, bind func(header []string) (rowFunc, error)) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	handle, err := bind(header)
	if err != nil {
		return err
	}

	lineNum := 1
	for {
		line, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNum+1, err)
		}
		lineNum++
		stats.Processed++

		if rerr := handle(line, lineNum); rerr != nil {
			slog.Warn("row skipped", "line", lineNum, "err", rerr)
			stats.Skipped++
		}
	}
}

// fixedHeader binds a positional row handler under a validated header.
// Rows carrying fewer fields than the header contract are skipped.
func fixedHeader(spec headerSpec, handle rowFunc) func(header []string) (rowFunc, error) {
	return func(header []string) (rowFunc, error) {
		if !matchHeader(header, spec) {
			return nil, fmt.Errorf("%w: %v", ErrBadHeader, header)
		}
		return func(line []string, lineNum int) error {
			if len(line) < len(spec) {
				return fmt.Errorf("short row: %d of %d fields", len(line), len(spec))
			}
			return handle(line, lineNum)
		}, nil
	}
}

// batch accumulates pending records and commits them in bounded chunks.
// A failed commit is not retried: onFail reverts the chunk's contribution
// to the statistics.
type batch[T any] struct {
	label  string
	size   int
	save   func(items []T) error
	onFail func(n int)
	items  []T
}

func newBatch[T any](label string, size int, save func(items []T) error, onFail func(n int)) *batch[T] {
	if size <= 0 {
		size = DefaultBatchSize
	}
	return &batch[T]{label: label, size: size, save: save, onFail: onFail}
}

func (b *batch[T]) add(item T) {
	b.items = append(b.items, item)
	if len(b.items) >= b.size {
		b.flush()
	}
}

func (b *batch[T]) flush() {
	if len(b.items) == 0 {
		return
	}
	n := len(b.items)
	if err := b.save(b.items); err != nil {
		slog.Error("batch commit failed", "batch", b.label, "size", n, "err", err)
		b.onFail(n)
	}
	b.items = b.items[:0]
}
