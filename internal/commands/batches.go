package commands

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/SscSPs/tally_ledger_store/internal/core/domain"
)

// readBatchFiles decodes every file into sync batches. A file holds either
// one batch object or an array of them. Numbers are kept as json.Number so
// amounts never pass through float64.
func readBatchFiles(paths []string) ([]domain.SyncBatch, error) {
	var batches []domain.SyncBatch
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening batch file: %w", err)
		}
		decoded, err := decodeBatches(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		batches = append(batches, decoded...)
	}
	return batches, nil
}

func decodeBatches(r io.Reader) ([]domain.SyncBatch, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(br)
	dec.UseNumber()
	if first == '[' {
		var batches []domain.SyncBatch
		if err := dec.Decode(&batches); err != nil {
			return nil, err
		}
		return batches, nil
	}
	var batch domain.SyncBatch
	if err := dec.Decode(&batch); err != nil {
		return nil, err
	}
	return []domain.SyncBatch{batch}, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, fmt.Errorf("empty batch file")
			}
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}
