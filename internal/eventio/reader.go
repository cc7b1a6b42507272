// Package eventio reads raw lending events and writes score records.
package eventio

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jayant1554/credit-score-defi/internal/domain/model"
)

// ReadEvents decodes a JSON array of event records from r, one element at a
// time. Anything other than a single array of objects fails with
// ErrMalformedJSON.
func ReadEvents(r io.Reader) ([]model.RawEvent, error) {
	dec := json.NewDecoder(bufio.NewReader(r))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedJSON, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("%w: expected a JSON array, got %v", ErrMalformedJSON, tok)
	}

	var events []model.RawEvent
	for dec.More() {
		var ev model.RawEvent
		if err := dec.Decode(&ev); err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrMalformedJSON, len(events), err)
		}
		events = append(events, ev)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedJSON, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after array", ErrMalformedJSON)
	}
	return events, nil
}

// ReadEventsFile reads events from the file at path. A missing file yields
// an error matching fs.ErrNotExist.
func ReadEventsFile(path string) ([]model.RawEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	events, err := ReadEvents(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return events, nil
}
