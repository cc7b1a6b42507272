package eventio

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jayant1554/credit-score-defi/internal/domain/model"
)

// Format is an output encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat parses a case-insensitive format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// WriteJSON writes v as JSON indented by two spaces.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// WriteScores writes records in the given format.
func WriteScores(w io.Writer, recs []model.ScoreRecord, format Format) error {
	switch format {
	case FormatJSON:
		if recs == nil {
			recs = []model.ScoreRecord{}
		}
		return WriteJSON(w, recs)
	case FormatCSV:
		return writeScoresCSV(w, recs)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func writeScoresCSV(w io.Writer, recs []model.ScoreRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"userWallet", "rule_based_score", "credit_score"}); err != nil {
		return err
	}
	for _, r := range recs {
		row := []string{r.UserWallet, strconv.Itoa(r.RuleBasedScore), strconv.Itoa(r.CreditScore)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes to a temporary file next to path and renames it into
// place, so path either holds the complete output or is left untouched.
func WriteFile(path string, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// WriteScoresFile writes records to path in the given format.
func WriteScoresFile(path string, recs []model.ScoreRecord, format Format) error {
	return WriteFile(path, func(w io.Writer) error {
		return WriteScores(w, recs, format)
	})
}
