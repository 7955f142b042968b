// Package versecsv reads verse batches from CSV files.
//
// The first record is a header naming the columns; column order is free.
// Required columns are id, sura_no, verse_no, text_arabic, text_english and
// text_bangla. The legacy ayat_text_* names are accepted as aliases. Blank
// lines are skipped and extra columns are ignored.
package versecsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/custodia-labs/versesearch/internal/core/domain"
)

// MIMEType is the content type accepted for uploads.
const MIMEType = "text/csv"

// ErrNoRecords is returned for input without any verse rows.
var ErrNoRecords = fmt.Errorf("%w: no verse records found", domain.ErrInvalidInput)

// LineError attaches the 1-based input line to a parse or validation error.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

const (
	colID      = "id"
	colSuraNo  = "sura_no"
	colVerseNo = "verse_no"
)

var aliases = map[string]string{
	"ayat_text_arabic":  string(domain.FieldArabic),
	"ayat_text_english": string(domain.FieldEnglish),
	"ayat_text_bangla":  string(domain.FieldBangla),
}

func requiredColumns() []string {
	cols := []string{colID, colSuraNo, colVerseNo}
	for _, f := range domain.TextFields() {
		cols = append(cols, f.String())
	}
	return cols
}

// ParseFile reads verses from the CSV file at path.
func ParseFile(path string) ([]domain.Verse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads every verse from r. It fails on the first malformed row;
// no partial batch is returned.
func Parse(r io.Reader) ([]domain.Verse, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoRecords
	}
	if err != nil {
		return nil, csvError(err)
	}
	columns, err := indexHeader(header)
	if err != nil {
		return nil, &LineError{Line: 1, Err: err}
	}

	var (
		verses []domain.Verse
		seen   = make(map[int64]int)
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		line, _ := reader.FieldPos(0)

		verse, err := decodeRecord(record, columns)
		if err != nil {
			return nil, &LineError{Line: line, Err: err}
		}
		if first, dup := seen[verse.ID]; dup {
			return nil, &LineError{
				Line: line,
				Err:  fmt.Errorf("%w: duplicate id %d (first seen on line %d)", domain.ErrInvalidInput, verse.ID, first),
			}
		}
		seen[verse.ID] = line
		verses = append(verses, verse)
	}

	if len(verses) == 0 {
		return nil, ErrNoRecords
	}
	return verses, nil
}

// indexHeader maps canonical column names to their positions.
func indexHeader(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if canonical, ok := aliases[name]; ok {
			name = canonical
		}
		if _, dup := columns[name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", domain.ErrInvalidInput, name)
		}
		columns[name] = i
	}

	var missing []string
	for _, col := range requiredColumns() {
		if _, ok := columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", domain.ErrInvalidInput, strings.Join(missing, ", "))
	}
	return columns, nil
}

func decodeRecord(record []string, columns map[string]int) (domain.Verse, error) {
	field := func(name string) string {
		return strings.TrimSpace(record[columns[name]])
	}

	id, err := strconv.ParseInt(field(colID), 10, 64)
	if err != nil {
		return domain.Verse{}, fmt.Errorf("%w: id %q is not an integer", domain.ErrInvalidInput, field(colID))
	}
	suraNo, err := strconv.Atoi(field(colSuraNo))
	if err != nil {
		return domain.Verse{}, fmt.Errorf("%w: sura_no %q is not an integer", domain.ErrInvalidInput, field(colSuraNo))
	}
	verseNo, err := strconv.Atoi(field(colVerseNo))
	if err != nil {
		return domain.Verse{}, fmt.Errorf("%w: verse_no %q is not an integer", domain.ErrInvalidInput, field(colVerseNo))
	}

	verse := domain.Verse{
		ID:          id,
		SuraNo:      suraNo,
		VerseNo:     verseNo,
		TextArabic:  field(string(domain.FieldArabic)),
		TextEnglish: field(string(domain.FieldEnglish)),
		TextBangla:  field(string(domain.FieldBangla)),
	}
	if err := verse.Validate(); err != nil {
		return domain.Verse{}, err
	}
	return verse, nil
}

// csvError turns a csv.ParseError into a LineError.
func csvError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &LineError{Line: pe.Line, Err: fmt.Errorf("%w: %w", domain.ErrInvalidInput, pe.Err)}
	}
	return fmt.Errorf("read csv: %w", err)
}
