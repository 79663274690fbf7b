package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gitlab.connectwisedev.com/product-catalog/models"
)

// Header names expected in the first row of an import file.
const (
	ColumnTitle       = "Title"
	ColumnDescription = "Description"
	ColumnPrice       = "Price"
	ColumnCount       = "Count"
	ColumnAction      = "Action"
)

// Parser decodes an import CSV one row at a time. It reads from the
// underlying stream only as far as the current row, and it is single pass.
//
// Rows are never rejected for their content: missing cells become empty
// strings and unparsable numbers become NaN. Judging a record is left to
// the consumer of the queue.
type Parser struct {
	reader  *csv.Reader
	columns map[string]int
	started bool
	line    int
}

// NewParser creates a parser over r. A nil reader is an invalid source.
func NewParser(r io.Reader) (*Parser, error) {
	if r == nil {
		return nil, ErrInvalidSourceStream
	}
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true
	return &Parser{reader: reader}, nil
}

// Next returns the next record, or io.EOF once the stream is exhausted.
func (p *Parser) Next() (models.ImportRecord, error) {
	if !p.started {
		if err := p.readHeader(); err != nil {
			return models.ImportRecord{}, err
		}
	}

	row, err := p.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return models.ImportRecord{}, io.EOF
		}
		return models.ImportRecord{}, fmt.Errorf("reading csv row %d: %w", p.line+1, err)
	}
	p.line, _ = p.reader.FieldPos(0)

	return models.ImportRecord{
		Title:       p.cell(row, ColumnTitle),
		Description: p.cell(row, ColumnDescription),
		Price:       parseNumber(p.cell(row, ColumnPrice)),
		Count:       parseInteger(p.cell(row, ColumnCount)),
		Action:      p.cell(row, ColumnAction),
	}, nil
}

// Line is the input line of the last record returned by Next.
func (p *Parser) Line() int {
	return p.line
}

func (p *Parser) readHeader() error {
	p.started = true
	header, err := p.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		return fmt.Errorf("reading csv header: %w", err)
	}

	p.columns = make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if _, dup := p.columns[name]; !dup {
			p.columns[name] = i
		}
	}
	p.line = 1
	return nil
}

func (p *Parser) cell(row []string, column string) string {
	i, ok := p.columns[column]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// ParseAll drains p into a slice, calling onRecord (if set) for every row.
func ParseAll(p *Parser, onRecord func(line int, rec models.ImportRecord)) ([]models.ImportRecord, error) {
	var records []models.ImportRecord
	for {
		rec, err := p.Next()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		if onRecord != nil {
			onRecord(p.Line(), rec)
		}
		records = append(records, rec)
	}
}

func parseNumber(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func parseInteger(s string) float64 {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return math.NaN()
	}
	return float64(n)
}
