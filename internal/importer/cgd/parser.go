package cgd

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/encoding"
	"github.com/MrJamesThe3rd/tally/internal/importer"
)

const dateLayout = "02-01-2006"

// Parser reads CGD bank CSV exports. The format (conta, extrato, cartão) is
// picked by matching column headers against the known profiles.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) (*importer.Statement, error) {
	utf8r, charset, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", importer.ErrMalformedStatement, err)
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, fmt.Errorf("%w: no CGD header found (expected conta, extrato or cartão columns)",
			importer.ErrUnrecognizedFormat)
	}

	lines, err := parseRows(profile, cols, rows[headerIdx+1:], headerIdx)
	if err != nil {
		return nil, err
	}

	return &importer.Statement{Charset: charset, Lines: lines}, nil
}

// colIndex maps column names to their index in the row.
type colIndex map[string]int

// detectProfile returns the first row that carries every column of a known
// profile, together with that profile and the row's column positions.
func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			if name := strings.TrimSpace(cell); name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if profiles[i].matches(cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

// parseRows reads statement lines below the header. Rows without a valid
// date or amount (blank lines, page footers) are skipped.
// headerIdx is the 0-based position of the header, used for row numbers in errors.
func parseRows(p *Profile, cols colIndex, rows [][]string, headerIdx int) ([]importer.Line, error) {
	dateIdx := cols[p.DateCol]
	descIdx := cols[p.DescCol]

	var lines []importer.Line

	for i, row := range rows {
		rowNum := headerIdx + i + 2

		date, ok := parseDate(cellValue(row, dateIdx))
		if !ok {
			continue
		}

		desc := cellValue(row, descIdx)
		if desc == "" {
			return nil, fmt.Errorf("%w: row %d: missing description", importer.ErrMalformedStatement, rowNum)
		}

		amount, ok := p.amount(cols, row)
		if !ok {
			continue
		}

		lines = append(lines, importer.Line{Date: date, Description: desc, Amount: amount})
	}

	return lines, nil
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

// amount returns the row's signed amount, negative for debits.
func (p *Profile) amount(cols colIndex, row []string) (decimal.Decimal, bool) {
	switch p.AmountMode {
	case amountSingle:
		return nonZeroAmount(cellValue(row, cols[p.AmountCol]))
	case amountSplit:
		if d, ok := nonZeroAmount(cellValue(row, cols[p.DebitCol])); ok {
			return d.Abs().Neg(), true
		}

		if c, ok := nonZeroAmount(cellValue(row, cols[p.CreditCol])); ok {
			return c.Abs(), true
		}
	}

	return decimal.Decimal{}, false
}

func nonZeroAmount(s string) (decimal.Decimal, bool) {
	if s == "" {
		return decimal.Decimal{}, false
	}

	d, err := parseEuropeanAmount(s)
	if err != nil || d.IsZero() {
		return decimal.Decimal{}, false
	}

	return d, true
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
