package importer

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
)

type Service struct {
	parsers map[Bank]Parser
}

func NewService(parsers map[Bank]Parser) *Service {
	return &Service{parsers: parsers}
}

// Result holds the debits of an imported statement as positive amounts.
// Credits are not expenses and are only counted.
type Result struct {
	Bank           Bank
	Statement      *Statement
	Debits         []Line
	SkippedCredits int
}

// Banks lists the statement sources that can be imported, sorted.
func (s *Service) Banks() []Bank {
	return slices.Sorted(maps.Keys(s.parsers))
}

func (s *Service) Import(bank Bank, r io.Reader) (*Result, error) {
	parser, ok := s.parsers[bank]
	if !ok {
		return nil, fmt.Errorf("%w %q: must be one of %v", ErrUnknownBank, bank, s.Banks())
	}

	stmt, err := parser.Parse(r)
	if err != nil {
		return nil, err
	}

	res := &Result{Bank: bank, Statement: stmt, Debits: make([]Line, 0, len(stmt.Lines))}

	for _, l := range stmt.Lines {
		if !l.IsDebit() {
			res.SkippedCredits++
			continue
		}

		l.Amount = l.Amount.Abs()
		res.Debits = append(res.Debits, l)
	}

	slog.Info("statement parsed", "bank", bank, "charset", stmt.Charset,
		"debits", len(res.Debits), "skipped_credits", res.SkippedCredits)

	return res, nil
}
