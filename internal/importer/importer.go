package importer

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tally/internal/apperr"
	"github.com/MrJamesThe3rd/tally/internal/encoding"
)

var (
	ErrUnknownBank        = fmt.Errorf("%w: unknown bank", apperr.ErrValidation)
	ErrUnrecognizedFormat = fmt.Errorf("%w: unrecognized statement format", apperr.ErrValidation)
	ErrMalformedStatement = fmt.Errorf("%w: malformed statement", apperr.ErrValidation)
)

type Bank string

const (
	BankCGD Bank = "cgd"
)

// Line is one movement read from a bank statement. Amount is signed:
// money leaving the account is negative.
type Line struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
}

func (l Line) IsDebit() bool {
	return l.Amount.IsNegative()
}

// Statement is the parsed content of one statement file.
type Statement struct {
	Charset encoding.Charset
	Lines   []Line
}

type Parser interface {
	Parse(r io.Reader) (*Statement, error)
}
