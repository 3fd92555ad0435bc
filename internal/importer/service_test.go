package importer_test

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/tally/internal/apperr"
	"github.com/MrJamesThe3rd/tally/internal/encoding"
	"github.com/MrJamesThe3rd/tally/internal/importer"
	"github.com/MrJamesThe3rd/tally/internal/importer/cgd"
)

type stubParser struct {
	stmt *importer.Statement
	err  error
}

func (p stubParser) Parse(io.Reader) (*importer.Statement, error) {
	return p.stmt, p.err
}

func line(desc, amount string) importer.Line {
	return importer.Line{
		Date:        time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC),
		Description: desc,
		Amount:      decimal.RequireFromString(amount),
	}
}

func TestService_Import(t *testing.T) {
	svc := importer.NewService(map[importer.Bank]importer.Parser{
		importer.BankCGD: stubParser{stmt: &importer.Statement{
			Charset: encoding.UTF8,
			Lines: []importer.Line{
				line("SUPERMERCADO", "-23.40"),
				line("SALARIO", "1500"),
				line("FARMACIA", "-8.99"),
			},
		}},
	})

	res, err := svc.Import(importer.BankCGD, strings.NewReader(""))
	require.NoError(t, err)

	require.Len(t, res.Debits, 2)
	assert.Equal(t, "SUPERMERCADO", res.Debits[0].Description)
	assert.Equal(t, "23.4", res.Debits[0].Amount.String())
	assert.Equal(t, "8.99", res.Debits[1].Amount.String())
	assert.Equal(t, 1, res.SkippedCredits)
	assert.Equal(t, encoding.UTF8, res.Statement.Charset)
}

func TestService_Import_UnknownBank(t *testing.T) {
	svc := importer.NewService(map[importer.Bank]importer.Parser{importer.BankCGD: cgd.NewParser()})

	_, err := svc.Import("millennium", strings.NewReader(""))
	assert.ErrorIs(t, err, importer.ErrUnknownBank)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, err.Error(), "cgd")
}

func TestService_Import_ParserError(t *testing.T) {
	boom := errors.New("boom")
	svc := importer.NewService(map[importer.Bank]importer.Parser{importer.BankCGD: stubParser{err: boom}})

	_, err := svc.Import(importer.BankCGD, strings.NewReader(""))
	assert.ErrorIs(t, err, boom)
}

func TestService_Import_CGD(t *testing.T) {
	svc := importer.NewService(map[importer.Bank]importer.Parser{importer.BankCGD: cgd.NewParser()})

	csv := `Data ;Data valor ;Descrição ;Débito ;Crédito ;
16-12-2025 ;14-12-2025 ;PA GONDOMAR ;64,00 ; ;
17-12-2025 ;17-12-2025 ;REFUND AMAZON ; ;25,00 ;
`

	res, err := svc.Import(importer.BankCGD, strings.NewReader(csv))
	require.NoError(t, err)

	require.Len(t, res.Debits, 1)
	assert.Equal(t, "64", res.Debits[0].Amount.String())
	assert.Equal(t, 1, res.SkippedCredits)
}
