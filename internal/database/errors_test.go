package database_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/tally/internal/database"
)

func TestErrorCodes(t *testing.T) {
	unique := fmt.Errorf("creating category: %w", &pgconn.PgError{Code: "23505"})
	check := &pgconn.PgError{Code: "23514"}
	fk := &pgconn.PgError{Code: "23503"}

	assert.True(t, database.IsUniqueViolation(unique))
	assert.False(t, database.IsCheckViolation(unique))
	assert.True(t, database.IsCheckViolation(check))
	assert.True(t, database.IsForeignKeyViolation(fk))
	assert.False(t, database.IsForeignKeyViolation(check))
	assert.False(t, database.IsUniqueViolation(errors.New("connection refused")))
}
