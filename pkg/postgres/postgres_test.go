package postgres

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConfigURL(t *testing.T) {
	cfg := Config{Host: "db", Port: 5433, User: "app", Pass: "p@ss", DB: "nomino"}

	assert.Equal(t, "postgres://app:p%40ss@db:5433/nomino?sslmode=disable", cfg.URL(""))
	assert.Equal(t, "pgx5://app:p%40ss@db:5433/nomino?sslmode=disable", cfg.URL("pgx5"))

	cfg.SSLMode = "require"
	assert.Equal(t, "postgres://app:p%40ss@db:5433/nomino?sslmode=require", cfg.URL(""))
}

func TestErrorCodes(t *testing.T) {
	unique := fmt.Errorf("insert cart: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}
	badUUID := &pgconn.PgError{Code: "22P02"}

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsUniqueViolation(fk))
	assert.True(t, IsForeignKeyViolation(fk))
	assert.True(t, IsInvalidText(badUUID))
	assert.False(t, IsInvalidText(nil))

	overflow := fmt.Errorf("add item: %w", &pgconn.PgError{Code: "22003"})
	assert.True(t, IsNumericOutOfRange(overflow))
	assert.False(t, IsNumericOutOfRange(fk))
}
