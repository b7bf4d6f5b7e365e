package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapRepoError(t *testing.T) {
	details := map[string]any{"order_id": "abc"}

	notFound := ToDomainError(MapRepoError(pgx.ErrNoRows, "order", details))
	assert.Equal(t, CodeNotFound, notFound.Code)
	assert.Equal(t, "order not found", notFound.Message)

	malformed := fmt.Errorf("get order: %w", &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`})
	mapped := ToDomainError(MapRepoError(malformed, "order", details))
	assert.Equal(t, CodeNotFound, mapped.Code)
	assert.Equal(t, http.StatusNotFound, mapped.HTTPStatus)
	assert.Equal(t, "abc", mapped.Details["order_id"])

	down := MapRepoError(errors.New("connection refused"), "order", details)
	assert.True(t, errors.Is(down, ErrPersistence))

	conflict := NewConflict("taken", nil)
	assert.Same(t, conflict, MapRepoError(conflict, "order", details))
	assert.NoError(t, MapRepoError(nil, "order", details))
}
