package tx

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithTx_NilLeavesContextUnchanged(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, WithTx(ctx, nil))

	_, ok := From(ctx)
	assert.False(t, ok)
}

func TestWithTx_RoundTrip(t *testing.T) {
	tx := &sql.Tx{}
	got, ok := From(WithTx(context.Background(), tx))
	assert.True(t, ok)
	assert.Same(t, tx, got)
}

func TestPick(t *testing.T) {
	db := &sql.DB{}
	assert.Same(t, db, Pick(context.Background(), db))

	tx := &sql.Tx{}
	assert.Same(t, tx, Pick(WithTx(context.Background(), tx), db))
}
