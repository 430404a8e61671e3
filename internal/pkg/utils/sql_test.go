package utils

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSQLStr(t *testing.T) {
	assert.Equal(t, sql.NullString{String: "olia", Valid: true}, ToSQLStr("olia"))
	assert.Equal(t, sql.NullString{String: "", Valid: false}, ToSQLStr(""))
}

func TestFromSQLStr(t *testing.T) {
	assert.Equal(t, "olia", FromSQLStr(sql.NullString{String: "olia", Valid: true}))
	assert.Equal(t, "", FromSQLStr(sql.NullString{String: "olia", Valid: false}))
}

func TestToSQLInt32(t *testing.T) {
	assert.Equal(t, sql.NullInt32{Int32: 10, Valid: true}, ToSQLInt32(10))
	assert.Equal(t, sql.NullInt32{Int32: 0, Valid: true}, ToSQLInt32(0))
}

func TestFromSQLInt32OrZero(t *testing.T) {
	assert.Equal(t, int32(10), FromSQLInt32OrZero(sql.NullInt32{Int32: 10, Valid: true}))
	assert.Equal(t, int32(0), FromSQLInt32OrZero(sql.NullInt32{Int32: 10, Valid: false}))
}
