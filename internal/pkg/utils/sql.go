package utils

import "database/sql"

// ToSQLStr wraps a string for a nullable column, empty maps to NULL
func ToSQLStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// FromSQLStr unwraps a nullable column value, NULL maps to ""
func FromSQLStr(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	return v.String
}

// ToSQLInt32 wraps an int32 as a non-null column value
func ToSQLInt32(i int32) sql.NullInt32 {
	return sql.NullInt32{Int32: i, Valid: true}
}

// FromSQLInt32OrZero unwraps a nullable int column, NULL maps to 0
func FromSQLInt32OrZero(v sql.NullInt32) int32 {
	if !v.Valid {
		return 0
	}
	return v.Int32
}
