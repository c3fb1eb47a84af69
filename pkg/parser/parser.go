package parser

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/spf13/cast"
)

func PgUUIDFromString(id string) (pgtype.UUID, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return pgtype.UUID{}, err
	}

	var pgUUID pgtype.UUID
	copy(pgUUID.Bytes[:], u[:])
	pgUUID.Valid = true

	return pgUUID, nil
}

func PgUUIDToString(id pgtype.UUID) (string, error) {
	if !id.Valid {
		return "", errors.New("invalid id")
	}

	u, err := uuid.FromBytes(id.Bytes[:])
	if err != nil {
		return "", err
	}

	return u.String(), nil
}

// ProductID parses a positive product id from user input (forms, CSV cells,
// CLI flags). Returns 0 for anything that is not a positive integer.
func ProductID(v string) int64 {
	id := cast.ToInt64(strings.TrimSpace(v))
	if id < 0 {
		return 0
	}
	return id
}

// Price parses a monetary value from loosely typed input. Spreadsheet cells
// may carry thousands separators; those are stripped before conversion.
func Price(v string) float64 {
	v = strings.ReplaceAll(strings.TrimSpace(v), ",", "")
	return cast.ToFloat64(v)
}

// FloatPtr returns nil for blank input, otherwise a pointer to the parsed
// value. Import paths use it to distinguish "leave untouched" from "set to 0".
func FloatPtr(v string) *float64 {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	f := Price(v)
	return &f
}

// IntPtr is FloatPtr for integer fields (stock quantities).
func IntPtr(v string) *int {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	i := cast.ToInt(strings.TrimSpace(v))
	return &i
}

// StringPtr returns nil for blank input.
func StringPtr(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
