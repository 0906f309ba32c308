package models

import (
	"database/sql/driver"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Flag is a boolean persisted as a single-byte BLOB: 0xFF for true, 0x00
// for false. The same two bytes appear on the wire, so a flag travels from
// database to peer without reinterpretation, and anything else in a stored
// row is corruption worth failing on.
type Flag bool

const (
	flagTrue  byte = 0xFF
	flagFalse byte = 0x00
)

// Value implements driver.Valuer.
func (f Flag) Value() (driver.Value, error) {
	if f {
		return []byte{flagTrue}, nil
	}
	return []byte{flagFalse}, nil
}

// Scan implements sql.Scanner. Only the two canonical bytes are accepted.
func (f *Flag) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("scan flag: unsupported type %T", src)
	}

	if len(b) != 1 {
		return fmt.Errorf("scan flag: %d byte(s), want 1", len(b))
	}
	switch b[0] {
	case flagTrue:
		*f = true
	case flagFalse:
		*f = false
	default:
		return fmt.Errorf("scan flag: invalid byte 0x%02X", b[0])
	}
	return nil
}

// GormDBDataType maps the flag to the backend's binary column type.
func (Flag) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "bytea"
	}
	return "blob"
}

// Bool returns the flag as a plain bool.
func (f Flag) Bool() bool {
	return bool(f)
}
