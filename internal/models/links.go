package models

import (
	"database/sql/driver"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Links is the ordered list of streaming URLs attached to a playlist.
// It is stored as a JSON array (jsonb on Postgres, text elsewhere).
type Links []string

// Value implements driver.Valuer.
func (l Links) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *Links) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*l = Links{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("links: unsupported scan type %T", value)
	}
	if len(raw) == 0 {
		*l = Links{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return errors.Join(errors.New("links: invalid json"), err)
	}
	*l = out
	return nil
}

// GormDataType implements schema.GormDataTypeInterface.
func (Links) GormDataType() string {
	return "json"
}

// GormDBDataType picks the column type per dialect.
func (Links) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "jsonb"
	default:
		return "text"
	}
}
