package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringMap stores arbitrary string-to-string attributes as a JSONB object.
// Values are always strings; callers normalize before persisting.
type StringMap map[string]string

func (m *StringMap) Scan(src any) error {
	if src == nil {
		*m = StringMap{}
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("StringMap: unsupported Scan type %T", src)
	}

	if len(raw) == 0 {
		*m = StringMap{}
		return nil
	}

	out := map[string]string{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("StringMap: decode: %w", err)
	}
	*m = StringMap(out)
	return nil
}

func (m StringMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(map[string]string(m))
	if err != nil {
		return nil, fmt.Errorf("StringMap: encode: %w", err)
	}
	return string(raw), nil
}
