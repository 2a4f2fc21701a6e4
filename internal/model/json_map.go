package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Custom implementation of a JSON object column

type JSONMap map[string]any

// Value implements the driver.Valuer interface.
// A nil map is stored as an empty object so reads never see NULL.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}

	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSONMap, %w", err)
	}

	return string(b), nil
}

// Scan implements the sql.Scanner interface.
func (m *JSONMap) Scan(value any) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}

	var b []byte
	switch v := value.(type) {
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return fmt.Errorf("failed to scan JSONMap, %v", value)
	}

	if len(b) == 0 {
		*m = JSONMap{}
		return nil
	}

	out := JSONMap{}
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("failed to decode JSONMap, %w", err)
	}

	*m = out
	return nil
}

// Clone returns a shallow copy, nil stays nil.
func (m JSONMap) Clone() JSONMap {
	if m == nil {
		return nil
	}

	out := make(JSONMap, len(m))
	for k, v := range m {
		out[k] = v
	}

	return out
}
