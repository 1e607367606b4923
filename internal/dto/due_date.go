package dto

import (
	"encoding/json"
	"fmt"
	"time"
)

const dateOnlyLayout = "2006-01-02"

// DueDate is an optional date in a request body. Set tells an explicit null
// (or empty string) apart from an absent field; Value is nil for null.
type DueDate struct {
	Set   bool
	Value *time.Time
}

// UnmarshalJSON accepts RFC 3339 timestamps, plain YYYY-MM-DD dates, "" and null.
func (d *DueDate) UnmarshalJSON(data []byte) error {
	d.Set = true
	d.Value = nil

	if string(data) == "null" {
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("dueDate must be a string: %w", err)
	}
	if raw == "" {
		return nil
	}

	for _, layout := range []string{time.RFC3339Nano, dateOnlyLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			d.Value = &t
			return nil
		}
	}
	return fmt.Errorf("dueDate %q is not a valid date", raw)
}
