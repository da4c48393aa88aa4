package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FlexibleID accepts either a JSON string or a JSON number and keeps it as a string.
type FlexibleID string

func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*f = FlexibleID(n.String())
	return nil
}

func (f FlexibleID) String() string {
	return string(f)
}
