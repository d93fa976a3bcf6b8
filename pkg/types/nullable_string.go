package types

import (
	"bytes"
	"encoding/json"
)

// NullableString tracks whether a string field was explicitly present in
// JSON. A missing field leaves Valid false; an explicit null sets Valid with
// a nil Value, which update handlers translate into clearing the column.
type NullableString struct {
	Valid bool
	Value *string
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullableString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	if bytes.Equal(trimmed, []byte("null")) {
		n.Valid = true
		n.Value = nil
		return nil
	}

	var parsed string
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return err
	}
	n.Valid = true
	n.Value = &parsed
	return nil
}

// MarshalJSON implements json.Marshaler. Pair with the omitzero tag so an
// untouched field is omitted rather than serialized as null.
func (n NullableString) MarshalJSON() ([]byte, error) {
	if !n.Valid || n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Clone returns a copy of the NullableString.
func (n NullableString) Clone() NullableString {
	if n.Value == nil {
		return NullableString{Valid: n.Valid}
	}
	copy := *n.Value
	return NullableString{Valid: n.Valid, Value: &copy}
}
