package types

import "encoding/json"

// NullableString represents a string value that may be null.
// An empty string with Valid=true is a real value and is distinct from null.
type NullableString struct {
	Value string
	Valid bool // Valid is false for null
}

// String returns the string value, or an empty string for null.
func (ns NullableString) String() string {
	if ns.Valid {
		return ns.Value
	}
	return ""
}

// IsNil returns true if the NullableString is null.
func (ns NullableString) IsNil() bool {
	return !ns.Valid
}

// Set assigns a value and marks it valid.
func (ns *NullableString) Set(value string) {
	ns.Value = value
	ns.Valid = true
}

// Ptr returns a pointer to the value, or nil for null.
func (ns NullableString) Ptr() *string {
	if !ns.Valid {
		return nil
	}
	v := ns.Value
	return &v
}

// MarshalJSON implements the json.Marshaler interface.
func (ns NullableString) MarshalJSON() ([]byte, error) {
	if ns.Valid {
		return json.Marshal(ns.Value)
	}
	return json.Marshal(nil)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
// A JSON null yields an invalid (null) value.
func (ns *NullableString) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		ns.Value = ""
		ns.Valid = false
		return nil
	}
	ns.Valid = true
	return json.Unmarshal(data, &ns.Value)
}

// NullableStringFrom creates a valid NullableString holding s.
func NullableStringFrom(s string) NullableString {
	return NullableString{Value: s, Valid: true}
}

// NullString creates a null NullableString.
func NullString() NullableString {
	return NullableString{}
}

// Strings converts plain strings into valid NullableStrings.
func Strings(values ...string) []NullableString {
	out := make([]NullableString, len(values))
	for i, v := range values {
		out[i] = NullableStringFrom(v)
	}
	return out
}

// FromPointers converts string pointers into NullableStrings, mapping nil to null.
func FromPointers(values ...*string) []NullableString {
	out := make([]NullableString, len(values))
	for i, v := range values {
		if v != nil {
			out[i] = NullableStringFrom(*v)
		}
	}
	return out
}

var _ json.Marshaler = &NullableString{}
var _ json.Unmarshaler = &NullableString{}
var _ Nullable = &NullableString{}
