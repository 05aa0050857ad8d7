package model

import "encoding/json"

// Properties is a free-form bag of scalar or nested values attached to an
// entity. It crosses the store and cache boundary as a JSON-encoded string,
// never as an open dynamic object.
type Properties map[string]any

// Encode serializes the bag for storage. A nil bag encodes as an empty
// object so the stored form is always valid JSON.
func (p Properties) Encode() (string, error) {
	if p == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// DecodeProperties parses a stored JSON bag. Empty input yields an empty,
// usable map rather than an error; the absence of properties is not a fault.
func DecodeProperties(raw string) (Properties, error) {
	if raw == "" {
		return Properties{}, nil
	}
	var p Properties
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, err
	}
	if p == nil {
		p = Properties{}
	}
	return p, nil
}
