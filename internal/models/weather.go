package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Location is a geocoded place. It doubles as the stored per-user location.
type Location struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayName string  `json:"display_name"`
}

// FieldValue is a single realtime measurement as returned upstream.
// Value holds a json.Number, a string, a bool or nil.
type FieldValue struct {
	Value interface{} `json:"value"`
	Units string      `json:"units,omitempty"`
}

// UnmarshalJSON accepts both {"value": ..., "units": ...} objects and bare
// scalars, which ClimaCell uses for the top-level lat/lon entries.
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var obj struct {
			Value interface{} `json:"value"`
			Units string      `json:"units"`
		}
		if err := dec.Decode(&obj); err != nil {
			return err
		}
		v.Value = obj.Value
		v.Units = obj.Units
		return nil
	}

	var scalar interface{}
	if err := dec.Decode(&scalar); err != nil {
		return err
	}
	v.Value = scalar
	v.Units = ""
	return nil
}

type Field struct {
	Name  string
	Value FieldValue
}

// Conditions is the realtime response in document order.
type Conditions []Field

// UnmarshalJSON walks the object token by token so that field order survives
// decoding.
func (c *Conditions) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("conditions: expected object, got %v", tok)
	}

	out := make(Conditions, 0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("conditions: expected key, got %v", tok)
		}

		var value FieldValue
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("conditions: field %q: %w", name, err)
		}
		out = append(out, Field{Name: name, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*c = out
	return nil
}

// Get returns the first field with the given name.
func (c Conditions) Get(name string) (FieldValue, bool) {
	for _, f := range c {
		if f.Name == name {
			return f.Value, true
		}
	}
	return FieldValue{}, false
}

// Report is what gets said back to the channel: one line, or two when the
// rendered line is too long.
type Report struct {
	Location string   `json:"location"`
	Segments []string `json:"segments"`
	Lines    []string `json:"lines"`
}
