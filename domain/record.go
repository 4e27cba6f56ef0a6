package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// fields are the stored keys this service reads and writes, in output order.
type fields struct {
	ID        string
	Name      string
	ContactNo string
	Award     string
	Category  string
	Attended  bool
}

type storedRecord struct {
	raw    json.RawMessage
	keys   []string
	values map[string]json.RawMessage
	loaded fields
}

func (a Attendee) fields() fields {
	return fields{a.ID, a.Name, a.ContactNo, a.Award, a.Category, a.Attended}
}

// Modified reports whether a differs from what was read from storage.
// Records that were never stored count as modified.
func (a Attendee) Modified() bool {
	return a.stored == nil || a.fields() != a.stored.loaded
}

// Raw returns the stored bytes of an unmodified record.
func (a Attendee) Raw() (json.RawMessage, bool) {
	if a.Modified() {
		return nil, false
	}
	return a.stored.raw, true
}

// Extra returns the stored keys this service does not model, such as email.
func (a Attendee) Extra() map[string]json.RawMessage {
	if a.stored == nil {
		return nil
	}
	extra := make(map[string]json.RawMessage)
	for k, v := range a.stored.values {
		if !isKnownKey(k) {
			extra[k] = v
		}
	}
	return extra
}

// Detached returns a copy of a that has forgotten its stored representation.
func (a Attendee) Detached() Attendee {
	a.stored = nil
	return a
}

func (a *Attendee) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	type plain Attendee
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	keys, values, err := objectMembers(data)
	if err != nil {
		return err
	}

	*a = Attendee(p)
	a.stored = &storedRecord{
		raw:    append(json.RawMessage(nil), data...),
		keys:   keys,
		values: values,
		loaded: a.fields(),
	}
	return nil
}

// MarshalJSON re-emits an unmodified record as stored. A modified one keeps the
// stored key order and values, with only the changed keys replaced and keys it
// never had appended.
func (a Attendee) MarshalJSON() ([]byte, error) {
	if raw, ok := a.Raw(); ok {
		return raw, nil
	}

	current := a.fields().members()
	var buf bytes.Buffer
	buf.WriteByte('{')
	n := 0
	write := func(key string, value []byte) error {
		k, err := encodeValue(key)
		if err != nil {
			return err
		}
		if n > 0 {
			buf.WriteByte(',')
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(value)
		n++
		return nil
	}

	changed := make(map[string]bool, len(current))
	if a.stored == nil {
		for _, m := range current {
			changed[m.key] = true
		}
	} else {
		old := a.stored.loaded.members()
		for i, m := range current {
			changed[m.key] = m.value != old[i].value
		}
		for _, key := range a.stored.keys {
			value := a.stored.values[key]
			if changed[key] {
				v, err := encodeValue(memberValue(current, key))
				if err != nil {
					return nil, err
				}
				value = v
				delete(changed, key)
			}
			if err := write(key, value); err != nil {
				return nil, err
			}
		}
	}

	for _, m := range current {
		if !changed[m.key] {
			continue
		}
		v, err := encodeValue(m.value)
		if err != nil {
			return nil, err
		}
		if err := write(m.key, v); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type member struct {
	key   string
	value any
}

func (f fields) members() []member {
	return []member{
		{"id", f.ID},
		{"name", f.Name},
		{"contactNo", f.ContactNo},
		{"award", f.Award},
		{"category", f.Category},
		{"attended", f.Attended},
	}
}

func memberValue(ms []member, key string) any {
	for _, m := range ms {
		if m.key == key {
			return m.value
		}
	}
	return nil
}

func isKnownKey(key string) bool {
	switch key {
	case "id", "name", "contactNo", "award", "category", "attended":
		return true
	}
	return false
}

// encodeValue marshals v without HTML escaping and without a trailing newline.
func encodeValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// objectMembers lists the top-level keys of a JSON object in order, with their raw values.
func objectMembers(data []byte) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("attendee record is not an object")
	}

	var keys []string
	values := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, nil, err
		}
		if _, dup := values[key]; !dup {
			keys = append(keys, key)
		}
		values[key] = value
	}
	return keys, values, nil
}
