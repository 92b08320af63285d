package types

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// MalformedRecord is the Malformed entry for a record that is not a JSON object.
const MalformedRecord = "record"

// UnmarshalJSON decodes a profile record without failing on bad field values.
// A value of the wrong JSON type is coerced when its meaning is clear
// ("29" for an age, 1500 for a budget, "no" for a boolean); otherwise the
// field is left unset and its key is added to Malformed. A value that is not
// an object decodes to an empty record with Malformed set to MalformedRecord.
func (r *RawProfileRecord) UnmarshalJSON(data []byte) error {
	type plain RawProfileRecord
	var out plain
	malformed, err := decodeLenient(data, &out)
	if err != nil {
		*r = RawProfileRecord{Malformed: []string{MalformedRecord}}
		return nil
	}
	out.Malformed = malformed
	*r = RawProfileRecord(out)
	return nil
}

// UnmarshalJSON decodes preferences the same way as RawProfileRecord.
func (p *RawPreferences) UnmarshalJSON(data []byte) error {
	type plain RawPreferences
	var out plain
	malformed, err := decodeLenient(data, &out)
	if err != nil {
		*p = RawPreferences{Malformed: []string{MalformedRecord}}
		return nil
	}
	out.Malformed = malformed
	*p = RawPreferences(out)
	return nil
}

// decodeLenient decodes the JSON object in data into target one key at a
// time and returns the keys that could not be decoded. It errors only when
// data is not an object.
func decodeLenient(data []byte, target any) ([]string, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var malformed []string
	for _, key := range keys {
		if !decodeField(key, fields[key], target) {
			malformed = append(malformed, key)
		}
	}
	return malformed, nil
}

func decodeField(key string, value json.RawMessage, target any) bool {
	for _, v := range append([]json.RawMessage{value}, coercions(value)...) {
		obj, err := json.Marshal(map[string]json.RawMessage{key: v})
		if err != nil {
			continue
		}
		if json.Unmarshal(obj, target) == nil {
			return true
		}
	}
	return false
}

// coercions returns alternative encodings of value to try, in order.
func coercions(value json.RawMessage) []json.RawMessage {
	var out []json.RawMessage

	var s string
	if json.Unmarshal(value, &s) == nil {
		t := strings.TrimSpace(s)
		if _, err := strconv.ParseFloat(t, 64); err == nil && json.Valid([]byte(t)) {
			out = append(out, json.RawMessage(t))
		}
		switch strings.ToLower(t) {
		case "true", "yes", "y":
			out = append(out, json.RawMessage("true"))
		case "false", "no", "n":
			out = append(out, json.RawMessage("false"))
		}
		if list, err := json.Marshal([]string{s}); err == nil {
			out = append(out, list)
		}
		return out
	}

	var n json.Number
	if json.Unmarshal(value, &n) == nil {
		if quoted, err := json.Marshal(n.String()); err == nil {
			out = append(out, quoted)
		}
	}
	return out
}
