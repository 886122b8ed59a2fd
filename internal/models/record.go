package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// campRecordJSON has CampRecord's fields without its JSON methods.
type campRecordJSON CampRecord

var recordKeys = jsonKeys(reflect.TypeFor[campRecordJSON]())

func jsonKeys(t reflect.Type) map[string]bool {
	keys := map[string]bool{}
	for i := range t.NumField() {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			keys[name] = true
		}
	}
	return keys
}

// IsRecordKey reports whether key is the JSON name of a typed CampRecord field.
func IsRecordKey(key string) bool {
	return recordKeys[key]
}

// MarshalJSON writes the typed fields followed by the Extra columns as
// top-level keys in sorted order. Extra keys that shadow a typed field are
// not written.
func (r CampRecord) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(campRecordJSON(r))
	if err != nil || len(r.Extra) == 0 {
		return data, err
	}

	keys := make([]string, 0, len(r.Extra))
	for k := range r.Extra {
		if !recordKeys[k] {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	var buf bytes.Buffer
	buf.Write(data[:len(data)-1])
	for i, k := range keys {
		if i > 0 || len(data) > 2 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(r.Extra[k])
		if err != nil {
			return nil, fmt.Errorf("extra column %q: %w", k, err)
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the typed fields and collects every other string
// member into Extra.
func (r *CampRecord) UnmarshalJSON(data []byte) error {
	var rec campRecordJSON
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}

	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}
	for k, raw := range members {
		if recordKeys[k] {
			continue
		}
		var s string
		if json.Unmarshal(raw, &s) != nil {
			continue
		}
		if rec.Extra == nil {
			rec.Extra = map[string]string{}
		}
		rec.Extra[k] = s
	}

	*r = CampRecord(rec)
	return nil
}
