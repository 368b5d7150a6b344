package regions

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/tidwall/jsonc"
)

// Dataset maps region names to their sub-region names, keeping the order in
// which both appeared in the source document. A Dataset is never mutated after
// it is built, so it can be shared freely.
type Dataset struct {
	order []string
	subs  map[string][]string
}

// Entry is one region and its sub-regions.
type Entry struct {
	Region     string
	SubRegions []string
}

// FromEntries builds a Dataset from entries in order. A repeated region keeps
// the position of its first occurrence and the sub-regions of its last.
func FromEntries(entries ...Entry) *Dataset {
	ds := &Dataset{subs: make(map[string][]string, len(entries))}
	for _, e := range entries {
		ds.put(e.Region, e.SubRegions)
	}
	return ds
}

func (d *Dataset) put(region string, subs []string) {
	if _, exists := d.subs[region]; !exists {
		d.order = append(d.order, region)
	}
	d.subs[region] = append([]string(nil), subs...)
}

// Regions returns region names in dataset order.
func (d *Dataset) Regions() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.order...)
}

// SubRegions returns the sub-regions of region in dataset order.
func (d *Dataset) SubRegions(region string) ([]string, bool) {
	if d == nil {
		return nil, false
	}
	subs, ok := d.subs[region]
	if !ok {
		return nil, false
	}
	return append([]string(nil), subs...), true
}

// Len reports the number of regions.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.order)
}

// Entries returns the dataset as ordered entries.
func (d *Dataset) Entries() []Entry {
	if d == nil {
		return nil
	}
	out := make([]Entry, 0, len(d.order))
	for _, r := range d.order {
		out = append(out, Entry{Region: r, SubRegions: append([]string(nil), d.subs[r]...)})
	}
	return out
}

// MarshalJSON encodes the dataset as a JSON object in dataset order.
func (d *Dataset) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, r := range d.Regions() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(r)
		if err != nil {
			return nil, err
		}
		subs := d.subs[r]
		if subs == nil {
			subs = []string{}
		}
		val, err := json.Marshal(subs)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Parse decodes a strict JSON object of string arrays. Key order and array
// order are kept.
func Parse(data []byte) (*Dataset, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("dataset must be a JSON object")
	}
	ds := &Dataset{subs: make(map[string][]string)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read region name: %w", err)
		}
		region, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var subs []string
		if err := dec.Decode(&subs); err != nil {
			return nil, fmt.Errorf("region %q: %w", region, err)
		}
		ds.put(region, subs)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after dataset object")
	}
	return ds, nil
}

// ParseLenient is Parse after stripping comments and trailing commas. Only
// import uses it; datasets read at startup must be strict JSON.
func ParseLenient(data []byte) (*Dataset, error) {
	return Parse(jsonc.ToJSON(data))
}
