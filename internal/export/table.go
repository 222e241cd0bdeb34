package export

import (
	"bytes"
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"
)

// Table is a rectangular view of a list of JSON objects. Columns are the
// union of object keys in first-seen order.
type Table struct {
	Columns []string
	Rows    [][]string
}

// BuildTable flattens a JSON array of objects into a Table. Strings are
// written as-is, numbers and booleans keep their JSON spelling, nested
// values are written as compact JSON and null or missing keys are empty.
func BuildTable(records []byte) (*Table, error) {
	if !gjson.ValidBytes(records) {
		return nil, eris.New("export: invalid JSON data provided")
	}
	root := gjson.ParseBytes(records)
	if !root.IsArray() {
		return nil, eris.New("export: businesses must be a JSON array")
	}

	t := &Table{}
	index := make(map[string]int)
	var objects []gjson.Result

	badIdx := -1
	root.ForEach(func(i, rec gjson.Result) bool {
		if !rec.IsObject() {
			badIdx = int(i.Int())
			return false
		}
		rec.ForEach(func(k, _ gjson.Result) bool {
			if _, ok := index[k.String()]; !ok {
				index[k.String()] = len(t.Columns)
				t.Columns = append(t.Columns, k.String())
			}
			return true
		})
		objects = append(objects, rec)
		return true
	})
	if badIdx >= 0 {
		return nil, eris.Errorf("export: record %d is not an object", badIdx)
	}

	for _, rec := range objects {
		row := make([]string, len(t.Columns))
		rec.ForEach(func(k, v gjson.Result) bool {
			row[index[k.String()]] = cellText(v)
			return true
		})
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Records marshals v (typically a slice of structs) and builds its Table.
func Records(v any) (*Table, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, eris.Wrap(err, "export: marshal records")
	}
	return BuildTable(b)
}

func cellText(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return v.Str
	case gjson.JSON:
		var buf bytes.Buffer
		if err := json.Compact(&buf, []byte(v.Raw)); err != nil {
			return v.Raw
		}
		return buf.String()
	default:
		return v.Raw
	}
}
