package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/samber/oops"
)

// stdout receives the JSON dumps of API responses.
var stdout io.Writer = os.Stdout

func printJSON(title string, v any) {
	data, err := marshalSorted(v, "  ")
	if err != nil {
		logger.Warn("Could not render response as JSON", "title", title, "err", err)
		return
	}
	fmt.Fprintf(stdout, "\n%s:\n%s\n", title, data)
}

// marshalSorted renders v with sorted object keys, absent (null) fields
// dropped, and HTML characters left alone. Struct fields are sorted too,
// since v goes through a generic map first.
func marshalSorted(v any, indent string) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(dropNulls(generic)); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func dropNulls(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			if child == nil {
				delete(t, k)
				continue
			}
			t[k] = dropNulls(child)
		}
		return t
	case []any:
		for i, child := range t {
			t[i] = dropNulls(child)
		}
		return t
	default:
		return v
	}
}

// writeJSONFile replaces path with the sorted, 4-space indented rendering of v.
func writeJSONFile(path string, v any) error {
	oopsBuilder := oops.In("writeJSONFile").With("path", path)
	data, err := marshalSorted(v, "    ")
	if err != nil {
		return oopsBuilder.Code(CodeIO).Wrapf(err, "encoding JSON")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return oopsBuilder.Code(CodeIO).Wrap(err)
	}
	return nil
}
