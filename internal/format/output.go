package format

import (
	"encoding/json"
	"fmt"
	"io"
)

// Envelope is the shape of every scriptable command's output.
type Envelope struct {
	Data  any      `json:"data"`
	Meta  any      `json:"meta,omitempty"`
	Hints []string `json:"_hints,omitempty"`
}

// Write writes v in the requested format. Only json is supported.
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON, one document per line unless pretty.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}
