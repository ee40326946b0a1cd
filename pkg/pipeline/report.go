package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteText writes one "Island Group: N Average X.XX" line per group.
func WriteText(w io.Writer, res *Result) error {
	for _, g := range res.Groups {
		if _, err := fmt.Fprintln(w, g.String()); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes res as indented JSON. Rendered artifacts are omitted.
func WriteJSON(w io.Writer, res *Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
