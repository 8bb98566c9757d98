package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"unicode/utf16"
	"unicode/utf8"
)

// writeJSON prints v as one line using ", " and ": " separators and ASCII
// escapes, the layout existing consumers of this output already parse.
func writeJSON(w io.Writer, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	out := append(spacedJSON(bytes.TrimRight(buf.Bytes(), "\n")), '\n')
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// spacedJSON rewrites compact JSON with a space after every separator
// outside strings. Non-ASCII characters inside strings become \uXXXX.
func spacedJSON(compact []byte) []byte {
	out := make([]byte, 0, len(compact)+len(compact)/4)
	inString, escaped := false, false
	for i := 0; i < len(compact); {
		r, size := utf8.DecodeRune(compact[i:])
		i += size

		if !inString {
			out = utf8.AppendRune(out, r)
			switch r {
			case '"':
				inString = true
			case ',', ':':
				out = append(out, ' ')
			}
			continue
		}

		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inString = false
		}
		if r < utf8.RuneSelf {
			out = append(out, byte(r))
			continue
		}
		if r1, r2 := utf16.EncodeRune(r); r1 != utf8.RuneError {
			out = fmt.Appendf(out, `\u%04x\u%04x`, r1, r2)
			continue
		}
		out = fmt.Appendf(out, `\u%04x`, r)
	}
	return out
}
