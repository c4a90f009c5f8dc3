package ssr

import "io"

// escapeHTML writes s with &, <, >, " and ' replaced by entities.
func escapeHTML(w io.StringWriter, s string) {
	writeEscaped(w, s, false)
}

// escapeAttr is escapeHTML plus newline, carriage return and tab, which
// would otherwise be normalised away inside attribute values.
func escapeAttr(w io.StringWriter, s string) {
	writeEscaped(w, s, true)
}

func writeEscaped(w io.StringWriter, s string, attr bool) {
	last := 0
	for i := 0; i < len(s); i++ {
		var entity string
		switch s[i] {
		case '&':
			entity = "&amp;"
		case '<':
			entity = "&lt;"
		case '>':
			entity = "&gt;"
		case '"':
			entity = "&quot;"
		case '\'':
			entity = "&#39;"
		case '\n':
			if attr {
				entity = "&#10;"
			}
		case '\r':
			if attr {
				entity = "&#13;"
			}
		case '\t':
			if attr {
				entity = "&#9;"
			}
		}
		if entity == "" {
			continue
		}
		w.WriteString(s[last:i])
		w.WriteString(entity)
		last = i + 1
	}
	w.WriteString(s[last:])
}
