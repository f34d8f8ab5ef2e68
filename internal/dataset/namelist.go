package dataset

import (
	"strings"

	"github.com/goccy/go-json"
)

// ParseNameList extracts the "name" of every object in a list cell such as
// `[{"id": 28, "name": "Action"}]`. Single-quoted strings are accepted.
// Blank, non-list and undecodable cells yield an empty list; entries without a
// string name are skipped.
func ParseNameList(raw string) []string {
	s := strings.TrimSpace(raw)
	if s == "" || s[0] != '[' {
		return []string{}
	}
	var entries []map[string]any
	if err := json.Unmarshal([]byte(looseJSON(s)), &entries); err != nil {
		return []string{}
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if name, ok := e["name"].(string); ok {
			names = append(names, name)
		}
	}
	return names
}

// looseJSON rewrites single-quoted strings into JSON strings. Double-quoted
// strings pass through untouched, so cells that are already JSON are unchanged.
func looseJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote == 0:
			switch c {
			case '\'':
				quote = c
				b.WriteByte('"')
				continue
			case '"':
				quote = c
			}
			b.WriteByte(c)
		case c == '\\' && i+1 < len(s):
			i++
			if quote == '\'' && s[i] == '\'' {
				b.WriteByte('\'')
				continue
			}
			b.WriteByte('\\')
			b.WriteByte(s[i])
		case c == quote:
			quote = 0
			b.WriteByte('"')
		case quote == '\'' && c == '"':
			b.WriteString(`\"`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

type nameEntry struct {
	Name string `json:"name"`
}

// FormatNameList is the inverse of ParseNameList: it encodes names as a JSON
// list of {"name": ...} objects.
func FormatNameList(names []string) string {
	entries := make([]nameEntry, len(names))
	for i, n := range names {
		entries[i] = nameEntry{Name: n}
	}
	b, err := json.Marshal(entries)
	if err != nil {
		return "[]"
	}
	return string(b)
}
