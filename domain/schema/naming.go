package schema

import (
	"strings"
	"unicode"
)

// SnakeToCamel converts snake_case to CamelCase, e.g.
// empatica_e4_acceleration to EmpaticaE4Acceleration.
func SnakeToCamel(value string) string {
	var b strings.Builder
	for _, part := range strings.Split(value, "_") {
		if part == "" {
			continue
		}
		r := []rune(part)
		b.WriteRune(unicode.ToUpper(r[0]))
		b.WriteString(string(r[1:]))
	}
	return b.String()
}

// BaseName returns the file name of path up to its first dot.
func BaseName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		path = path[i+1:]
	}
	if i := strings.IndexByte(path, '.'); i >= 0 {
		path = path[:i]
	}
	return path
}
