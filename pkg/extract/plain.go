package extract

import (
	"unicode/utf8"
)

func extractPlain(content []byte) (string, error) {
	return sanitizeUTF8(string(content)), nil
}

// sanitizeUTF8 drops invalid byte sequences so downstream JSON and SQL
// encoders never see broken runes.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	v := make([]rune, 0, len(s))
	for i, r := range s {
		if r == utf8.RuneError {
			_, size := utf8.DecodeRuneInString(s[i:])
			if size == 1 {
				continue
			}
		}
		v = append(v, r)
	}
	return string(v)
}
