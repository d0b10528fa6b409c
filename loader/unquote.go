package loader

import (
	"fmt"
	"strconv"
	"strings"
)

// Unquote decodes a single- or double-quoted literal. Both forms take Go
// string escapes; a single-quoted literal may also contain \'.
func Unquote(s string) (string, error) {
	if len(s) < 2 || s[0] != s[len(s)-1] || (s[0] != '\'' && s[0] != '"') {
		return "", fmt.Errorf("not a quoted literal")
	}
	if s[0] == '"' {
		return strconv.Unquote(s)
	}
	body := s[1 : len(s)-1]
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body):
			i++
			if body[i] == '\'' {
				sb.WriteByte('\'')
			} else {
				sb.WriteByte(c)
				sb.WriteByte(body[i])
			}
		case c == '"':
			sb.WriteString(`\"`)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
	return strconv.Unquote(sb.String())
}
