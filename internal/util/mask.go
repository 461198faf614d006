package util

import "strings"

// Mask deja ver el primer y último caracter de un identificador (consumer
// key, client id) para poder reconocerlo en logs sin exponerlo entero.
// Valores de 6 caracteres o menos se tapan completos.
func Mask(s string) string {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return ""
	case len(s) <= 6:
		return "***"
	}
	return s[:1] + "…" + s[len(s)-1:]
}
