package db

import "strings"

// Like is a case-insensitive LIKE condition on column. Pair it with Contains.
func Like(column string) string {
	return "LOWER(" + column + `) LIKE ? ESCAPE '\'`
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Contains builds a lower-cased substring pattern with LIKE wildcards in s
// matched literally.
func Contains(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
