package decode

import "strings"

// aliasSep separates the relation name and the column in an eager-joined column alias.
const aliasSep = "__"

// Alias returns the column alias an eager join uses for column of relation: __relation__column.
func Alias(relation, column string) string {
	return aliasSep + relation + aliasSep + column
}

// SplitAlias splits an aliased column at its last "__" so relation names may contain
// underscores. ok is false for columns that do not follow the alias pattern.
func SplitAlias(column string) (relation, field string, ok bool) {
	if !strings.HasPrefix(column, aliasSep) {
		return "", "", false
	}
	rest := column[len(aliasSep):]
	i := strings.LastIndex(rest, aliasSep)
	if i <= 0 || i+len(aliasSep) >= len(rest) {
		return "", "", false
	}
	return rest[:i], rest[i+len(aliasSep):], true
}

// IsAlias reports whether column follows the eager-join alias pattern.
func IsAlias(column string) bool {
	_, _, ok := SplitAlias(column)
	return ok
}
