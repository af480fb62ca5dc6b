package update

import "strings"

func levelFromError(isErr bool) string {
	if isErr {
		return "error"
	}
	return "info"
}

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
