package kv

import "strings"

// Match reports whether key matches a glob pattern where '*' matches any run
// of characters and '?' matches exactly one. An empty pattern matches every key.
func Match(pattern, key string) bool {
	if pattern == "" {
		return true
	}
	p := []rune(pattern)
	k := []rune(key)
	pi, ki := 0, 0
	star, mark := -1, 0
	for ki < len(k) {
		switch {
		case pi < len(p) && p[pi] == '*':
			star = pi
			mark = ki
			pi++
		case pi < len(p) && (p[pi] == '?' || p[pi] == k[ki]):
			pi++
			ki++
		case star >= 0:
			pi = star + 1
			mark++
			ki = mark
		default:
			return false
		}
	}
	for pi < len(p) && p[pi] == '*' {
		pi++
	}
	return pi == len(p)
}

// toLike converts a glob pattern to a LIKE pattern using '\' as the escape character.
func toLike(pattern string) string {
	if pattern == "" {
		return "%"
	}
	var b strings.Builder
	b.Grow(len(pattern) + 4)
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteByte('%')
		case '?':
			b.WriteByte('_')
		case '%', '_', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
