package tui

import (
	"strings"
	"unicode"

	"github.com/studydesk/prio/internal/priority"
)

// subsequence reports whether every rune of query occurs in target in order,
// ignoring case.
func subsequence(query, target string) bool {
	q := []rune(strings.ToLower(query))
	if len(q) == 0 {
		return true
	}
	i := 0
	for _, r := range strings.ToLower(target) {
		if unicode.ToLower(r) == q[i] {
			i++
			if i == len(q) {
				return true
			}
		}
	}
	return false
}

// matchTask is the board filter: a subsequence of the title or subject, or a
// prefix of the id.
func matchTask(query string, t priority.Task) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}
	if strings.HasPrefix(strings.ToLower(t.ID), strings.ToLower(query)) {
		return true
	}
	return subsequence(query, t.Title) || subsequence(query, t.Subject)
}
