/*-------------------------------------------------------------------------
 *
 * pgEdge Natural Language Agent
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package nl2sql

import (
	"regexp"
	"strings"
)

var (
	sqlFencePattern  = regexp.MustCompile("(?is)```sql\\b\\s*(.*?)\\s*```")
	selectPattern    = regexp.MustCompile(`(?is)SELECT.*?(?:;|\z)`)
	backtickReplacer = strings.NewReplacer("`", "")
)

// ExtractSQL pulls one SQL statement out of free-form model output. A
// fenced sql block wins; otherwise the first SELECT through the first
// semicolon or end of text is taken. The second return value is false when
// neither is present.
//
// The unfenced fallback stops at the first semicolon, so a statement whose
// string literals contain ';' is cut short. For the same reason a fenced
// body holding several statements, or ending in ";;", extracts to text that
// extracts again to something shorter; single clean statements are stable.
func ExtractSQL(raw string) (string, bool) {
	var query string
	if m := sqlFencePattern.FindStringSubmatch(raw); m != nil {
		query = m[1]
	} else if m := selectPattern.FindString(raw); m != "" {
		query = m
	} else {
		return "", false
	}

	query = backtickReplacer.Replace(query)
	query = strings.Join(strings.Fields(query), " ")
	query = strings.TrimSuffix(query, ";")
	query = strings.TrimSpace(query)

	if query == "" {
		return "", false
	}
	return query, true
}
