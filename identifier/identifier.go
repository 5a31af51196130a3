// Package identifier classifies a login identifier as an email address or
// a phone number and expands phone numbers into the candidate forms a
// stored number may have been registered under.
//
// Phone numbers are persisted exactly as the user supplied them at
// registration, so lookup has to be forgiving at read time. The candidate
// generation below is a deliberate heuristic, not a validating phone
// library: country codes between one and four digits are all tried, which
// is ambiguous for some prefixes. Callers that need stricter behavior
// should require E.164 input at write time instead.
package identifier

import "strings"

// Kind discriminates the two identifier classes.
type Kind int

const (
	// KindEmail matches accounts by case-insensitive email equality.
	KindEmail Kind = iota
	// KindPhone matches accounts by the phone rules described in Parse.
	KindPhone
)

const minLocalDigits = 9

// Query is the lookup plan produced by Parse. Stores execute it either
// against indexes (email, exact phone candidates) or with MatchesPhone for
// the suffix rule.
type Query struct {
	Kind  Kind
	Email string

	// Exact holds phone strings that must match a stored number verbatim.
	Exact []string

	// Suffix, when non-empty, additionally matches any stored number that
	// begins with "+" and ends with these digits (local form registered
	// internationally).
	Suffix string
}

// Parse classifies the identifier and builds its lookup plan.
//
// Identifiers containing "@" are emails. Phone identifiers beginning with
// "+" generate local-format variants by stripping one to four candidate
// country-code digits and prefixing the remainder with "0"; remainders
// shorter than nine digits are discarded. Identifiers beginning with "0"
// match exactly or as the tail of an internationally stored number. Any
// other identifier matches exactly only.
func Parse(raw string) Query {
	trimmed := strings.TrimSpace(raw)

	if strings.Contains(trimmed, "@") {
		return Query{Kind: KindEmail, Email: strings.ToLower(trimmed)}
	}

	q := Query{Kind: KindPhone, Exact: []string{trimmed}}

	switch {
	case strings.HasPrefix(trimmed, "+"):
		digits := digitsOf(trimmed[1:])
		for ccLen := 1; ccLen <= 4 && ccLen < len(digits); ccLen++ {
			remainder := digits[ccLen:]
			if len(remainder) < minLocalDigits {
				continue
			}
			q.Exact = append(q.Exact, "0"+remainder)
		}
	case strings.HasPrefix(trimmed, "0"):
		suffix := digitsOf(trimmed[1:])
		if suffix != "" {
			q.Suffix = suffix
		}
	}

	return q
}

// MatchesPhone reports whether a stored phone number satisfies a phone
// query. Stores without native suffix indexes use this as their scan
// predicate.
func MatchesPhone(stored string, q Query) bool {
	if q.Kind != KindPhone {
		return false
	}
	for _, candidate := range q.Exact {
		if stored == candidate {
			return true
		}
	}
	if q.Suffix != "" && strings.HasPrefix(stored, "+") {
		if strings.HasSuffix(digitsOf(stored), q.Suffix) {
			return true
		}
	}
	return false
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
