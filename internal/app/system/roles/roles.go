// Package roles defines the role vocabulary and the priority order used to
// derive a user's primary role from their full role set.
package roles

import "strings"

// Priority lists every known role from highest to lowest authority. A user's
// primary role is the first entry of this list present in their role set.
var Priority = []string{
	"admin",
	"board",
	"chair_board",
	"chairman",
	"community_owner",
	"volunteer_head",
	"finance_team",
	"priest",
	"community_lead",
	"community_member",
	"volunteer",
	"user",
}

// Default is the role assigned when a user carries no roles at all.
const Default = "user"

var rank = func() map[string]int {
	m := make(map[string]int, len(Priority))
	for i, r := range Priority {
		m[r] = i
	}
	return m
}()

// IsKnown reports whether the role name is part of the vocabulary.
func IsKnown(role string) bool {
	_, ok := rank[Normalize(role)]
	return ok
}

// Normalize lowercases and trims a role name.
func Normalize(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}

// Primary returns the highest-priority role in the set, regardless of the
// order the roles appear in. An empty set yields Default. Unknown role names
// are ignored for ranking but never cause an error; if the set contains only
// unknown names the Default is returned.
func Primary(set []string) string {
	best := len(Priority)
	for _, r := range set {
		if i, ok := rank[Normalize(r)]; ok && i < best {
			best = i
		}
	}
	if best == len(Priority) {
		return Default
	}
	return Priority[best]
}

// Clean returns the set with every entry normalized, unknown and duplicate
// entries dropped, preserving first-seen order.
func Clean(set []string) []string {
	seen := make(map[string]bool, len(set))
	out := make([]string, 0, len(set))
	for _, r := range set {
		n := Normalize(r)
		if n == "" || seen[n] || !IsKnown(n) {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// AtLeast reports whether role a carries equal or higher authority than b.
// Unknown roles rank below every known role.
func AtLeast(a, b string) bool {
	ra, oka := rank[Normalize(a)]
	rb, okb := rank[Normalize(b)]
	if !oka {
		return false
	}
	if !okb {
		return true
	}
	return ra <= rb
}
