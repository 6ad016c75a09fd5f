// Package normalize holds the canonicalization rules applied to user-supplied
// values before they are stored or matched. Every rule here must be applied
// identically at write time and at read time, otherwise lookups will miss
// rows that were stored under a differently written form.
package normalize

import "strings"

// gmailDomains are the domains Google treats as dot-insensitive: the local
// part of an address at these domains matches regardless of "." placement.
var gmailDomains = map[string]bool{
	"gmail.com":      true,
	"googlemail.com": true,
}

// Email returns the canonical storage form of an email address.
//
// All addresses are trimmed and lowercased. For Gmail-family addresses the
// dots in the local part before the first "+" are removed and the "+alias"
// suffix is preserved, so "John.Doe+promo@GMAIL.com" and
// "johndoe+promo@gmail.com" canonicalize to the same string. Dots are
// preserved for every other domain.
func Email(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	at := strings.LastIndex(s, "@")
	if at <= 0 {
		return s
	}
	local, domain := s[:at], s[at+1:]
	if !gmailDomains[domain] {
		return s
	}
	alias := ""
	if plus := strings.Index(local, "+"); plus >= 0 {
		local, alias = local[:plus], local[plus:]
	}
	local = strings.ReplaceAll(local, ".", "")
	return local + alias + "@" + domain
}

// IsGmail reports whether the address (in any written form) belongs to a
// Gmail-family domain.
func IsGmail(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	at := strings.LastIndex(s, "@")
	if at < 0 {
		return false
	}
	return gmailDomains[s[at+1:]]
}

// GmailDomains returns the Gmail-family domains used for the broader
// authoritative scan when an exact normalized lookup misses.
func GmailDomains() []string {
	return []string{"gmail.com", "googlemail.com"}
}

// Name trims surrounding whitespace from a display name, preserving case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Status lowercases and trims a status value.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Phone strips spaces, dashes and parentheses from a phone number.
func Phone(s string) string {
	return strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(s))
}
