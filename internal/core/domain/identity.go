package domain

import "strings"

// Identity is the principal behind a call: an organizer, a donor or any
// caller. Identities are address-like strings compared case-insensitively.
type Identity string

// NewIdentity trims surrounding whitespace and lowercases s so that two
// spellings of the same address compare equal.
func NewIdentity(s string) Identity {
	return Identity(strings.ToLower(strings.TrimSpace(s)))
}

// IsZero reports whether the identity is empty.
func (i Identity) IsZero() bool { return strings.TrimSpace(string(i)) == "" }

// Equal compares two identities ignoring case.
func (i Identity) Equal(o Identity) bool {
	return strings.EqualFold(strings.TrimSpace(string(i)), strings.TrimSpace(string(o)))
}

func (i Identity) String() string { return string(i) }
