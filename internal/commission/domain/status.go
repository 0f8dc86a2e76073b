package domain

import "strings"

type Status string

const (
	StatusPending  Status = "pending"
	StatusEligible Status = "eligible"
	StatusPaid     Status = "paid"
	StatusVoided   Status = "voided"
)

var transitions = map[Status][]Status{
	StatusPending:  {StatusEligible, StatusVoided},
	StatusEligible: {StatusPaid, StatusVoided},
}

// CanTransition reports whether from -> to is a legal lifecycle step.
// Paid and voided are terminal.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusPaid || s == StatusVoided
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusEligible, StatusPaid, StatusVoided:
		return true
	default:
		return false
	}
}

func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	return s, s.Valid()
}
