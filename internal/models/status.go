package models

import "fmt"

// ErrInvalidTransition is returned when a status change is not allowed by
// the transition table of the entity.
type ErrInvalidTransition struct {
	Entity string
	From   string
	To     string
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("%s: illegal transition %s -> %s", e.Entity, e.From, e.To)
}

// bookingTransitions — единственная точка правды для жизненного цикла заявки.
// completed и cancelled терминальные, отмена возможна до завершения работ.
var bookingTransitions = map[string]map[string]bool{
	StatusPending:    {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed:  {StatusInProgress: true, StatusCompleted: true, StatusCancelled: true},
	StatusInProgress: {StatusCompleted: true, StatusCancelled: true},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

var leadTransitions = map[string]map[string]bool{
	StageNew:       {StageContacted: true, StageLost: true},
	StageContacted: {StageQualified: true, StageLost: true},
	StageQualified: {StageConverted: true, StageLost: true},
	StageConverted: {},
	StageLost:      {StageContacted: true},
}

var userTransitions = map[string]map[string]bool{
	UserPending:   {UserActive: true, UserInactive: true},
	UserActive:    {UserInactive: true, UserSuspended: true},
	UserInactive:  {UserActive: true},
	UserSuspended: {UserActive: true, UserInactive: true},
}

func ParseBookingStatus(s string) (string, error) {
	if _, ok := bookingTransitions[s]; !ok {
		return "", fmt.Errorf("unknown booking status: %s", s)
	}
	return s, nil
}

func ParseLeadStage(s string) (string, error) {
	if _, ok := leadTransitions[s]; !ok {
		return "", fmt.Errorf("unknown lead stage: %s", s)
	}
	return s, nil
}

func ParseUserStatus(s string) (string, error) {
	if _, ok := userTransitions[s]; !ok {
		return "", fmt.Errorf("unknown user status: %s", s)
	}
	return s, nil
}

// CanTransitionBooking reports whether a booking may move from one status to another.
func CanTransitionBooking(from, to string) bool {
	m, ok := bookingTransitions[from]
	if !ok {
		return false
	}
	return m[to]
}

func CanTransitionLead(from, to string) bool {
	m, ok := leadTransitions[from]
	if !ok {
		return false
	}
	return m[to]
}

func CanTransitionUser(from, to string) bool {
	m, ok := userTransitions[from]
	if !ok {
		return false
	}
	return m[to]
}

// CheckBookingTransition returns a typed error for an illegal booking move.
func CheckBookingTransition(from, to string) error {
	if !CanTransitionBooking(from, to) {
		return &ErrInvalidTransition{Entity: "booking", From: from, To: to}
	}
	return nil
}

func CheckLeadTransition(from, to string) error {
	if !CanTransitionLead(from, to) {
		return &ErrInvalidTransition{Entity: "lead", From: from, To: to}
	}
	return nil
}

func CheckUserTransition(from, to string) error {
	if !CanTransitionUser(from, to) {
		return &ErrInvalidTransition{Entity: "user", From: from, To: to}
	}
	return nil
}
