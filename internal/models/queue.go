package models

import "slices"

type Strategy string

const (
	StrategyRingAll     Strategy = "ringall"
	StrategyRoundRobin  Strategy = "roundrobin"
	StrategyLeastRecent Strategy = "leastrecent"
	StrategyRandom      Strategy = "random"
)

func (s Strategy) Valid() bool {
	switch s {
	case StrategyRingAll, StrategyRoundRobin, StrategyLeastRecent, StrategyRandom:
		return true
	}
	return false
}

type MemberStatus string

const (
	MemberLoggedIn  MemberStatus = "Logged In"
	MemberLoggedOut MemberStatus = "Logged Out"
	MemberInUse     MemberStatus = "In Use"
	MemberRinging   MemberStatus = "Ringing"
)

func (s MemberStatus) Valid() bool {
	switch s {
	case MemberLoggedIn, MemberLoggedOut, MemberInUse, MemberRinging:
		return true
	}
	return false
}

const memberIDPrefix = "qm-"

// MemberID derives the queue member id of an extension.
func MemberID(extensionID string) string {
	return memberIDPrefix + extensionID
}

type QueueMember struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Status MemberStatus `json:"status"`
}

type Queue struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Strategy     Strategy      `json:"strategy"`
	WaitingCalls int           `json:"waitingCalls"`
	Members      []QueueMember `json:"members"`
}

type NewQueue struct {
	Name     string        `json:"name"`
	Strategy Strategy      `json:"strategy"`
	Members  []QueueMember `json:"members"`
}

func (n NewQueue) Queue(id string) Queue {
	return Queue{
		ID:       id,
		Name:     n.Name,
		Strategy: n.Strategy,
		Members:  slices.Clone(n.Members),
	}
}

// HasMember reports whether the extension is a member of q.
func (q Queue) HasMember(extensionID string) bool {
	id := MemberID(extensionID)
	return slices.ContainsFunc(q.Members, func(m QueueMember) bool { return m.ID == id })
}

// ToggleMember returns a copy of q with the extension removed if it was a
// member, or appended as a logged-out member otherwise. q is left untouched.
func (q Queue) ToggleMember(ext Extension) Queue {
	id := MemberID(ext.ID)
	out := q
	if q.HasMember(ext.ID) {
		out.Members = slices.DeleteFunc(slices.Clone(q.Members), func(m QueueMember) bool { return m.ID == id })
		return out
	}
	out.Members = append(slices.Clone(q.Members), QueueMember{ID: id, Name: ext.Name, Status: MemberLoggedOut})
	return out
}

// LoggedInCount counts members that are not logged out.
func (q Queue) LoggedInCount() int {
	n := 0
	for _, m := range q.Members {
		if m.Status != MemberLoggedOut {
			n++
		}
	}
	return n
}
