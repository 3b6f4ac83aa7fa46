package policy

import (
	"github.com/google/uuid"

	"github.com/pilotify/pilotify-api/internal/models"
)

// Actor is the authenticated caller.
type Actor struct {
	ID   uuid.UUID
	Role models.Role
}

func (a *Actor) IsAdmin() bool { return a != nil && a.Role == models.RoleAdmin }

// Target carries the ownership facts of the entity being acted on.
// OwnerID is the owner, author, reviewer, reaction creator or, for user
// routes, the user itself.
type Target struct {
	OwnerID      uuid.UUID
	Participants []uuid.UUID
	AssigneeID   *uuid.UUID
}

// Rule decides for an authenticated actor. Target is nil for collection
// actions.
type Rule func(a *Actor, t *Target) bool

func Authenticated(a *Actor, _ *Target) bool { return a != nil }

func Admin(a *Actor, _ *Target) bool { return a.IsAdmin() }

func RoleIs(roles ...models.Role) Rule {
	return func(a *Actor, _ *Target) bool {
		for _, r := range roles {
			if a.Role == r {
				return true
			}
		}
		return false
	}
}

func Owner(a *Actor, t *Target) bool {
	return t != nil && t.OwnerID != uuid.Nil && t.OwnerID == a.ID
}

func Participant(a *Actor, t *Target) bool {
	if t == nil {
		return false
	}
	for _, id := range t.Participants {
		if id == a.ID {
			return true
		}
	}
	return false
}

func Assignee(a *Actor, t *Target) bool {
	return t != nil && t.AssigneeID != nil && *t.AssigneeID == a.ID
}

func Any(rules ...Rule) Rule {
	return func(a *Actor, t *Target) bool {
		for _, r := range rules {
			if r(a, t) {
				return true
			}
		}
		return false
	}
}

func All(rules ...Rule) Rule {
	return func(a *Actor, t *Target) bool {
		for _, r := range rules {
			if !r(a, t) {
				return false
			}
		}
		return true
	}
}
