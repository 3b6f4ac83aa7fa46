// Package policy holds the authorization table for every resource and the
// single evaluator that applies it.
package policy

import "github.com/pilotify/pilotify-api/internal/models"

type Resource string

const (
	Category     Resource = "category"
	User         Resource = "user"
	UserAdmin    Resource = "user_admin"
	UserSearch   Resource = "user_search"
	Offer        Resource = "offer"
	Innovation   Resource = "innovation"
	PilotProject Resource = "pilot_project"
	Task         Resource = "task"
	Review       Resource = "review"
	Comment      Resource = "comment"
	Reaction     Resource = "reaction"
	Bookmark     Resource = "bookmark"
	Activity     Resource = "activity"
	AdminArea    Resource = "admin_area"
)

type Action string

const (
	Read   Action = "read"
	List   Action = "list"
	Create Action = "create"
	Update Action = "update"
	Delete Action = "delete"
)

// Entry is one row of the table. Item entries act on a loaded entity and
// answer NotFound when it is absent. Public entries skip authentication.
type Entry struct {
	Rule   Rule
	Item   bool
	Public bool
}

var (
	ownerOrAdmin = Any(Owner, Admin)
	innovator    = RoleIs(models.RoleInnovator)
)

func public(isItem bool) Entry { return Entry{Public: true, Item: isItem} }
func coll(r Rule) Entry { return Entry{Rule: r} }
func item(r Rule) Entry { return Entry{Rule: r, Item: true} }

// Table is the complete authorization policy. Anything not listed is denied.
var Table = map[Resource]map[Action]Entry{
	Category: {
		List:   public(false),
		Read:   item(Admin), // single-category reads only exist under /admin
		Create: coll(Admin),
		Update: item(Admin),
		Delete: item(Admin),
	},
	UserAdmin: {
		List:   coll(Admin),
		Read:   item(Admin),
		Create: coll(Admin),
		Update: item(Admin),
		Delete: item(Admin),
	},
	User: {
		Read:   item(ownerOrAdmin),
		Update: item(ownerOrAdmin),
	},
	UserSearch: {
		List: coll(Authenticated),
	},
	Offer: {
		List:   coll(Authenticated),
		Read:   item(Authenticated),
		Create: coll(innovator),
		Update: item(ownerOrAdmin),
		Delete: item(ownerOrAdmin),
	},
	Innovation: {
		List:   public(false),
		Read:   public(true),
		Create: coll(innovator),
		Update: item(All(innovator, Owner)),
		Delete: item(All(innovator, Owner)),
	},
	PilotProject: {
		List: coll(Authenticated),
		// target built from the request body
		Create: item(Participant),
		Read:   item(Participant),
		Update: item(Participant),
		Delete: item(Participant),
	},
	Task: {
		// List and Create target the parent project
		List:   item(Participant),
		Create: item(Participant),
		Read:   item(Any(Participant, Assignee)),
		Update: item(Any(Participant, Assignee, Admin)),
		Delete: item(Any(Participant, Assignee, Admin)),
	},
	Review: {
		// List targets the parent project
		List:   item(Authenticated),
		Create: item(Participant),
		Read:   item(Authenticated),
		Update: item(ownerOrAdmin),
		Delete: item(ownerOrAdmin),
	},
	Comment: {
		List:   item(Authenticated),
		Create: item(Participant),
		Delete: item(ownerOrAdmin),
	},
	Reaction: {
		// Create targets the parent comment
		Create: item(Authenticated),
		Delete: item(ownerOrAdmin),
	},
	Bookmark: {
		List:   coll(Authenticated),
		Create: coll(Authenticated),
		Delete: item(Owner),
	},
	Activity: {
		Read:   coll(Authenticated),
		Update: coll(Authenticated),
	},
	AdminArea: {
		Read: coll(Admin),
	},
}

func lookup(res Resource, act Action) (Entry, bool) {
	acts, ok := Table[res]
	if !ok {
		return Entry{}, false
	}
	e, ok := acts[act]
	return e, ok
}

// RequiresActor reports whether the action needs an authenticated caller.
func RequiresActor(res Resource, act Action) bool {
	e, ok := lookup(res, act)
	return !ok || !e.Public
}

// Evaluate applies the table. The order is fixed: Unauthorized, then
// NotFound, then Forbidden. A nil return means permit; denials are *Error.
func Evaluate(a *Actor, res Resource, act Action, t *Target) error {
	e, ok := lookup(res, act)
	if !ok {
		if a == nil {
			return Unauthorized("authentication required")
		}
		return Forbidden("access denied")
	}
	if !e.Public && a == nil {
		return Unauthorized("authentication required")
	}
	if e.Item && t == nil {
		return NotFound(string(res) + " not found")
	}
	if e.Public {
		return nil
	}
	if !e.Rule(a, t) {
		return Forbidden("access denied")
	}
	return nil
}
