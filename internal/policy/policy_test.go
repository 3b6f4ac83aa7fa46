package policy

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilotify/pilotify-api/internal/models"
)

func kindOf(t *testing.T, err error) Kind {
	t.Helper()
	var pe *Error
	require.True(t, errors.As(err, &pe), "expected *policy.Error, got %v", err)
	return pe.Kind
}

func TestEvaluateOrder(t *testing.T) {
	stranger := &Actor{ID: uuid.New(), Role: models.RoleCorporate}

	// unauthenticated wins over a missing target
	assert.Equal(t, KindUnauthorized, kindOf(t, Evaluate(nil, PilotProject, Read, nil)))
	// missing target wins over a failing rule
	assert.Equal(t, KindNotFound, kindOf(t, Evaluate(stranger, PilotProject, Read, nil)))
	assert.Equal(t, KindForbidden, kindOf(t, Evaluate(stranger, PilotProject, Read, &Target{
		Participants: []uuid.UUID{uuid.New(), uuid.New()},
	})))
}

func TestEvaluateDeniesUnlisted(t *testing.T) {
	admin := &Actor{ID: uuid.New(), Role: models.RoleAdmin}
	assert.Equal(t, KindForbidden, kindOf(t, Evaluate(admin, Comment, Update, &Target{OwnerID: admin.ID})))
	assert.Equal(t, KindUnauthorized, kindOf(t, Evaluate(nil, "unknown", Read, nil)))
	assert.True(t, RequiresActor("unknown", Read))
}

func TestPublicEntries(t *testing.T) {
	assert.NoError(t, Evaluate(nil, Category, List, nil))
	assert.NoError(t, Evaluate(nil, Innovation, Read, &Target{}))
	assert.Equal(t, KindNotFound, kindOf(t, Evaluate(nil, Innovation, Read, nil)))
	assert.False(t, RequiresActor(Innovation, List))
}

func TestTable(t *testing.T) {
	corp := &Actor{ID: uuid.New(), Role: models.RoleCorporate}
	inno := &Actor{ID: uuid.New(), Role: models.RoleInnovator}
	other := &Actor{ID: uuid.New(), Role: models.RoleInnovator}
	admin := &Actor{ID: uuid.New(), Role: models.RoleAdmin}

	project := &Target{Participants: []uuid.UUID{corp.ID, inno.ID}}
	offer := &Target{OwnerID: inno.ID}
	assignee := other.ID
	task := &Target{Participants: project.Participants, AssigneeID: &assignee}

	tests := []struct {
		name   string
		actor  *Actor
		res    Resource
		act    Action
		target *Target
		allow  bool
	}{
		{"participant reads project", corp, PilotProject, Read, project, true},
		{"stranger reads project", other, PilotProject, Read, project, false},
		{"admin is not a participant", admin, PilotProject, Update, project, false},
		{"innovator creates offer", inno, Offer, Create, nil, true},
		{"corporate creates offer", corp, Offer, Create, nil, false},
		{"owner deletes offer", inno, Offer, Delete, offer, true},
		{"admin deletes offer", admin, Offer, Delete, offer, true},
		{"non-owner updates offer", other, Offer, Update, offer, false},
		{"assignee reads task", other, Task, Read, task, true},
		{"admin reads task", admin, Task, Read, task, false},
		{"admin deletes task", admin, Task, Delete, task, true},
		{"participant reviews", corp, Review, Create, project, true},
		{"stranger reviews", other, Review, Create, project, false},
		{"corporate lists admin users", corp, UserAdmin, List, nil, false},
		{"admin lists users", admin, UserAdmin, List, nil, true},
		{"self reads profile", corp, User, Read, &Target{OwnerID: corp.ID}, true},
		{"other reads profile", inno, User, Read, &Target{OwnerID: corp.ID}, false},
		{"owner innovator edits innovation", inno, Innovation, Update, offer, true},
		{"admin edits innovation", admin, Innovation, Update, offer, false},
		{"bookmark owner deletes", corp, Bookmark, Delete, &Target{OwnerID: corp.ID}, true},
		{"admin deletes bookmark", admin, Bookmark, Delete, &Target{OwnerID: corp.ID}, false},
		{"admin probe", admin, AdminArea, Read, nil, true},
		{"non-admin probe", corp, AdminArea, Read, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Evaluate(tt.actor, tt.res, tt.act, tt.target)
			if tt.allow {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, KindForbidden, kindOf(t, err))
		})
	}
}

func TestKindStatus(t *testing.T) {
	assert.Equal(t, 401, Unauthorized("").Status())
	assert.Equal(t, 403, Forbidden("").Status())
	assert.Equal(t, 404, NotFound("").Status())
	assert.Equal(t, 409, Conflict("").Status())
	assert.Equal(t, 400, BadRequest("").Status())
	assert.Equal(t, "conflict", Conflict("").Error())
	assert.Equal(t, "duplicate", Conflict("duplicate").Error())
}
