package activity

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/pilotify/pilotify-api/internal/models"
)

const reactionExcerptLen = 20

func name(u *models.User) string {
	if u == nil {
		return ""
	}
	return u.Name
}

func ProjectEvents(viewer uuid.UUID, rows []models.PilotProject) []Event {
	out := make([]Event, 0, len(rows))
	for _, p := range rows {
		out = append(out, Event{
			Type:      TypePilotProject,
			ID:        p.ID,
			Title:     p.Title,
			CreatedAt: p.CreatedAt,
			Description: fmt.Sprintf("New pilot project '%s' created between %s and %s.",
				p.Title, name(p.Corporate), name(p.Innovator)),
			IsMyAction: p.IsParticipant(viewer),
		})
	}
	return out
}

func OfferEvents(viewer uuid.UUID, rows []models.Offer) []Event {
	out := make([]Event, 0, len(rows))
	for _, o := range rows {
		out = append(out, Event{
			Type:        TypeOffer,
			ID:          o.ID,
			Title:       o.Title,
			CreatedAt:   o.CreatedAt,
			Description: fmt.Sprintf("New marketplace offer '%s' by %s.", o.Title, name(o.Owner)),
			IsMyAction:  o.OwnerID == viewer,
		})
	}
	return out
}

// ReviewEvents skips reviews whose project could not be loaded.
func ReviewEvents(viewer uuid.UUID, rows []models.Review) []Event {
	out := make([]Event, 0, len(rows))
	for _, r := range rows {
		if r.PilotProject == nil {
			continue
		}
		comment := r.Comment
		if comment == "" {
			comment = "No comment"
		}
		out = append(out, Event{
			Type:      TypeReview,
			ID:        r.ID,
			Title:     "Review for " + r.PilotProject.Title,
			CreatedAt: r.CreatedAt,
			Description: fmt.Sprintf("Review for pilot project '%s' by %s: \"%s\".",
				r.PilotProject.Title, name(r.Reviewer), comment),
			IsMyAction:   r.ReviewerID == viewer,
			PilotProject: &ProjectRef{ID: r.PilotProject.ID, Title: r.PilotProject.Title},
		})
	}
	return out
}

// ReactionEvents expects rows already restricted to reactions by others on
// the viewer's comments, with Comment.PilotProject and User loaded.
func ReactionEvents(rows []models.Reaction) []Event {
	out := make([]Event, 0, len(rows))
	for _, r := range rows {
		if r.Comment == nil || r.Comment.PilotProject == nil {
			continue
		}
		p := r.Comment.PilotProject
		out = append(out, Event{
			Type:      TypeReaction,
			ID:        r.ID,
			Title:     "Reaction on your comment",
			CreatedAt: r.CreatedAt,
			Description: fmt.Sprintf("%s reacted %s to your comment \"%s...\".",
				name(r.User), r.Type, excerpt(r.Comment.Text, reactionExcerptLen)),
			PilotProject: &ProjectRef{ID: p.ID, Title: p.Title},
		})
	}
	return out
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
