// Package activity builds the per-user activity feed from recent pilot
// projects, offers, reviews and reactions.
package activity

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pilotify/pilotify-api/internal/models"
)

const DefaultLimit = 5

const (
	TypePilotProject = "Pilot Project"
	TypeOffer        = "Offer"
	TypeReview       = "Review"
	TypeReaction     = "Reaction"
)

type ProjectRef struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type Event struct {
	Type         string      `json:"type"`
	ID           uuid.UUID   `json:"id"`
	Title        string      `json:"title"`
	CreatedAt    time.Time   `json:"created_at"`
	Description  string      `json:"description"`
	IsMyAction   bool        `json:"is_my_action"`
	PilotProject *ProjectRef `json:"pilot_project,omitempty"`
}

// Aggregator merges the four event sources into one feed.
type Aggregator struct {
	Source Source
	Limit  int
}

func NewAggregator(src Source, limit int) *Aggregator {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Aggregator{Source: src, Limit: limit}
}

// Cutoff returns the lower bound for the feed: none when all is set,
// otherwise the viewer's watermark (which may itself be unset).
func Cutoff(viewer *models.User, all bool) *time.Time {
	if all || viewer == nil {
		return nil
	}
	return viewer.LastViewedActivitiesAt
}

// Feed runs the sub-queries concurrently and merges them. Events caused by
// the viewer are dropped.
func (a *Aggregator) Feed(ctx context.Context, viewer uuid.UUID, since *time.Time) ([]Event, error) {
	var (
		projects  []models.PilotProject
		offers    []models.Offer
		reviews   []models.Review
		reactions []models.Reaction
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		projects, err = a.Source.Projects(ctx, ProjectQuery{Since: since, Limit: a.Limit})
		return wrap("projects", err)
	})
	g.Go(func() (err error) {
		offers, err = a.Source.Offers(ctx, OfferQuery{Since: since, Limit: a.Limit})
		return wrap("offers", err)
	})
	g.Go(func() (err error) {
		reviews, err = a.Source.Reviews(ctx, ReviewQuery{Since: since, Limit: a.Limit})
		return wrap("reviews", err)
	})
	g.Go(func() (err error) {
		reactions, err = a.Source.Reactions(ctx, ReactionQuery{Since: since, Limit: a.Limit, CommentAuthorID: viewer})
		return wrap("reactions", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Merge(a.Limit,
		ProjectEvents(viewer, projects),
		OfferEvents(viewer, offers),
		ReviewEvents(viewer, reviews),
		ReactionEvents(reactions),
	), nil
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("activity %s: %w", what, err)
	}
	return nil
}

// Merge concatenates the groups in order, drops the viewer's own actions,
// sorts newest first and truncates to limit. Ties keep their group order.
func Merge(limit int, groups ...[]Event) []Event {
	out := make([]Event, 0, limit)
	for _, g := range groups {
		for _, e := range g {
			if !e.IsMyAction {
				out = append(out, e)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
