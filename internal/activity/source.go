package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pilotify/pilotify-api/internal/models"
)

type ProjectQuery struct {
	Since *time.Time
	Limit int
}

type OfferQuery struct {
	Since *time.Time
	Limit int
}

type ReviewQuery struct {
	Since *time.Time
	Limit int
}

// ReactionQuery selects reactions on comments written by CommentAuthorID,
// excluding the author's own reactions.
type ReactionQuery struct {
	Since           *time.Time
	Limit           int
	CommentAuthorID uuid.UUID
}

// Source returns each sub-query's rows newest first.
type Source interface {
	Projects(ctx context.Context, q ProjectQuery) ([]models.PilotProject, error)
	Offers(ctx context.Context, q OfferQuery) ([]models.Offer, error)
	Reviews(ctx context.Context, q ReviewQuery) ([]models.Review, error)
	Reactions(ctx context.Context, q ReactionQuery) ([]models.Reaction, error)
}

type GormSource struct {
	DB *gorm.DB
}

var _ Source = (*GormSource)(nil)

func since(tx *gorm.DB, column string, t *time.Time) *gorm.DB {
	if t == nil {
		return tx
	}
	return tx.Where(column+" > ?", *t)
}

func (s *GormSource) Projects(ctx context.Context, q ProjectQuery) ([]models.PilotProject, error) {
	var rows []models.PilotProject
	err := since(s.DB.WithContext(ctx), "created_at", q.Since).
		Preload("Corporate").
		Preload("Innovator").
		Order("created_at DESC").
		Limit(q.Limit).
		Find(&rows).Error
	return rows, err
}

func (s *GormSource) Offers(ctx context.Context, q OfferQuery) ([]models.Offer, error) {
	var rows []models.Offer
	err := since(s.DB.WithContext(ctx), "created_at", q.Since).
		Preload("Owner").
		Order("created_at DESC").
		Limit(q.Limit).
		Find(&rows).Error
	return rows, err
}

func (s *GormSource) Reviews(ctx context.Context, q ReviewQuery) ([]models.Review, error) {
	var rows []models.Review
	err := since(s.DB.WithContext(ctx), "created_at", q.Since).
		Preload("PilotProject").
		Preload("Reviewer").
		Order("created_at DESC").
		Limit(q.Limit).
		Find(&rows).Error
	return rows, err
}

func (s *GormSource) Reactions(ctx context.Context, q ReactionQuery) ([]models.Reaction, error) {
	var rows []models.Reaction
	tx := s.DB.WithContext(ctx).
		Joins("JOIN comments ON comments.id = reactions.comment_id").
		Where("comments.user_id = ? AND reactions.user_id <> ?", q.CommentAuthorID, q.CommentAuthorID)
	err := since(tx, "reactions.created_at", q.Since).
		Preload("User").
		Preload("Comment.PilotProject").
		Order("reactions.created_at DESC").
		Limit(q.Limit).
		Find(&rows).Error
	return rows, err
}
