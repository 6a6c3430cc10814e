package services

import (
	"context"
	"errors"

	"hostel-complaints-backend-go/internal/models"
	"hostel-complaints-backend-go/internal/store"
)

func (s *ComplaintService) Upvote(ctx context.Context, actor Identity, id string) (models.VoteTally, error) {
	return s.vote(ctx, actor, id, models.VoteUp)
}

func (s *ComplaintService) Downvote(ctx context.Context, actor Identity, id string) (models.VoteTally, error) {
	return s.vote(ctx, actor, id, models.VoteDown)
}

// vote toggles the caller's vote. The visibility check reads the complaint
// once; the toggle itself re-reads membership inside the store's atomic
// section.
func (s *ComplaintService) vote(ctx context.Context, actor Identity, id string, direction models.VoteDirection) (models.VoteTally, error) {
	if err := Authorize(actor, OpVote); err != nil {
		return models.VoteTally{}, err
	}
	if !validID(id) {
		return models.VoteTally{}, ErrNotFound("Complaint not found")
	}
	complaint, err := s.Store.FindComplaint(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.VoteTally{}, ErrNotFound("Complaint not found")
	}
	if err != nil {
		return models.VoteTally{}, ErrInternal(err, "load complaint")
	}
	if !CanView(actor, complaint) {
		return models.VoteTally{}, ErrNotFound("Complaint not found")
	}
	tally, err := s.Store.ToggleVote(ctx, id, actor.UserID, direction)
	if errors.Is(err, store.ErrNotFound) {
		return models.VoteTally{}, ErrNotFound("Complaint not found")
	}
	if err != nil {
		return models.VoteTally{}, ErrInternal(err, "toggle vote")
	}
	return tally, nil
}
