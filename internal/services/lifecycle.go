package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hostel-complaints-backend-go/internal/models"
	"hostel-complaints-backend-go/internal/store"
)

var transitions = map[models.Status][]models.Status{
	models.StatusPending:    {models.StatusInProgress, models.StatusResolved, models.StatusRejected},
	models.StatusInProgress: {models.StatusResolved, models.StatusPending},
	models.StatusResolved:   {models.StatusPending},
	models.StatusRejected:   {models.StatusPending},
}

func CanTransition(from, to models.Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StatusUpdate is a maintainer's transition request.
type StatusUpdate struct {
	Status string
	Remark *string
}

// PlanTransition validates a request against the current complaint and builds
// the guarded store change. Remarks are only recorded when closing a
// complaint; a blank remark counts as absent.
func PlanTransition(actor Identity, current *models.Complaint, target models.Status, remark *string, now time.Time) (store.StatusChange, error) {
	if !CanTransition(current.Status, target) {
		return store.StatusChange{}, ErrInvalidInput(fmt.Sprintf("Cannot change status from %s to %s", current.Status, target))
	}
	change := store.StatusChange{
		From: current.Status,
		To:   target,
		At:   now,
	}
	if target == models.StatusResolved || target == models.StatusRejected {
		if remark != nil && strings.TrimSpace(*remark) != "" {
			text := strings.TrimSpace(*remark)
			change.Remark = &text
			change.RemarkBy = actor.UserID
		}
	}
	if target == models.StatusInProgress {
		change.ClaimFor = actor.UserID
	}
	return change, nil
}

// UpdateStatus runs one lifecycle transition. The write is conditional on the
// status that was validated, so a concurrent transition surfaces as Conflict
// instead of being overwritten.
func (s *ComplaintService) UpdateStatus(ctx context.Context, actor Identity, id string, req StatusUpdate) (*models.Complaint, error) {
	if err := Authorize(actor, OpUpdateStatus); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, ErrNotFound("Complaint not found")
	}
	target, ok := models.ParseStatus(req.Status)
	if !ok {
		return nil, ErrInvalidInput("Invalid status. Must be one of: Pending, In Progress, Resolved, Rejected")
	}
	current, err := s.Store.FindComplaint(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound("Complaint not found")
	}
	if err != nil {
		return nil, ErrInternal(err, "load complaint")
	}
	change, err := PlanTransition(actor, current, target, req.Remark, s.now())
	if err != nil {
		return nil, err
	}
	updated, err := s.Store.UpdateStatus(ctx, id, change)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, ErrNotFound("Complaint not found")
	case errors.Is(err, store.ErrStatusChanged):
		return nil, ErrConflict("Complaint status was changed by someone else, refresh and try again")
	case err != nil:
		return nil, ErrInternal(err, "update complaint status")
	}
	if err := store.Populate(ctx, s.Store, updated); err != nil {
		return nil, ErrInternal(err, "populate complaint")
	}
	return updated, nil
}
