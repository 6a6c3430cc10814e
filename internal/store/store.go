// Package store holds the persistence layer for users and complaints. Every
// mutation it exposes is a single atomic operation; callers never hold locks
// across calls.
package store

import (
	"context"
	"errors"
	"time"

	"hostel-complaints-backend-go/internal/models"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrDuplicate     = errors.New("store: duplicate")
	ErrStatusChanged = errors.New("store: status changed concurrently")
)

type ComplaintFilter struct {
	// StudentID restricts results to one owner when set.
	StudentID  string
	PublicOnly bool
}

// StatusChange is applied only while the stored status still equals From.
// Remark, RemarkBy and RemarkAt are written together or not at all.
type StatusChange struct {
	From     models.Status
	To       models.Status
	Remark   *string
	RemarkBy string
	ClaimFor string
	At       time.Time
}

type ComplaintStore interface {
	CreateComplaint(ctx context.Context, complaint *models.Complaint) error
	FindComplaint(ctx context.Context, id string) (*models.Complaint, error)
	ListComplaints(ctx context.Context, filter ComplaintFilter) ([]*models.Complaint, error)
	UpdateStatus(ctx context.Context, id string, change StatusChange) (*models.Complaint, error)
	// DeleteComplaint removes the complaint; a non-empty ownerID also
	// requires student_id to match.
	DeleteComplaint(ctx context.Context, id, ownerID string) error
	ToggleVote(ctx context.Context, id, userID string, direction models.VoteDirection) (models.VoteTally, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserRefs(ctx context.Context, ids []string) (map[string]models.UserRef, error)
}

type Store interface {
	ComplaintStore
	UserStore
	Ping(ctx context.Context) error
	Close() error
}
