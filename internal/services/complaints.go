package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"hostel-complaints-backend-go/internal/models"
	"hostel-complaints-backend-go/internal/store"

	"github.com/google/uuid"
)

// ComplaintBackend is the slice of the store the complaint service needs.
type ComplaintBackend interface {
	store.ComplaintStore
	store.UserStore
}

type ComplaintService struct {
	Store ComplaintBackend
	Blobs BlobStore
	Now   func() time.Time
}

func NewComplaintService(backend ComplaintBackend, blobs BlobStore) *ComplaintService {
	return &ComplaintService{Store: backend, Blobs: blobs}
}

// Upload is an image attached to a new complaint.
type Upload struct {
	Body        io.Reader
	ContentType string
}

type NewComplaint struct {
	Title       string `validate:"required,max=200"`
	Description string `validate:"required,max=5000"`
	Category    string
	IsPublic    bool
	Image       *Upload `validate:"-"`
}

func (s *ComplaintService) Create(ctx context.Context, actor Identity, req NewComplaint) (*models.Complaint, error) {
	if err := Authorize(actor, OpCreateComplaint); err != nil {
		return nil, err
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	category, ok := models.ParseCategory(req.Category)
	if !ok {
		return nil, ErrInvalidInput("Invalid category. Must be one of: Electrical, Repair, Cleaning, Other")
	}

	var imageURL *string
	if req.Image != nil {
		if s.Blobs == nil {
			return nil, ErrInvalidInput("Image uploads are not enabled")
		}
		url, err := s.Blobs.Store(ctx, req.Image.Body, req.Image.ContentType)
		if err != nil {
			return nil, err
		}
		imageURL = &url
	}

	now := s.now()
	complaint := &models.Complaint{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Category:    category,
		ImageURL:    imageURL,
		Status:      models.StatusPending,
		StudentID:   actor.UserID,
		IsPublic:    req.IsPublic,
		UpvotedBy:   []string{},
		DownvotedBy: []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.CreateComplaint(ctx, complaint); err != nil {
		if imageURL != nil {
			s.removeImage(ctx, *imageURL)
		}
		return nil, ErrInternal(err, "create complaint")
	}
	if err := store.Populate(ctx, s.Store, complaint); err != nil {
		return nil, ErrInternal(err, "populate complaint")
	}
	return complaint, nil
}

// ListOwn returns the caller's complaints, newest first.
func (s *ComplaintService) ListOwn(ctx context.Context, actor Identity) ([]*models.Complaint, error) {
	if err := Authorize(actor, OpListOwn); err != nil {
		return nil, err
	}
	return s.list(ctx, store.ComplaintFilter{StudentID: actor.UserID})
}

// ListPublic returns every public complaint regardless of owner.
func (s *ComplaintService) ListPublic(ctx context.Context, actor Identity) ([]*models.Complaint, error) {
	if err := Authorize(actor, OpListPublic); err != nil {
		return nil, err
	}
	return s.list(ctx, store.ComplaintFilter{PublicOnly: true})
}

func (s *ComplaintService) ListAll(ctx context.Context, actor Identity) ([]*models.Complaint, error) {
	if err := Authorize(actor, OpListAll); err != nil {
		return nil, err
	}
	return s.list(ctx, store.ComplaintFilter{})
}

func (s *ComplaintService) Get(ctx context.Context, actor Identity, id string) (*models.Complaint, error) {
	if err := Authorize(actor, OpViewComplaint); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, ErrNotFound("Complaint not found")
	}
	complaint, err := s.Store.FindComplaint(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound("Complaint not found")
	}
	if err != nil {
		return nil, ErrInternal(err, "load complaint")
	}
	if err := store.Populate(ctx, s.Store, complaint); err != nil {
		return nil, ErrInternal(err, "populate complaint")
	}
	return complaint, nil
}

// Delete removes a complaint. A student deleting someone else's complaint
// gets the same NotFound as for a missing id.
func (s *ComplaintService) Delete(ctx context.Context, actor Identity, id string) error {
	if err := Authorize(actor, OpDeleteComplaint); err != nil {
		return err
	}
	if !validID(id) {
		return ErrNotFound("No complaint found or not authorized")
	}
	var imageURL *string
	if existing, err := s.Store.FindComplaint(ctx, id); err == nil {
		imageURL = existing.ImageURL
	}
	err := s.Store.DeleteComplaint(ctx, id, DeleteScope(actor))
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound("No complaint found or not authorized")
	}
	if err != nil {
		return ErrInternal(err, "delete complaint")
	}
	if imageURL != nil {
		s.removeImage(ctx, *imageURL)
	}
	return nil
}

func (s *ComplaintService) list(ctx context.Context, filter store.ComplaintFilter) ([]*models.Complaint, error) {
	items, err := s.Store.ListComplaints(ctx, filter)
	if err != nil {
		return nil, ErrInternal(err, "list complaints")
	}
	if err := store.Populate(ctx, s.Store, items...); err != nil {
		return nil, ErrInternal(err, "populate complaints")
	}
	return items, nil
}

func (s *ComplaintService) removeImage(ctx context.Context, url string) {
	if s.Blobs == nil {
		return
	}
	if err := s.Blobs.Remove(ctx, url); err != nil {
		slog.Warn("remove complaint image", "url", url, "error", err)
	}
}

func (s *ComplaintService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
