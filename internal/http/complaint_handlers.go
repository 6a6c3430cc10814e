package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"hostel-complaints-backend-go/internal/models"
	"hostel-complaints-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
)

type CreateComplaintRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	IsPublic    bool   `json:"isPublic"`
}

type UpdateStatusRequest struct {
	Status string  `json:"status"`
	Remark *string `json:"remark"`
}

// multipart forms above this size spill to temp files
const multipartMemory = 1 << 20

// CreateComplaint accepts either JSON or a multipart form with an optional
// "image" file part.
func (s *Server) CreateComplaint(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	req, cleanup, err := s.decodeNewComplaint(w, r)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	complaint, err := s.Complaints.Create(r.Context(), identity, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, ComplaintResponse{
		Message:   "Complaint created successfully",
		Complaint: toComplaintDTO(complaint, identity),
	})
}

func (s *Server) decodeNewComplaint(w http.ResponseWriter, r *http.Request) (services.NewComplaint, func(), error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var body CreateComplaintRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return services.NewComplaint{}, nil, services.ErrInvalidInput("Invalid payload")
		}
		return services.NewComplaint{
			Title:       body.Title,
			Description: body.Description,
			Category:    body.Category,
			IsPublic:    body.IsPublic,
		}, nil, nil
	}

	limit := s.Config.MediaMaxBytes
	if limit <= 0 {
		limit = 5 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return services.NewComplaint{}, nil, services.ServiceError{Kind: services.KindInvalidInput, Reason: services.ReasonTooLarge, Message: "Image is too large"}
		}
		return services.NewComplaint{}, nil, services.ErrInvalidInput("Invalid form data")
	}
	cleanup := func() { _ = r.MultipartForm.RemoveAll() }

	isPublic := false
	if raw := strings.TrimSpace(r.FormValue("isPublic")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return services.NewComplaint{}, cleanup, services.ErrInvalidInput("isPublic must be true or false")
		}
		isPublic = parsed
	}
	req := services.NewComplaint{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		IsPublic:    isPublic,
	}
	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		return services.NewComplaint{}, cleanup, services.ErrInvalidInput("Invalid image upload")
	default:
		// the service reads the upload before Create returns; cleanup closes it
		prev := cleanup
		cleanup = func() {
			_ = file.Close()
			prev()
		}
		req.Image = &services.Upload{Body: file, ContentType: header.Header.Get("Content-Type")}
	}
	return req, cleanup, nil
}

// UserComplaints lists the caller's own complaints, or the public feed when
// called with ?public=true.
func (s *Server) UserComplaints(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	var (
		items []*models.Complaint
		err   error
	)
	if public, _ := strconv.ParseBool(r.URL.Query().Get("public")); public {
		items, err = s.Complaints.ListPublic(r.Context(), identity)
	} else {
		items, err = s.Complaints.ListOwn(r.Context(), identity)
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toComplaintList(items, identity))
}

func (s *Server) PublicComplaints(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	items, err := s.Complaints.ListPublic(r.Context(), identity)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toComplaintList(items, identity))
}

func (s *Server) AllComplaints(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	items, err := s.Complaints.ListAll(r.Context(), identity)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toComplaintList(items, identity))
}

func (s *Server) GetComplaint(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	complaint, err := s.Complaints.Get(r.Context(), identity, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, ComplaintResponse{Complaint: toComplaintDTO(complaint, identity)})
}

func (s *Server) UpdateComplaintStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, services.KindInvalidInput, "Invalid payload")
		return
	}
	complaint, err := s.Complaints.UpdateStatus(r.Context(), identity, chi.URLParam(r, "id"), services.StatusUpdate{
		Status: req.Status,
		Remark: req.Remark,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, ComplaintResponse{
		Message:   "Complaint updated successfully",
		Complaint: toComplaintDTO(complaint, identity),
	})
}

func (s *Server) DeleteComplaint(w http.ResponseWriter, r *http.Request) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	if err := s.Complaints.Delete(r.Context(), identity, chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, MessageResponse{Message: "Complaint deleted successfully"})
}

func (s *Server) Upvote(w http.ResponseWriter, r *http.Request) {
	s.vote(w, r, s.Complaints.Upvote)
}

func (s *Server) Downvote(w http.ResponseWriter, r *http.Request) {
	s.vote(w, r, s.Complaints.Downvote)
}

type voteFunc func(ctx context.Context, actor services.Identity, id string) (models.VoteTally, error)

func (s *Server) vote(w http.ResponseWriter, r *http.Request, toggle voteFunc) {
	identity, ok := s.identity(w, r)
	if !ok {
		return
	}
	tally, err := toggle(r.Context(), identity, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, VoteResponse{Upvotes: tally.Upvotes, Downvotes: tally.Downvotes})
}

func (s *Server) identity(w http.ResponseWriter, r *http.Request) (services.Identity, bool) {
	identity, ok := CurrentIdentity(r)
	if !ok {
		WriteError(w, http.StatusUnauthorized, services.KindUnauthenticated, "Authentication failed")
	}
	return identity, ok
}
