package httpapi

import (
	"time"

	"hostel-complaints-backend-go/internal/models"
	"hostel-complaints-backend-go/internal/services"
)

type ComplaintDTO struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Category      string      `json:"category"`
	ImageURL      *string     `json:"imageUrl"`
	Status        string      `json:"status"`
	Remark        *string     `json:"remark,omitempty"`
	RemarkBy      *string     `json:"remarkBy,omitempty"`
	RemarkAuthor  *UserRefDTO `json:"remarkAuthor,omitempty"`
	RemarkAt      *time.Time  `json:"remarkAt,omitempty"`
	StudentID     string      `json:"studentId"`
	Student       *UserRefDTO `json:"student,omitempty"`
	AssignedTo    *string     `json:"assignedTo,omitempty"`
	Assignee      *UserRefDTO `json:"assignee,omitempty"`
	IsPublic      bool        `json:"isPublic"`
	UpvotedBy     []string    `json:"upvotedBy"`
	DownvotedBy   []string    `json:"downvotedBy"`
	UpvoteCount   int         `json:"upvoteCount"`
	DownvoteCount int         `json:"downvoteCount"`
	HasUpvoted    bool        `json:"hasUpvoted"`
	HasDownvoted  bool        `json:"hasDownvoted"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

type ComplaintListResponse struct {
	Complaints []ComplaintDTO `json:"complaints"`
}

type ComplaintResponse struct {
	Message   string       `json:"message,omitempty"`
	Complaint ComplaintDTO `json:"complaint"`
}

type VoteResponse struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
}

// toComplaintDTO shapes a complaint for one viewer. Students looking at a
// complaint they do not own see no contact fields and only their own vote.
func toComplaintDTO(c *models.Complaint, viewer services.Identity) ComplaintDTO {
	upvoted := c.UpvotedBy
	downvoted := c.DownvotedBy
	student := toUserRefDTO(c.Student)
	assignee := toUserRefDTO(c.Assignee)
	remarkAuthor := toUserRefDTO(c.RemarkAuthor)
	if viewer.Role != models.RoleMaintainer && viewer.UserID != c.StudentID {
		upvoted = onlyViewer(upvoted, viewer.UserID)
		downvoted = onlyViewer(downvoted, viewer.UserID)
		student = withoutContact(student)
		assignee = withoutContact(assignee)
		remarkAuthor = withoutContact(remarkAuthor)
	}
	if upvoted == nil {
		upvoted = []string{}
	}
	if downvoted == nil {
		downvoted = []string{}
	}
	return ComplaintDTO{
		ID:            c.ID,
		Title:         c.Title,
		Description:   c.Description,
		Category:      string(c.Category),
		ImageURL:      c.ImageURL,
		Status:        string(c.Status),
		Remark:        c.Remark,
		RemarkBy:      c.RemarkBy,
		RemarkAuthor:  remarkAuthor,
		RemarkAt:      c.RemarkAt,
		StudentID:     c.StudentID,
		Student:       student,
		AssignedTo:    c.AssignedTo,
		Assignee:      assignee,
		IsPublic:      c.IsPublic,
		UpvotedBy:     upvoted,
		DownvotedBy:   downvoted,
		UpvoteCount:   c.UpvoteCount,
		DownvoteCount: c.DownvoteCount,
		HasUpvoted:    c.HasVoted(viewer.UserID, models.VoteUp),
		HasDownvoted:  c.HasVoted(viewer.UserID, models.VoteDown),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func onlyViewer(ids []string, viewerID string) []string {
	for _, id := range ids {
		if id == viewerID {
			return []string{viewerID}
		}
	}
	return []string{}
}

func withoutContact(ref *UserRefDTO) *UserRefDTO {
	if ref == nil {
		return nil
	}
	return &UserRefDTO{ID: ref.ID, Username: ref.Username}
}

func toComplaintList(items []*models.Complaint, viewer services.Identity) ComplaintListResponse {
	out := make([]ComplaintDTO, 0, len(items))
	for _, item := range items {
		out = append(out, toComplaintDTO(item, viewer))
	}
	return ComplaintListResponse{Complaints: out}
}
