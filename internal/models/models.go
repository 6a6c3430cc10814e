package models

import (
	"strings"
	"time"
)

// Role is the closed set of account roles. Policy code switches on it
// exhaustively.
type Role string

const (
	RoleStudent    Role = "student"
	RoleMaintainer Role = "maintainer"
)

func ParseRole(raw string) (Role, bool) {
	switch Role(strings.TrimSpace(raw)) {
	case RoleStudent:
		return RoleStudent, true
	case RoleMaintainer:
		return RoleMaintainer, true
	}
	return "", false
}

type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
	StatusRejected   Status = "Rejected"
)

// ParseStatus matches the canonical capitalized values exactly.
func ParseStatus(raw string) (Status, bool) {
	switch Status(raw) {
	case StatusPending, StatusInProgress, StatusResolved, StatusRejected:
		return Status(raw), true
	}
	return "", false
}

type Category string

const (
	CategoryElectrical Category = "Electrical"
	CategoryRepair     Category = "Repair"
	CategoryCleaning   Category = "Cleaning"
	CategoryOther      Category = "Other"
)

// ParseCategory treats a blank value as Other.
func ParseCategory(raw string) (Category, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return CategoryOther, true
	}
	switch Category(value) {
	case CategoryElectrical, CategoryRepair, CategoryCleaning, CategoryOther:
		return Category(value), true
	}
	return "", false
}

type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

type User struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         Role      `db:"role"`
	RoomNumber   *string   `db:"room_number"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// UserRef is the public projection of a user joined onto complaints.
type UserRef struct {
	ID         string  `db:"id"`
	Username   string  `db:"username"`
	Email      string  `db:"email"`
	RoomNumber *string `db:"room_number"`
}

type Complaint struct {
	ID            string     `db:"id"`
	Title         string     `db:"title"`
	Description   string     `db:"description"`
	Category      Category   `db:"category"`
	ImageURL      *string    `db:"image_url"`
	Status        Status     `db:"status"`
	Remark        *string    `db:"remark"`
	RemarkBy      *string    `db:"remark_by"`
	RemarkAt      *time.Time `db:"remark_at"`
	StudentID     string     `db:"student_id"`
	AssignedTo    *string    `db:"assigned_to"`
	IsPublic      bool       `db:"is_public"`
	UpvoteCount   int        `db:"upvote_count"`
	DownvoteCount int        `db:"downvote_count"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`

	UpvotedBy   []string `db:"-"`
	DownvotedBy []string `db:"-"`

	Student      *UserRef `db:"-"`
	Assignee     *UserRef `db:"-"`
	RemarkAuthor *UserRef `db:"-"`
}

func (c *Complaint) HasVoted(userID string, direction VoteDirection) bool {
	set := c.UpvotedBy
	if direction == VoteDown {
		set = c.DownvotedBy
	}
	for _, id := range set {
		if id == userID {
			return true
		}
	}
	return false
}

type VoteTally struct {
	Upvotes   int `db:"upvote_count"`
	Downvotes int `db:"downvote_count"`
}
