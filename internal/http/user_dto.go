package httpapi

import (
	"time"

	"hostel-complaints-backend-go/internal/models"
)

type UserDTO struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	RoomNumber *string   `json:"roomNumber,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// UserRefDTO is the populated form of studentId, assignedTo and remarkBy.
type UserRefDTO struct {
	ID         string  `json:"id"`
	Username   string  `json:"username"`
	Email      string  `json:"email,omitempty"`
	RoomNumber *string `json:"roomNumber,omitempty"`
}

func toUserDTO(user *models.User) *UserDTO {
	if user == nil {
		return nil
	}
	return &UserDTO{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		Role:       string(user.Role),
		RoomNumber: user.RoomNumber,
		CreatedAt:  user.CreatedAt,
	}
}

func toUserRefDTO(ref *models.UserRef) *UserRefDTO {
	if ref == nil {
		return nil
	}
	return &UserRefDTO{ID: ref.ID, Username: ref.Username, Email: ref.Email, RoomNumber: ref.RoomNumber}
}
