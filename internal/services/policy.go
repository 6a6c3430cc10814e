package services

import "hostel-complaints-backend-go/internal/models"

type Operation string

const (
	OpCreateComplaint Operation = "create complaint"
	OpListOwn         Operation = "list own complaints"
	OpListPublic      Operation = "list public complaints"
	OpListAll         Operation = "list all complaints"
	OpViewComplaint   Operation = "view complaint"
	OpUpdateStatus    Operation = "update complaint status"
	OpDeleteComplaint Operation = "delete complaint"
	OpVote            Operation = "vote on complaint"
	OpViewHealth      Operation = "view server health"
)

// Authorize applies the role half of the policy. Ownership checks that depend
// on the stored complaint live next to the store call (see DeleteScope and
// CanView).
func Authorize(id Identity, op Operation) error {
	switch id.Role {
	case models.RoleStudent:
		switch op {
		case OpCreateComplaint, OpListOwn, OpListPublic, OpDeleteComplaint, OpVote:
			return nil
		case OpListAll, OpViewComplaint, OpUpdateStatus, OpViewHealth:
			return ErrForbidden("Access denied. Maintainers only.")
		}
	case models.RoleMaintainer:
		switch op {
		case OpListOwn, OpListPublic, OpListAll, OpViewComplaint, OpUpdateStatus, OpDeleteComplaint, OpVote, OpViewHealth:
			return nil
		case OpCreateComplaint:
			return ErrForbidden("Only students can file complaints")
		}
	}
	return ErrForbidden("Not allowed")
}

// DeleteScope is the owner a delete must match; maintainers delete anything.
func DeleteScope(id Identity) string {
	if id.Role == models.RoleMaintainer {
		return ""
	}
	return id.UserID
}

// CanView reports whether the caller may see the complaint at all.
func CanView(id Identity, c *models.Complaint) bool {
	switch id.Role {
	case models.RoleMaintainer:
		return true
	case models.RoleStudent:
		return c.IsPublic || c.StudentID == id.UserID
	}
	return false
}
