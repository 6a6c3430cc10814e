package store

import (
	"context"

	"hostel-complaints-backend-go/internal/models"
)

// Populate resolves studentId, assignedTo and remarkBy to public user fields. It runs
// after the complaint fetch as a single batched user lookup.
func Populate(ctx context.Context, users UserStore, complaints ...*models.Complaint) error {
	if len(complaints) == 0 {
		return nil
	}
	seen := map[string]bool{}
	ids := make([]string, 0, len(complaints))
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	}
	for _, c := range complaints {
		add(c.StudentID)
		if c.AssignedTo != nil {
			add(*c.AssignedTo)
		}
		if c.RemarkBy != nil {
			add(*c.RemarkBy)
		}
	}
	refs, err := users.FindUserRefs(ctx, ids)
	if err != nil {
		return err
	}
	for _, c := range complaints {
		if ref, ok := refs[c.StudentID]; ok {
			student := ref
			c.Student = &student
		}
		if c.AssignedTo != nil {
			if ref, ok := refs[*c.AssignedTo]; ok {
				assignee := ref
				c.Assignee = &assignee
			}
		}
		if c.RemarkBy != nil {
			if ref, ok := refs[*c.RemarkBy]; ok {
				author := ref
				c.RemarkAuthor = &author
			}
		}
	}
	return nil
}
