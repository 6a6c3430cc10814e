package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"hostel-complaints-backend-go/internal/models"
)

// Memory is a process-local Store used by STORE_DRIVER=memory and the tests.
// A single mutex serializes every mutation.
type Memory struct {
	mu         sync.RWMutex
	users      map[string]*models.User
	complaints map[string]*models.Complaint
}

func NewMemory() *Memory {
	return &Memory{
		users:      map[string]*models.User{},
		complaints: map[string]*models.Complaint{},
	}
}

func (m *Memory) Ping(ctx context.Context) error { return ctx.Err() }

func (m *Memory) Close() error { return nil }

func (m *Memory) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.ID == user.ID || existing.Username == user.Username || strings.EqualFold(existing.Email, user.Email) {
			return ErrDuplicate
		}
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *Memory) FindUserByID(_ context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *Memory) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) FindUserRefs(_ context.Context, ids []string) (map[string]models.UserRef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	refs := make(map[string]models.UserRef, len(ids))
	for _, id := range ids {
		if user, ok := m.users[id]; ok {
			refs[id] = models.UserRef{ID: user.ID, Username: user.Username, Email: user.Email, RoomNumber: user.RoomNumber}
		}
	}
	return refs, nil
}

func (m *Memory) CreateComplaint(_ context.Context, complaint *models.Complaint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.complaints[complaint.ID]; exists {
		return ErrDuplicate
	}
	stored := cloneComplaint(complaint)
	stored.UpvotedBy = []string{}
	stored.DownvotedBy = []string{}
	stored.UpvoteCount = 0
	stored.DownvoteCount = 0
	m.complaints[complaint.ID] = stored
	return nil
}

func (m *Memory) FindComplaint(_ context.Context, id string) (*models.Complaint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	complaint, ok := m.complaints[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneComplaint(complaint), nil
}

func (m *Memory) ListComplaints(_ context.Context, filter ComplaintFilter) ([]*models.Complaint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := []*models.Complaint{}
	for _, complaint := range m.complaints {
		if filter.StudentID != "" && complaint.StudentID != filter.StudentID {
			continue
		}
		if filter.PublicOnly && !complaint.IsPublic {
			continue
		}
		items = append(items, cloneComplaint(complaint))
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (m *Memory) UpdateStatus(_ context.Context, id string, change StatusChange) (*models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	complaint, ok := m.complaints[id]
	if !ok {
		return nil, ErrNotFound
	}
	if complaint.Status != change.From {
		return nil, ErrStatusChanged
	}
	complaint.Status = change.To
	complaint.UpdatedAt = change.At
	if change.Remark != nil {
		remark := *change.Remark
		remarkBy := change.RemarkBy
		remarkAt := change.At
		complaint.Remark = &remark
		complaint.RemarkBy = &remarkBy
		complaint.RemarkAt = &remarkAt
	}
	if change.ClaimFor != "" && complaint.AssignedTo == nil {
		claim := change.ClaimFor
		complaint.AssignedTo = &claim
	}
	return cloneComplaint(complaint), nil
}

func (m *Memory) DeleteComplaint(_ context.Context, id, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	complaint, ok := m.complaints[id]
	if !ok || (ownerID != "" && complaint.StudentID != ownerID) {
		return ErrNotFound
	}
	delete(m.complaints, id)
	return nil
}

func (m *Memory) ToggleVote(_ context.Context, id, userID string, direction models.VoteDirection) (models.VoteTally, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	complaint, ok := m.complaints[id]
	if !ok {
		return models.VoteTally{}, ErrNotFound
	}
	same, other := &complaint.UpvotedBy, &complaint.DownvotedBy
	if direction == models.VoteDown {
		same, other = other, same
	}
	if containsID(*same, userID) {
		*same = removeID(*same, userID)
	} else {
		*same = append(*same, userID)
		*other = removeID(*other, userID)
	}
	complaint.UpvoteCount = len(complaint.UpvotedBy)
	complaint.DownvoteCount = len(complaint.DownvotedBy)
	return models.VoteTally{Upvotes: complaint.UpvoteCount, Downvotes: complaint.DownvoteCount}, nil
}

func containsID(ids []string, id string) bool {
	for _, value := range ids {
		if value == id {
			return true
		}
	}
	return false
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, value := range ids {
		if value != id {
			out = append(out, value)
		}
	}
	return out
}

func cloneComplaint(c *models.Complaint) *models.Complaint {
	copied := *c
	copied.UpvotedBy = append([]string{}, c.UpvotedBy...)
	copied.DownvotedBy = append([]string{}, c.DownvotedBy...)
	copied.Student = nil
	copied.Assignee = nil
	copied.RemarkAuthor = nil
	return &copied
}
