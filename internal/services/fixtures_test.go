package services

import (
	"context"
	"testing"
	"time"

	"hostel-complaints-backend-go/internal/models"
	"hostel-complaints-backend-go/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store      *store.Memory
	complaints *ComplaintService
	student    Identity
	other      Identity
	maintainer Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := store.NewMemory()
	f := &fixture{
		store:      mem,
		complaints: NewComplaintService(mem, LocalBlobStore{BasePath: t.TempDir(), MaxBytes: 1 << 20}),
	}
	f.student = addUser(t, mem, "alice", models.RoleStudent)
	f.other = addUser(t, mem, "bob", models.RoleStudent)
	f.maintainer = addUser(t, mem, "mona", models.RoleMaintainer)
	return f
}

func addUser(t *testing.T, s store.UserStore, username string, role models.Role) Identity {
	t.Helper()
	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        username + "@hostel.test",
		PasswordHash: "unused",
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return Identity{UserID: user.ID, Username: user.Username, Role: role}
}

func (f *fixture) file(t *testing.T, owner Identity, public bool) *models.Complaint {
	t.Helper()
	complaint, err := f.complaints.Create(context.Background(), owner, NewComplaint{
		Title:       "Broken fan",
		Description: "The ceiling fan in room B-12 stopped working",
		Category:    "Electrical",
		IsPublic:    public,
	})
	require.NoError(t, err)
	return complaint
}

func requireKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, KindOf(err), "error: %v", err)
}
