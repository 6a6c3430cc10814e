package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"hostel-complaints-backend-go/internal/db"
	"hostel-complaints-backend-go/internal/migrations"
	"hostel-complaints-backend-go/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// newPostgresStore starts a throwaway Postgres with the repo migrations
// applied. Skipped in -short mode and when no container runtime is reachable.
func newPostgresStore(t *testing.T) *Postgres {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres integration test skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("complaints_test"),
		postgres.WithUsername("complaints_test"),
		postgres.WithPassword("complaints_test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Errorf("terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	database, err := db.Open(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, migrations.Apply(ctx, database, "../../migrations"))

	store := NewPostgres(database)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func pgUser(t *testing.T, s *Postgres, username string, role models.Role) *models.User {
	t.Helper()
	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        username + "@hostel.test",
		PasswordHash: "x",
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func TestPostgresStore(t *testing.T) {
	s := newPostgresStore(t)
	ctx := context.Background()

	alice := pgUser(t, s, "alice", models.RoleStudent)
	bob := pgUser(t, s, "bob", models.RoleStudent)
	mona := pgUser(t, s, "mona", models.RoleMaintainer)

	t.Run("duplicate username and email", func(t *testing.T) {
		err := s.CreateUser(ctx, &models.User{ID: uuid.NewString(), Username: "alice", Email: "new@hostel.test", PasswordHash: "x", Role: models.RoleStudent})
		assert.ErrorIs(t, err, ErrDuplicate)
		err = s.CreateUser(ctx, &models.User{ID: uuid.NewString(), Username: "carol", Email: "ALICE@hostel.test", PasswordHash: "x", Role: models.RoleStudent})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("find users", func(t *testing.T) {
		found, err := s.FindUserByUsername(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, bob.ID, found.ID)
		assert.Equal(t, models.RoleStudent, found.Role)

		_, err = s.FindUserByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, ErrNotFound)

		refs, err := s.FindUserRefs(ctx, []string{alice.ID, mona.ID})
		require.NoError(t, err)
		assert.Equal(t, "alice", refs[alice.ID].Username)
		assert.Equal(t, "mona", refs[mona.ID].Username)
	})

	base := time.Now().UTC().Truncate(time.Millisecond)
	public := seedComplaint(t, s, alice.ID, true, base)
	private := seedComplaint(t, s, alice.ID, false, base.Add(time.Second))
	other := seedComplaint(t, s, bob.ID, false, base.Add(2*time.Second))

	t.Run("list filters", func(t *testing.T) {
		all, err := s.ListComplaints(ctx, ComplaintFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, other.ID, all[0].ID)

		own, err := s.ListComplaints(ctx, ComplaintFilter{StudentID: alice.ID})
		require.NoError(t, err)
		assert.Len(t, own, 2)

		pub, err := s.ListComplaints(ctx, ComplaintFilter{PublicOnly: true})
		require.NoError(t, err)
		require.Len(t, pub, 1)
		assert.Equal(t, public.ID, pub[0].ID)
		assert.NotNil(t, pub[0].UpvotedBy)
	})

	t.Run("toggle votes", func(t *testing.T) {
		tally, err := s.ToggleVote(ctx, public.ID, bob.ID, models.VoteUp)
		require.NoError(t, err)
		assert.Equal(t, models.VoteTally{Upvotes: 1}, tally)

		tally, err = s.ToggleVote(ctx, public.ID, bob.ID, models.VoteDown)
		require.NoError(t, err)
		assert.Equal(t, models.VoteTally{Downvotes: 1}, tally)

		loaded, err := s.FindComplaint(ctx, public.ID)
		require.NoError(t, err)
		assert.Empty(t, loaded.UpvotedBy)
		assert.Equal(t, []string{bob.ID}, loaded.DownvotedBy)
		assert.Equal(t, 1, loaded.DownvoteCount)

		tally, err = s.ToggleVote(ctx, public.ID, bob.ID, models.VoteDown)
		require.NoError(t, err)
		assert.Equal(t, models.VoteTally{}, tally)

		_, err = s.ToggleVote(ctx, uuid.NewString(), bob.ID, models.VoteUp)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("concurrent votes", func(t *testing.T) {
		voters := make([]*models.User, 20)
		for i := range voters {
			voters[i] = pgUser(t, s, "voter"+uuid.NewString()[:8], models.RoleStudent)
		}
		var wg sync.WaitGroup
		for i, voter := range voters {
			wg.Add(1)
			go func(i int, id string) {
				defer wg.Done()
				direction := models.VoteUp
				if i%2 == 1 {
					direction = models.VoteDown
				}
				_, err := s.ToggleVote(ctx, other.ID, id, direction)
				assert.NoError(t, err)
			}(i, voter.ID)
		}
		wg.Wait()

		loaded, err := s.FindComplaint(ctx, other.ID)
		require.NoError(t, err)
		assert.Len(t, loaded.UpvotedBy, 10)
		assert.Len(t, loaded.DownvotedBy, 10)
		assert.Equal(t, 10, loaded.UpvoteCount)
		assert.Equal(t, 10, loaded.DownvoteCount)
	})

	t.Run("guarded status update", func(t *testing.T) {
		remark := "Fixed"
		at := time.Now().UTC()
		updated, err := s.UpdateStatus(ctx, private.ID, StatusChange{
			From: models.StatusPending, To: models.StatusInProgress, ClaimFor: mona.ID, At: at,
		})
		require.NoError(t, err)
		assert.Equal(t, models.StatusInProgress, updated.Status)
		require.NotNil(t, updated.AssignedTo)
		assert.Equal(t, mona.ID, *updated.AssignedTo)

		_, err = s.UpdateStatus(ctx, private.ID, StatusChange{From: models.StatusPending, To: models.StatusRejected, At: at})
		assert.ErrorIs(t, err, ErrStatusChanged)

		updated, err = s.UpdateStatus(ctx, private.ID, StatusChange{
			From: models.StatusInProgress, To: models.StatusResolved, Remark: &remark, RemarkBy: mona.ID, At: at,
		})
		require.NoError(t, err)
		require.NotNil(t, updated.Remark)
		assert.Equal(t, "Fixed", *updated.Remark)
		require.NotNil(t, updated.RemarkAt)
		assert.WithinDuration(t, at, *updated.RemarkAt, time.Millisecond)

		_, err = s.UpdateStatus(ctx, uuid.NewString(), StatusChange{From: models.StatusPending, To: models.StatusResolved, At: at})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete scope", func(t *testing.T) {
		assert.ErrorIs(t, s.DeleteComplaint(ctx, public.ID, bob.ID), ErrNotFound)
		require.NoError(t, s.DeleteComplaint(ctx, public.ID, alice.ID))
		_, err := s.FindComplaint(ctx, public.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		require.NoError(t, s.DeleteComplaint(ctx, other.ID, ""))
	})
}
