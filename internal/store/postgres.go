package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"hostel-complaints-backend-go/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

const complaintColumns = `id, title, description, category, image_url, status, remark, remark_by, remark_at,
       student_id, assigned_to, is_public, upvote_count, downvote_count, created_at, updated_at`

type Postgres struct {
	db *sqlx.DB
}

func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) CreateUser(ctx context.Context, user *models.User) error {
	_, err := p.db.ExecContext(ctx, `
INSERT INTO users (id, username, email, password_hash, role, room_number, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`, user.ID, user.Username, user.Email, user.PasswordHash, user.Role, user.RoomNumber, user.CreatedAt, user.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (p *Postgres) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := p.db.GetContext(ctx, &user, `
SELECT id, username, email, password_hash, role, room_number, created_at, updated_at
FROM users WHERE id = $1
`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (p *Postgres) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := p.db.GetContext(ctx, &user, `
SELECT id, username, email, password_hash, role, room_number, created_at, updated_at
FROM users WHERE username = $1
`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (p *Postgres) FindUserRefs(ctx context.Context, ids []string) (map[string]models.UserRef, error) {
	refs := map[string]models.UserRef{}
	if len(ids) == 0 {
		return refs, nil
	}
	query, args, err := sqlx.In(`SELECT id, username, email, room_number FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	rows := []models.UserRef{}
	if err := p.db.SelectContext(ctx, &rows, p.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, row := range rows {
		refs[row.ID] = row
	}
	return refs, nil
}

func (p *Postgres) CreateComplaint(ctx context.Context, complaint *models.Complaint) error {
	_, err := p.db.NamedExecContext(ctx, `
INSERT INTO complaints (
  id, title, description, category, image_url, status, student_id, assigned_to,
  is_public, upvote_count, downvote_count, created_at, updated_at
) VALUES (
  :id, :title, :description, :category, :image_url, :status, :student_id, :assigned_to,
  :is_public, 0, 0, :created_at, :updated_at
)
`, complaint)
	return err
}

func (p *Postgres) FindComplaint(ctx context.Context, id string) (*models.Complaint, error) {
	var complaint models.Complaint
	err := p.db.GetContext(ctx, &complaint, `SELECT `+complaintColumns+` FROM complaints WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := p.attachVotes(ctx, &complaint); err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (p *Postgres) ListComplaints(ctx context.Context, filter ComplaintFilter) ([]*models.Complaint, error) {
	conditions := []string{}
	args := []interface{}{}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if filter.PublicOnly {
		conditions = append(conditions, "is_public = TRUE")
	}
	query := `SELECT ` + complaintColumns + ` FROM complaints`
	if len(conditions) > 0 {
		query += "\nWHERE " + strings.Join(conditions, " AND ")
	}
	query += "\nORDER BY created_at DESC, id"
	rows := []*models.Complaint{}
	if err := p.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	if err := p.attachVotes(ctx, rows...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (p *Postgres) UpdateStatus(ctx context.Context, id string, change StatusChange) (*models.Complaint, error) {
	sets := []string{"status = :to", "updated_at = :at"}
	args := map[string]interface{}{
		"id":   id,
		"from": change.From,
		"to":   change.To,
		"at":   change.At,
	}
	if change.Remark != nil {
		sets = append(sets, "remark = :remark", "remark_by = :remark_by", "remark_at = :at")
		args["remark"] = *change.Remark
		args["remark_by"] = change.RemarkBy
	}
	if change.ClaimFor != "" {
		sets = append(sets, "assigned_to = COALESCE(assigned_to, :claim_for)")
		args["claim_for"] = change.ClaimFor
	}
	query := "UPDATE complaints SET " + strings.Join(sets, ", ") + " WHERE id = :id AND status = :from"
	res, err := p.db.NamedExecContext(ctx, query, args)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	current, err := p.FindComplaint(ctx, id)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrStatusChanged
	}
	return current, nil
}

func (p *Postgres) DeleteComplaint(ctx context.Context, id, ownerID string) error {
	var (
		res sql.Result
		err error
	)
	if ownerID == "" {
		res, err = p.db.ExecContext(ctx, `DELETE FROM complaints WHERE id = $1`, id)
	} else {
		res, err = p.db.ExecContext(ctx, `DELETE FROM complaints WHERE id = $1 AND student_id = $2`, id, ownerID)
	}
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleVote locks the complaint row for the duration of the toggle so that
// membership is read fresh and the counters are recomputed from the vote rows
// in the same transaction.
func (p *Postgres) ToggleVote(ctx context.Context, id, userID string, direction models.VoteDirection) (models.VoteTally, error) {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.VoteTally{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var locked string
	err = tx.GetContext(ctx, &locked, `SELECT id FROM complaints WHERE id = $1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.VoteTally{}, ErrNotFound
	}
	if err != nil {
		return models.VoteTally{}, err
	}

	var current models.VoteDirection
	err = tx.GetContext(ctx, &current, `SELECT direction FROM complaint_votes WHERE complaint_id = $1 AND user_id = $2`, id, userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx, `
INSERT INTO complaint_votes (complaint_id, user_id, direction, created_at)
VALUES ($1, $2, $3, now())
`, id, userID, direction)
	case err != nil:
	case current == direction:
		_, err = tx.ExecContext(ctx, `DELETE FROM complaint_votes WHERE complaint_id = $1 AND user_id = $2`, id, userID)
	default:
		_, err = tx.ExecContext(ctx, `
UPDATE complaint_votes SET direction = $3, created_at = now()
WHERE complaint_id = $1 AND user_id = $2
`, id, userID, direction)
	}
	if err != nil {
		return models.VoteTally{}, err
	}

	var tally models.VoteTally
	if err := tx.GetContext(ctx, &tally, `
UPDATE complaints
SET upvote_count = (SELECT count(*) FROM complaint_votes WHERE complaint_id = $1 AND direction = 'up'),
    downvote_count = (SELECT count(*) FROM complaint_votes WHERE complaint_id = $1 AND direction = 'down')
WHERE id = $1
RETURNING upvote_count, downvote_count
`, id); err != nil {
		return models.VoteTally{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.VoteTally{}, err
	}
	return tally, nil
}

func (p *Postgres) attachVotes(ctx context.Context, complaints ...*models.Complaint) error {
	if len(complaints) == 0 {
		return nil
	}
	byID := make(map[string]*models.Complaint, len(complaints))
	ids := make([]string, 0, len(complaints))
	for _, c := range complaints {
		c.UpvotedBy = []string{}
		c.DownvotedBy = []string{}
		byID[c.ID] = c
		ids = append(ids, c.ID)
	}
	query, args, err := sqlx.In(`
SELECT complaint_id, user_id, direction
FROM complaint_votes
WHERE complaint_id IN (?)
ORDER BY created_at, user_id
`, ids)
	if err != nil {
		return err
	}
	rows := []struct {
		ComplaintID string               `db:"complaint_id"`
		UserID      string               `db:"user_id"`
		Direction   models.VoteDirection `db:"direction"`
	}{}
	if err := p.db.SelectContext(ctx, &rows, p.db.Rebind(query), args...); err != nil {
		return err
	}
	for _, row := range rows {
		c := byID[row.ComplaintID]
		if c == nil {
			continue
		}
		if row.Direction == models.VoteUp {
			c.UpvotedBy = append(c.UpvotedBy, row.UserID)
		} else {
			c.DownvotedBy = append(c.DownvotedBy, row.UserID)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
