package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crispai/crisp-backend/internal/model"
)

// ErrCandidateNotFound is returned when no candidate matches the lookup.
var ErrCandidateNotFound = errors.New("candidate not found")

const candidateColumns = `id, session_id, name, email, phone, designation, location, github, linkedin,
	 resume_text, pre_interview_chat, questions, total_score, summary, status, created_at, completed_at`

// CandidateRepository handles candidate data access.
type CandidateRepository struct {
	pool *pgxpool.Pool
}

// NewCandidateRepository creates a new CandidateRepository.
func NewCandidateRepository(pool *pgxpool.Pool) *CandidateRepository {
	return &CandidateRepository{pool: pool}
}

// Upsert writes a candidate keyed by email or session id. If a record already
// exists for either key the most recently created one is updated in place;
// otherwise a new row is inserted. The candidate's ID and CreatedAt are filled
// in on return.
func (r *CandidateRepository) Upsert(ctx context.Context, c *model.Candidate) error {
	existing, err := r.Find(ctx, c.Email, c.SessionID)
	if err != nil && !errors.Is(err, ErrCandidateNotFound) {
		return err
	}

	if existing != nil {
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
		_, err := r.pool.Exec(ctx,
			`UPDATE candidates
			 SET session_id = $1, name = $2, email = $3, phone = $4, designation = $5,
			     location = $6, github = $7, linkedin = $8, resume_text = $9,
			     pre_interview_chat = $10, questions = $11, total_score = $12,
			     summary = $13, status = $14, completed_at = $15
			 WHERE id = $16`,
			c.SessionID, c.Name, c.Email, c.Phone, c.Designation,
			c.Location, c.Github, c.Linkedin, c.ResumeText,
			c.PreInterviewChat, c.Questions, c.TotalScore,
			c.Summary, c.Status, c.CompletedAt, existing.ID,
		)
		return err
	}

	return r.pool.QueryRow(ctx,
		`INSERT INTO candidates
		   (session_id, name, email, phone, designation, location, github, linkedin,
		    resume_text, pre_interview_chat, questions, total_score, summary, status, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 RETURNING id, created_at`,
		c.SessionID, c.Name, c.Email, c.Phone, c.Designation, c.Location, c.Github, c.Linkedin,
		c.ResumeText, c.PreInterviewChat, c.Questions, c.TotalScore, c.Summary, c.Status, c.CompletedAt,
	).Scan(&c.ID, &c.CreatedAt)
}

// Find returns the most recently created candidate matching the email or the
// session id. Empty arguments never match.
func (r *CandidateRepository) Find(ctx context.Context, email, sessionID string) (*model.Candidate, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+candidateColumns+`
		 FROM candidates
		 WHERE (email = $1 AND $1 <> '') OR (session_id = $2 AND $2 <> '')
		 ORDER BY created_at DESC
		 LIMIT 1`, email, sessionID)
	return scanCandidate(row)
}

// GetByID retrieves a candidate by primary key.
func (r *CandidateRepository) GetByID(ctx context.Context, id string) (*model.Candidate, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id)
	return scanCandidate(row)
}

// List retrieves the review-screen listing, filtered by a case-insensitive
// search on name and email and ordered by the given column. Only a fixed set
// of sort columns is accepted; anything else falls back to total_score.
func (r *CandidateRepository) List(ctx context.Context, search, sortBy, order string) ([]model.CandidateListItem, error) {
	column := "total_score"
	switch sortBy {
	case "name", "total_score", "created_at", "status":
		column = sortBy
	}
	direction := "DESC"
	if strings.EqualFold(order, "asc") {
		direction = "ASC"
	}

	query := `SELECT id, name, email, phone, total_score, summary, status, created_at, completed_at, questions
	 FROM candidates`
	var args []any
	if search != "" {
		query += ` WHERE name ILIKE $1 OR email ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY ` + column + ` ` + direction

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.CandidateListItem, 0)
	for rows.Next() {
		var it model.CandidateListItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Email, &it.Phone,
			&it.TotalScore, &it.Summary, &it.Status, &it.CreatedAt, &it.CompletedAt, &it.Questions); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpdateChat replaces the stored pre-interview chat transcript on a
// candidate's most recent record, looked up by email.
func (r *CandidateRepository) UpdateChat(ctx context.Context, email string, chat []model.ChatMessage) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE candidates SET pre_interview_chat = $1
		 WHERE id = (SELECT id FROM candidates WHERE email = $2 ORDER BY created_at DESC LIMIT 1)`,
		chat, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCandidateNotFound
	}
	return nil
}

// UpdateTotalScore rewrites a stored total. Used by the read-path self-heal
// when a completed record carries a zero total but graded answers.
func (r *CandidateRepository) UpdateTotalScore(ctx context.Context, id string, totalScore int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE candidates SET total_score = $1 WHERE id = $2`, totalScore, id)
	return err
}

// Delete removes a candidate record.
func (r *CandidateRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCandidateNotFound
	}
	return nil
}

func scanCandidate(row pgx.Row) (*model.Candidate, error) {
	c := &model.Candidate{}
	err := row.Scan(
		&c.ID, &c.SessionID, &c.Name, &c.Email, &c.Phone, &c.Designation, &c.Location,
		&c.Github, &c.Linkedin, &c.ResumeText, &c.PreInterviewChat, &c.Questions,
		&c.TotalScore, &c.Summary, &c.Status, &c.CreatedAt, &c.CompletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCandidateNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
