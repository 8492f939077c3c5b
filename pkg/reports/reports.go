package reports

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/segmentio/ksuid"
)

var ErrNotFound = errors.New("report not found")

// Report statuses, in the order staff move them through.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
)

// Community vote kinds.
const (
	VoteRelevant    = "relevant"
	VoteNotRelevant = "not_relevant"
)

func ValidStatus(s string) bool {
	return s == StatusOpen || s == StatusInProgress || s == StatusResolved
}

func ValidVote(v string) bool {
	return v == VoteRelevant || v == VoteNotRelevant
}

// Report is one citizen-submitted issue. Coordinates come from the geocoding
// pipeline (or the device) at submission time; this package never resolves
// addresses itself.
type Report struct {
	ID          string  `db:"id" json:"id"`
	Type        string  `db:"type" json:"type"`
	Title       string  `db:"title" json:"title"`
	Description string  `db:"description" json:"description"`
	Address     string  `db:"address" json:"address"`
	Severity    string  `db:"severity" json:"severity"`
	Lat         float64 `db:"lat" json:"lat"`
	Lng         float64 `db:"lng" json:"lng"`

	PhotoURL      *string `db:"photo_url" json:"photoUrl,omitempty"`
	ReporterName  *string `db:"reporter_name" json:"reporterName,omitempty"`
	ReporterEmail *string `db:"reporter_email" json:"reporterEmail,omitempty"`
	ReporterPhone *string `db:"reporter_phone" json:"reporterPhone,omitempty"`

	Status           string    `db:"status" json:"status"`
	RelevantVotes    int       `db:"relevant_votes" json:"relevantVotes"`
	NotRelevantVotes int       `db:"not_relevant_votes" json:"notRelevantVotes"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time `db:"updated_at" json:"updatedAt"`
}

// Filter narrows List results. Empty or "all" means no constraint.
type Filter struct {
	Type string
	Status   string
}

type Repository interface {
	List(ctx context.Context, f Filter) ([]Report, error)
	Create(ctx context.Context, r *Report) error
	Get(ctx context.Context, id string) (*Report, error)
	UpdateStatus(ctx context.Context, id, status string) (*Report, error)
	Delete(ctx context.Context, id string) error
	AddVote(ctx context.Context, id, kind string) (*Report, error)
}

type pgRepo struct {
	db *sqlx.DB
}

var _ Repository = (*pgRepo)(nil)

func NewPgRepository(db *sql.DB) *pgRepo {
	return &pgRepo{db: sqlx.NewDb(db, "postgres")}
}

const reportColumns = `id, type, title, description, address, severity, lat, lng,
photo_url, reporter_name, reporter_email, reporter_phone,
status, relevant_votes, not_relevant_votes, created_at, updated_at`

func (r *pgRepo) List(ctx context.Context, f Filter) ([]Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports`

	var (
		clauses []string
		args    []any
	)

	if f.Type != "" && f.Type != "all" {
		args = append(args, f.Type)
		clauses = append(clauses, fmt.Sprintf("type = $%d", len(args)))
	}

	if f.Status != "" && f.Status != "all" {
		args = append(args, f.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}

	for i, c := range clauses {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}

	query += " ORDER BY created_at DESC"

	var out []Report
	if err := r.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}

	return out, nil
}

func (r *pgRepo) Create(ctx context.Context, report *Report) error {
	report.ID = ksuid.New().String()
	report.Status = StatusOpen
	now := time.Now().UTC()
	report.CreatedAt = now
	report.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reports (id, type, title, description, address, severity, lat, lng,
			photo_url, reporter_name, reporter_email, reporter_phone,
			status, relevant_votes, not_relevant_votes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 0, 0, $14, $15)`,
		report.ID, report.Type, report.Title, report.Description, report.Address,
		report.Severity, report.Lat, report.Lng,
		report.PhotoURL, report.ReporterName, report.ReporterEmail, report.ReporterPhone,
		report.Status, report.CreatedAt, report.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}

	return nil
}

func (r *pgRepo) Get(ctx context.Context, id string) (*Report, error) {
	var report Report

	err := r.db.GetContext(ctx, &report, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("getting report: %w", err)
	}

	return &report, nil
}

func (r *pgRepo) UpdateStatus(ctx context.Context, id, status string) (*Report, error) {
	var report Report

	err := r.db.GetContext(ctx, &report, `
		UPDATE reports SET status = $2, updated_at = $3 WHERE id = $1
		RETURNING `+reportColumns,
		id, status, time.Now().UTC(),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("updating report status: %w", err)
	}

	return &report, nil
}

func (r *pgRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting report: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *pgRepo) AddVote(ctx context.Context, id, kind string) (*Report, error) {
	column := "relevant_votes"
	if kind == VoteNotRelevant {
		column = "not_relevant_votes"
	}

	var report Report

	// Single-statement increment keeps concurrent votes from losing updates.
	err := r.db.GetContext(ctx, &report, `
		UPDATE reports SET `+column+` = `+column+` + 1, updated_at = $2 WHERE id = $1
		RETURNING `+reportColumns,
		id, time.Now().UTC(),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("recording vote: %w", err)
	}

	return &report, nil
}
