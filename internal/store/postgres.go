// Package store implements the workflow persistence contract on PostgreSQL.
//
// Each method is a single statement, so every lifecycle operation commits as
// one unit. Status-guarded updates (MarkOfferExpired) re-check the current
// state at write time instead of trusting the state observed at read time.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobsearch/board-service/internal/workflow"
)

// Postgres is the pgx-backed workflow.Store.
type Postgres struct {
	pool *pgxpool.Pool
}

// New returns a Postgres store over pool.
func New(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const offerColumns = `id, title, description, company, location, requirements,
	salary_min, salary_max, status, moderation_comment, owner_id, posted_at, deadline`

func scanOffer(row pgx.Row, o *workflow.Offer) error {
	var status string
	err := row.Scan(
		&o.ID, &o.Title, &o.Description, &o.Company, &o.Location, &o.Requirements,
		&o.SalaryMin, &o.SalaryMax, &status, &o.ModerationComment,
		&o.OwnerID, &o.PostedAt, &o.Deadline,
	)
	if err != nil {
		return err
	}
	o.Status = workflow.OfferStatus(status)
	return nil
}

// ─── Offers ──────────────────────────────────────────────────────────────────

// GetOffer returns an offer by ID, or workflow.ErrNotFound.
func (p *Postgres) GetOffer(ctx context.Context, id string) (*workflow.Offer, error) {
	var o workflow.Offer
	row := p.pool.QueryRow(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE id = $1`, id)
	if err := scanOffer(row, &o); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, workflow.ErrNotFound
		}
		return nil, fmt.Errorf("getOffer: %w", err)
	}
	return &o, nil
}

// CreateOffer inserts a new offer and fills in the generated ID.
func (p *Postgres) CreateOffer(ctx context.Context, o *workflow.Offer) error {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO offers (title, description, company, location, requirements,
		                     salary_min, salary_max, status, moderation_comment,
		                     owner_id, posted_at, deadline)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8::offer_status, $9, $10, $11, $12)
		 RETURNING id`,
		o.Title, o.Description, o.Company, o.Location, o.Requirements,
		o.SalaryMin, o.SalaryMax, string(o.Status), o.ModerationComment,
		o.OwnerID, o.PostedAt, o.Deadline,
	).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("createOffer: %w", err)
	}
	return nil
}

// UpdateOffer writes every mutable offer field.
func (p *Postgres) UpdateOffer(ctx context.Context, o *workflow.Offer) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE offers
		 SET title = $1, description = $2, company = $3, location = $4,
		     requirements = $5, salary_min = $6, salary_max = $7,
		     status = $8::offer_status, moderation_comment = $9,
		     posted_at = $10, deadline = $11
		 WHERE id = $12`,
		o.Title, o.Description, o.Company, o.Location,
		o.Requirements, o.SalaryMin, o.SalaryMax,
		string(o.Status), o.ModerationComment,
		o.PostedAt, o.Deadline, o.ID,
	)
	if err != nil {
		return fmt.Errorf("updateOffer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return workflow.ErrNotFound
	}
	return nil
}

// DeleteOffer removes an offer; its applications cascade via the
// applications.offer_id foreign key.
func (p *Postgres) DeleteOffer(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM offers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleteOffer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return workflow.ErrNotFound
	}
	return nil
}

// ListOffersByOwner returns ownerID's offers, newest first.
func (p *Postgres) ListOffersByOwner(ctx context.Context, ownerID string) ([]workflow.Offer, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+offerColumns+` FROM offers WHERE owner_id = $1 ORDER BY posted_at DESC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("listOffersByOwner query: %w", err)
	}
	defer rows.Close()
	return collectOffers(rows)
}

// ListDueOffers returns PUBLISHED offers whose deadline has passed.
func (p *Postgres) ListDueOffers(ctx context.Context, now time.Time) ([]workflow.Offer, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+offerColumns+` FROM offers
		 WHERE status = 'PUBLISHED' AND deadline < $1`,
		now)
	if err != nil {
		return nil, fmt.Errorf("listDueOffers query: %w", err)
	}
	defer rows.Close()
	return collectOffers(rows)
}

// MarkOfferExpired performs the guarded expiry write. The WHERE clause
// re-checks both preconditions, so losing a race against a live transition
// silently affects zero rows.
func (p *Postgres) MarkOfferExpired(ctx context.Context, id string, now time.Time) (bool, error) {
	tag, err := p.pool.Exec(ctx,
		`UPDATE offers SET status = 'EXPIRED'
		 WHERE id = $1 AND status = 'PUBLISHED' AND deadline < $2`,
		id, now)
	if err != nil {
		return false, fmt.Errorf("markOfferExpired: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func collectOffers(rows pgx.Rows) ([]workflow.Offer, error) {
	offers := make([]workflow.Offer, 0)
	for rows.Next() {
		var o workflow.Offer
		if err := scanOffer(rows, &o); err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

// ─── Applications ────────────────────────────────────────────────────────────

const applicationColumns = `a.id, a.offer_id, a.applicant_id, a.status,
	a.applied_at, a.status_last_updated, a.employer_phone, a.rejection_reason`

func scanApplication(row pgx.Row, a *workflow.Application, withOffer bool) error {
	var status string
	dest := []any{
		&a.ID, &a.OfferID, &a.ApplicantID, &status,
		&a.AppliedAt, &a.StatusLastUpdated, &a.EmployerPhone, &a.RejectionReason,
	}
	var o workflow.Offer
	var offerStatus string
	if withOffer {
		dest = append(dest,
			&o.ID, &o.Title, &o.Description, &o.Company, &o.Location, &o.Requirements,
			&o.SalaryMin, &o.SalaryMax, &offerStatus, &o.ModerationComment,
			&o.OwnerID, &o.PostedAt, &o.Deadline,
		)
	}
	if err := row.Scan(dest...); err != nil {
		return err
	}
	a.Status = workflow.ApplicationStatus(status)
	if withOffer {
		o.Status = workflow.OfferStatus(offerStatus)
		a.Offer = &o
	}
	return nil
}

const offerJoinColumns = `o.id, o.title, o.description, o.company, o.location,
	o.requirements, o.salary_min, o.salary_max, o.status, o.moderation_comment,
	o.owner_id, o.posted_at, o.deadline`

// GetApplication loads an application together with its offer, which the
// lifecycle needs for ownership checks and notification text.
func (p *Postgres) GetApplication(ctx context.Context, id string) (*workflow.Application, error) {
	var a workflow.Application
	row := p.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+`, `+offerJoinColumns+`
		 FROM applications a
		 JOIN offers o ON o.id = a.offer_id
		 WHERE a.id = $1`, id)
	if err := scanApplication(row, &a, true); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, workflow.ErrNotFound
		}
		return nil, fmt.Errorf("getApplication: %w", err)
	}
	return &a, nil
}

// CreateApplication inserts if absent. The UNIQUE (offer_id, applicant_id)
// constraint plus ON CONFLICT DO NOTHING makes a double-submit leave exactly
// one row; the second insert reports created = false.
func (p *Postgres) CreateApplication(ctx context.Context, a *workflow.Application) (bool, error) {
	err := p.pool.QueryRow(ctx,
		`INSERT INTO applications (offer_id, applicant_id, status, applied_at)
		 VALUES ($1, $2, $3::application_status, $4)
		 ON CONFLICT (offer_id, applicant_id) DO NOTHING
		 RETURNING id`,
		a.OfferID, a.ApplicantID, string(a.Status), a.AppliedAt,
	).Scan(&a.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("createApplication: %w", err)
	}
	return true, nil
}

// UpdateApplication writes the decision fields.
func (p *Postgres) UpdateApplication(ctx context.Context, a *workflow.Application) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE applications
		 SET status = $1::application_status, status_last_updated = $2,
		     employer_phone = $3, rejection_reason = $4
		 WHERE id = $5`,
		string(a.Status), a.StatusLastUpdated,
		a.EmployerPhone, a.RejectionReason, a.ID,
	)
	if err != nil {
		return fmt.Errorf("updateApplication: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return workflow.ErrNotFound
	}
	return nil
}

// HasApplied reports whether an application row exists for the pair.
func (p *Postgres) HasApplied(ctx context.Context, offerID, applicantID string) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM applications WHERE offer_id = $1 AND applicant_id = $2
		 )`,
		offerID, applicantID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("hasApplied: %w", err)
	}
	return exists, nil
}

// ListApplicationsByApplicant returns the applicant's applications with
// their offers, newest first.
func (p *Postgres) ListApplicationsByApplicant(ctx context.Context, applicantID string) ([]workflow.Application, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+applicationColumns+`, `+offerJoinColumns+`
		 FROM applications a
		 JOIN offers o ON o.id = a.offer_id
		 WHERE a.applicant_id = $1
		 ORDER BY a.applied_at DESC`,
		applicantID)
	if err != nil {
		return nil, fmt.Errorf("listApplicationsByApplicant query: %w", err)
	}
	defer rows.Close()
	return collectApplications(rows, true)
}

// ListApplicationsForOffer returns an offer's applications, newest first.
func (p *Postgres) ListApplicationsForOffer(ctx context.Context, offerID string) ([]workflow.Application, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+applicationColumns+`
		 FROM applications a
		 WHERE a.offer_id = $1
		 ORDER BY a.applied_at DESC`,
		offerID)
	if err != nil {
		return nil, fmt.Errorf("listApplicationsForOffer query: %w", err)
	}
	defer rows.Close()
	return collectApplications(rows, false)
}

func collectApplications(rows pgx.Rows, withOffer bool) ([]workflow.Application, error) {
	apps := make([]workflow.Application, 0)
	for rows.Next() {
		var a workflow.Application
		if err := scanApplication(rows, &a, withOffer); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}
