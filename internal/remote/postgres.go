package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tpbkitchens/maintsync/internal/portal"
)

// Querier is the subset of pgxpool.Pool the store needs; pgxmock satisfies
// it in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

// PostgresStore implements Store directly against Postgres for deployments
// that skip the REST layer and talk to the database itself.
type PostgresStore struct {
	Pool Querier
}

// NewPostgresStore connects a pgx pool and pings it to fail fast.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{Pool: pool}, nil
}

// FindJobID selects the parent row id by job number.
func (p *PostgresStore) FindJobID(ctx context.Context, jobNumber string) (string, bool, error) {
	var id string
	err := p.Pool.QueryRow(ctx,
		`SELECT id FROM maintenance_jobs WHERE job_number = $1`, jobNumber).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select job by number: %w", err)
	}
	return id, true, nil
}

// InsertJob creates a parent row and returns its generated id.
func (p *PostgresStore) InsertJob(ctx context.Context, rec portal.JobRecord) (string, error) {
	var id string
	err := p.Pool.QueryRow(ctx,
		`INSERT INTO maintenance_jobs (job_number, client_name, mobile, email, site_address, suburb, processed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		rec.JobNumber, rec.ClientName, rec.Mobile, rec.Email,
		rec.SiteAddress, rec.Suburb, rec.ExtractedAt.UTC(),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert job: %w", err)
	}
	return id, nil
}

// UpdateJob overwrites the scalar fields of an existing parent row.
func (p *PostgresStore) UpdateJob(ctx context.Context, id string, rec portal.JobRecord) error {
	_, err := p.Pool.Exec(ctx,
		`UPDATE maintenance_jobs
		 SET client_name = $1, mobile = $2, email = $3, site_address = $4, suburb = $5, processed_at = $6
		 WHERE id = $7`,
		rec.ClientName, rec.Mobile, rec.Email, rec.SiteAddress, rec.Suburb,
		rec.ExtractedAt.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	return nil
}

// DeleteItems removes all child items of the parent row.
func (p *PostgresStore) DeleteItems(ctx context.Context, jobID string) error {
	_, err := p.Pool.Exec(ctx,
		`DELETE FROM maintenance_items WHERE maintenance_job_id = $1`, jobID)
	if err != nil {
		return fmt.Errorf("delete items: %w", err)
	}
	return nil
}

// InsertItems creates fresh child rows. One statement per item keeps
// parameter handling simple; the pipeline visits a single job at a time.
func (p *PostgresStore) InsertItems(ctx context.Context, jobID string, items []portal.LineItem) error {
	for _, it := range items {
		_, err := p.Pool.Exec(ctx,
			`INSERT INTO maintenance_items (maintenance_job_id, item_name, reason, date_created, delivery_info, delivery_date, is_delivered)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			jobID, it.ItemName, it.Reason, it.DateCreated, it.DeliveryInfo, it.DeliveryDate, it.Delivered,
		)
		if err != nil {
			return fmt.Errorf("insert item %d: %w", it.Sequence, err)
		}
	}
	return nil
}

// Close releases the connection pool.
func (p *PostgresStore) Close() error {
	p.Pool.Close()
	return nil
}
