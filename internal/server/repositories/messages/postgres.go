package messages

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/oklog/ulid/v2"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/groupfeed/internal/server/migrations"
	"github.com/dmitrijs2005/groupfeed/internal/server/models"
)

// PostgresRepository implements Repository on PostgreSQL via the pgx stdlib
// driver.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

// newEntryID generates the feed key for a new message. ULIDs carry monotonic
// random entropy on top of their time component, so ids from concurrent
// writers stay unique and lexicographic id order roughly follows submission
// order — which is also the reconciler's tie-break.
var newEntryID = func() string {
	return ulid.Make().String()
}

func (r *PostgresRepository) Insert(ctx context.Context, room, author string, text, imageRef *string) (string, error) {
	id := newEntryID()

	// Single statement: id and timestamp are assigned atomically at commit,
	// so a failed append leaves no partial entry behind.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (id, room, author, text, image_ref, ts)
		VALUES ($1, $2, $3, $4, $5, (extract(epoch from now()) * 1000)::bigint)
	`, id, room, author, text, imageRef)
	if err != nil {
		return "", fmt.Errorf("insert message: %w", err)
	}

	return id, nil
}

func (r *PostgresRepository) Snapshot(ctx context.Context, room string) (models.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, room, author, text, image_ref, ts
		FROM messages
		WHERE room = $1
	`, room)
	if err != nil {
		return nil, fmt.Errorf("select snapshot: %w", err)
	}
	defer rows.Close()

	var all []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.Room, &m.Author, &m.Text, &m.ImageRef, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		all = append(all, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot: %w", err)
	}

	return models.SnapshotOf(all), nil
}
