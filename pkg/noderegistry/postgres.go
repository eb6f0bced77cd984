package noderegistry

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/jackc/pgx/v5"

	"github.com/dvpnlabs/access-gateway/pkg/addr"
)

const defaultTable = "pending_nodes"

// validIdentifier matches safe PostgreSQL identifiers (letters, digits, underscores).
var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidTableName reports whether name is a safe PostgreSQL identifier. Table
// names are interpolated into query text, so anything else is rejected.
func ValidTableName(name string) bool {
	return validIdentifier.MatchString(name)
}

// PostgresOption configures a PostgresStore.
type PostgresOption func(*PostgresStore)

// WithTableName sets the registry table name. Default: "pending_nodes".
func WithTableName(name string) PostgresOption {
	return func(s *PostgresStore) {
		s.tableName = name
	}
}

// PostgresStore implements Store against a PostgreSQL table populated by the
// external node-approval workflow. Each lookup opens its own connection and
// releases it on every exit path; no connection state is shared across
// requests.
type PostgresStore struct {
	connString string
	tableName  string
}

// NewPostgresStore creates a Postgres-backed registry store.
func NewPostgresStore(connString string, opts ...PostgresOption) (*PostgresStore, error) {
	s := &PostgresStore{
		connString: connString,
		tableName:  defaultTable,
	}
	for _, opt := range opts {
		opt(s)
	}
	if !ValidTableName(s.tableName) {
		return nil, fmt.Errorf("invalid table name %q: must match [a-zA-Z_][a-zA-Z0-9_]*", s.tableName)
	}
	return s, nil
}

// FindApproved looks up the approved record for address. The stored address
// column is matched case-insensitively against the already-lowercased input;
// duplicate keys resolve deterministically to the first row in address order.
func (s *PostgresStore) FindApproved(ctx context.Context, address addr.Normalized) (NodeDetails, bool, error) {
	conn, err := pgx.Connect(ctx, s.connString)
	if err != nil {
		return NodeDetails{}, false, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(ctx)

	query := fmt.Sprintf(`
		SELECT friendly_name, country
		FROM %s
		WHERE LOWER(address) = $1 AND status = $2
		ORDER BY address
		LIMIT 1
	`, s.tableName)

	var details NodeDetails
	err = conn.QueryRow(ctx, query, address.String(), StatusApproved).
		Scan(&details.FriendlyName, &details.Country)
	if errors.Is(err, pgx.ErrNoRows) {
		return NodeDetails{}, false, nil
	}
	if err != nil {
		return NodeDetails{}, false, fmt.Errorf("query node: %w", err)
	}
	return details, true, nil
}

// EnsureSchema creates the registry table and lookup index if absent. The
// approval workflow normally owns the table; this exists for fresh
// deployments and local development.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, s.connString)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, s.schemaSQL()); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

func (s *PostgresStore) schemaSQL() string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			address       TEXT NOT NULL,
			friendly_name TEXT NOT NULL DEFAULT '',
			country       TEXT NOT NULL DEFAULT '',
			status        TEXT NOT NULL DEFAULT 'pending'
		);
		CREATE INDEX IF NOT EXISTS idx_%s_address_status
			ON %s (LOWER(address), status);
	`, s.tableName, s.tableName, s.tableName)
}
