package noderegistry

import (
	"strings"
	"testing"
)

func TestValidTableName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"pending_nodes", true},
		{"approved_nodes2", true},
		{"_nodes", true},
		{"", false},
		{"1nodes", false},
		{"nodes; DROP TABLE users", false},
		{`"nodes"`, false},
		{"nodes-archive", false},
	}

	for _, tt := range tests {
		if got := ValidTableName(tt.name); got != tt.valid {
			t.Errorf("ValidTableName(%q) = %v, want %v", tt.name, got, tt.valid)
		}
	}
}

func TestNewPostgresStoreTableValidation(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		wantErr bool
	}{
		{"default", "", false},
		{"custom valid", "approved_nodes", false},
		{"leading underscore", "_nodes", false},
		{"injection attempt", "nodes; DROP TABLE users", true},
		{"leading digit", "1nodes", true},
		{"quoted", `"nodes"`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := []PostgresOption{}
			if tt.table != "" {
				opts = append(opts, WithTableName(tt.table))
			}
			_, err := NewPostgresStore("postgres://localhost/dvpn", opts...)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewPostgresStore(table=%q) error = %v, wantErr %v", tt.table, err, tt.wantErr)
			}
		})
	}
}

func TestNewPostgresStoreDefaultTable(t *testing.T) {
	s, err := NewPostgresStore("postgres://localhost/dvpn")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.tableName != "pending_nodes" {
		t.Errorf("default table = %q, want pending_nodes", s.tableName)
	}
}

func TestSchemaSQLInterpolation(t *testing.T) {
	s, err := NewPostgresStore("postgres://localhost/dvpn", WithTableName("approved_nodes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sql := s.schemaSQL()
	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS approved_nodes",
		"CREATE INDEX IF NOT EXISTS idx_approved_nodes_address_status",
		"ON approved_nodes (LOWER(address), status)",
		"friendly_name TEXT NOT NULL",
		"country       TEXT NOT NULL",
		"status        TEXT NOT NULL",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("schema SQL missing %q:\n%s", want, sql)
		}
	}
}
