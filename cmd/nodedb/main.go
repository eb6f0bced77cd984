// nodedb dumps the node registry table for inspection.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dvpnlabs/access-gateway/pkg/noderegistry"
)

func main() {
	dbURL := flag.String("db", os.Getenv("DATABASE_URL"), "Postgres connection string")
	table := flag.String("table", "pending_nodes", "Registry table name")
	flag.Parse()

	if *dbURL == "" {
		fmt.Fprintln(os.Stderr, "nodedb: -db or DATABASE_URL is required")
		os.Exit(2)
	}
	if !noderegistry.ValidTableName(*table) {
		fmt.Fprintf(os.Stderr, "nodedb: invalid table name %q\n", *table)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, *dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nodedb: connect: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	query := fmt.Sprintf(
		`SELECT address, friendly_name, country, status FROM %s ORDER BY address`, *table)
	rows, err := conn.Query(ctx, query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nodedb: querying %s: %v\n", *table, err)
		os.Exit(1)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var address, friendlyName, country, status string
		if err := rows.Scan(&address, &friendlyName, &country, &status); err != nil {
			fmt.Fprintf(os.Stderr, "nodedb: scan: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%-44s %-24s %-8s %s\n", address, friendlyName, country, status)
		count++
	}
	if err := rows.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "nodedb: reading rows: %v\n", err)
		os.Exit(1)
	}

	if count == 0 {
		fmt.Printf("no rows in %s\n", *table)
	}
}
