// ctesh prints and runs canned CTE statements against a database.
//
// Configuration (env vars, overridden by flags):
//
//	CTESH_ENGINE=postgres|mysql|sqlite  (default sqlite)
//	DATABASE_URL=<dsn>                   (sqlite defaults to a seeded :memory:)
//
// Usage:
//
//	go run ./cmd/ctesh list
//	go run ./cmd/ctesh sql region-tree --engine postgres --params
//	go run ./cmd/ctesh run region-totals
//	go run ./cmd/ctesh shell
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}
