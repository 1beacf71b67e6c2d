// Command migrate applies the SQL files in migrations/ to the database
// named by DATABASE_URL. Files run in lexical order, each inside its own
// transaction, so a failing migration leaves earlier ones applied and the
// failing one fully rolled back.
package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/lib/pq"
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}

	dir := "migrations"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("ping: %v", err)
	}

	files, err := sqlFiles(dir)
	if err != nil {
		log.Fatalf("list migrations: %v", err)
	}
	if len(files) == 0 {
		log.Fatalf("no .sql files in %s", dir)
	}

	failed := 0
	for _, f := range files {
		if err := applyOne(db, filepath.Join(dir, f)); err != nil {
			log.Printf("%s: %v", f, err)
			failed++
		} else {
			log.Printf("%s: applied", f)
		}
	}
	if failed > 0 {
		log.Fatalf("%d of %d migrations failed", failed, len(files))
	}
	log.Printf("all %d migrations applied", len(files))
}

func sqlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func applyOne(db *sql.DB, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if _, err := tx.Exec(string(data)); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
