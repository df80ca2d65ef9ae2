package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Open opens the database at path, enables foreign keys and brings the
// schema up to date. Parent directories are created as needed.
//
// Transactions begin IMMEDIATE so concurrent writers queue on the busy
// timeout instead of failing on a lock upgrade. File databases run in WAL
// mode so readers never wait on a writer.
func Open(path string) (*sql.DB, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	database, err := sql.Open("sqlite3", path+dsnParams(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if path == MemoryPath {
		database.SetMaxOpenConns(1)
	}

	if err := database.Ping(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := InitSchema(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return database, nil
}

// dsnParams returns the connection parameters for path.
func dsnParams(path string) string {
	params := "?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
	if path != MemoryPath {
		params += "&_journal_mode=WAL"
	}
	return params
}
