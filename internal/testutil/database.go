package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB expects a MySQL instance at localhost:3306 with a database
// named 'vendly_test'; tests are skipped when it is not reachable.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := "root:@tcp(localhost:3306)/vendly_test?parseTime=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{
		"conversation_messages", "conversations", "outbox_events",
		"notifications", "proposals", "orders", "services",
	}
	for _, table := range tables {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// SetupTestTables creates the schema used by integration tests.
func SetupTestTables(t *testing.T, db *sql.DB) {
	statements := []struct {
		name  string
		query string
	}{
		{"services", `
			CREATE TABLE IF NOT EXISTS services (
				id CHAR(36) NOT NULL PRIMARY KEY,
				title VARCHAR(255) NOT NULL,
				price DECIMAL(12,2) NOT NULL DEFAULT 0.00,
				delivery_time VARCHAR(100) NOT NULL DEFAULT '',
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`},
		{"orders", `
			CREATE TABLE IF NOT EXISTS orders (
				id CHAR(36) NOT NULL PRIMARY KEY,
				client_id CHAR(36) NOT NULL,
				vendor_id CHAR(36) NOT NULL,
				service_id CHAR(36) NOT NULL,
				service_name VARCHAR(255) NOT NULL DEFAULT '',
				status VARCHAR(40) NOT NULL DEFAULT 'new',
				total_amount DECIMAL(12,2) NOT NULL DEFAULT 0.00,
				advance_amount DECIMAL(12,2) NULL,
				remaining_amount DECIMAL(12,2) NULL,
				paid_advance TINYINT(1) NOT NULL DEFAULT 0,
				paid_remaining TINYINT(1) NOT NULL DEFAULT 0,
				payment_stage VARCHAR(20) NOT NULL DEFAULT 'PENDING_ADVANCE',
				payment_status VARCHAR(20) NULL,
				proposal_id CHAR(36) NULL,
				delivery_message TEXT NULL,
				delivery_file_url VARCHAR(512) NULL,
				created_at DATETIME(6) NOT NULL,
				updated_at DATETIME(6) NOT NULL
			)`},
		{"proposals", `
			CREATE TABLE IF NOT EXISTS proposals (
				id CHAR(36) NOT NULL PRIMARY KEY,
				vendor_id CHAR(36) NOT NULL,
				client_id CHAR(36) NOT NULL,
				service_id CHAR(36) NOT NULL,
				service_name VARCHAR(255) NOT NULL DEFAULT '',
				conversation_id CHAR(36) NOT NULL,
				order_id CHAR(36) NULL,
				title VARCHAR(255) NOT NULL,
				description TEXT,
				price DECIMAL(12,2) NOT NULL,
				delivery_time VARCHAR(100) NOT NULL,
				created_at DATETIME(6) NOT NULL
			)`},
		{"notifications", `
			CREATE TABLE IF NOT EXISTS notifications (
				id CHAR(36) NOT NULL PRIMARY KEY,
				user_id CHAR(36) NOT NULL,
				type VARCHAR(40) NOT NULL,
				title VARCHAR(255) NOT NULL,
				message TEXT,
				link VARCHAR(512) NOT NULL DEFAULT '',
				order_id CHAR(36) NULL,
				conversation_id CHAR(36) NULL,
				proposal_id CHAR(36) NULL,
				message_id CHAR(36) NULL,
				is_read TINYINT(1) NOT NULL DEFAULT 0,
				created_at DATETIME(6) NOT NULL
			)`},
		{"outbox_events", `
			CREATE TABLE IF NOT EXISTS outbox_events (
				id CHAR(36) NOT NULL PRIMARY KEY,
				order_id CHAR(36) NULL,
				event_type VARCHAR(60) NOT NULL,
				payload JSON NOT NULL,
				status VARCHAR(20) NOT NULL DEFAULT 'pending',
				attempts INT NOT NULL DEFAULT 0,
				created_at DATETIME(6) NOT NULL,
				processed_at DATETIME(6) NULL
			)`},
		{"conversations", `
			CREATE TABLE IF NOT EXISTS conversations (
				id CHAR(36) NOT NULL PRIMARY KEY,
				created_at DATETIME(6) NOT NULL
			)`},
		{"conversation_messages", `
			CREATE TABLE IF NOT EXISTS conversation_messages (
				id CHAR(36) NOT NULL PRIMARY KEY,
				conversation_id CHAR(36) NOT NULL,
				sender_id CHAR(36) NOT NULL,
				content TEXT NOT NULL,
				metadata JSON NULL,
				created_at DATETIME(6) NOT NULL
			)`},
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt.query); err != nil {
			t.Logf("failed to create table %s: %v", stmt.name, err)
		}
	}
}
