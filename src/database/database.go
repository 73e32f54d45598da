package database

import (
	"database/sql"
	stdlog "log"

	"github.com/Miseong-debug/Stock-Portfolio/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	// Single writer; also keeps ':memory:' databases on one connection.
	db.SetMaxOpenConns(1)
	DB = db

	if logger.L != nil {
		logger.L.Info("Checking database migrations", "databasePath", databasePath)
	} else {
		stdlog.Println("Checking database migrations for:", databasePath)
	}
	migrateHoldingsTable()

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		token TEXT NOT NULL,
		refresh_token TEXT NOT NULL,
		user_agent TEXT,
		client_ip TEXT,
		is_blocked BOOLEAN DEFAULT FALSE,
		expires_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS holdings (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		ticker TEXT NOT NULL,
		company_name TEXT,
		quantity REAL NOT NULL,
		buy_price REAL NOT NULL,
		buy_exchange_rate REAL NOT NULL,
		buy_date TEXT NOT NULL,
		memo TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		ticker TEXT NOT NULL,
		company_name TEXT,
		tx_type TEXT NOT NULL CHECK(tx_type IN ('buy','sell')),
		quantity REAL NOT NULL,
		price REAL NOT NULL,
		exchange_rate REAL NOT NULL,
		tx_date TEXT NOT NULL,
		memo TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS dividends (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		ticker TEXT NOT NULL,
		company_name TEXT,
		amount REAL NOT NULL,
		exchange_rate REAL,
		received_date TEXT NOT NULL,
		memo TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS app_state (
		user_id INTEGER NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY(user_id, key),
		FOREIGN KEY(user_id) REFERENCES users(id)
	);

	CREATE INDEX IF NOT EXISTS idx_holdings_user ON holdings(user_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions(user_id);
	CREATE INDEX IF NOT EXISTS idx_dividends_user ON dividends(user_id);
	`

	_, err = DB.Exec(createTableStatement)
	if err != nil {
		if logger.L != nil {
			logger.L.Error("failed to create tables", "error", err)
		}
		stdlog.Fatalf("failed to create tables: %v", err)
	}
	if logger.L != nil {
		logger.L.Info("Database tables ensured/created.")
	} else {
		stdlog.Println("Database tables ensured/created.")
	}
}

// migrateHoldingsTable adds columns introduced after the first release to an
// existing holdings table. New installs get everything from the CREATE TABLE.
func migrateHoldingsTable() {
	var tableName string
	err := DB.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='holdings'").Scan(&tableName)
	if err != nil {
		if err == sql.ErrNoRows {
			if logger.L != nil {
				logger.L.Info("'holdings' table does not exist, no migration needed as table will be created.")
			} else {
				stdlog.Println("'holdings' table does not exist, no migration needed as table will be created.")
			}
			return
		}
		if logger.L != nil {
			logger.L.Error("Error checking for 'holdings' table", "error", err)
		} else {
			stdlog.Printf("Error checking for 'holdings' table: %v", err)
		}
		return
	}

	rows, err := DB.Query("PRAGMA table_info(holdings)")
	if err != nil {
		if logger.L != nil {
			logger.L.Error("Error querying table schema for 'holdings'", "error", err)
		} else {
			stdlog.Printf("Error querying table schema for 'holdings': %v", err)
		}
		return
	}
	defer rows.Close()

	columnExists := make(map[string]bool)
	for rows.Next() {
		var cid, pk int
		var name, dataType string
		var notnullVal int
		var dfltValue interface{}

		if err := rows.Scan(&cid, &name, &dataType, &notnullVal, &dfltValue, &pk); err != nil {
			if logger.L != nil {
				logger.L.Error("Error scanning column info for 'holdings'", "error", err)
			} else {
				stdlog.Printf("Error scanning column info for 'holdings': %v", err)
			}
			return
		}
		columnExists[name] = true
	}
	if err = rows.Err(); err != nil {
		if logger.L != nil {
			logger.L.Error("Error iterating over column info for 'holdings'", "error", err)
		} else {
			stdlog.Printf("Error iterating over column info for 'holdings': %v", err)
		}
		return
	}

	if _, ok := columnExists["company_name"]; !ok {
		_, err := DB.Exec("ALTER TABLE holdings ADD COLUMN company_name TEXT")
		if err != nil {
			logger.L.Error("Error adding 'company_name' column to 'holdings' table", "error", err)
		} else {
			logger.L.Info("Added 'company_name' column to 'holdings' table")
		}
	}
	if _, ok := columnExists["memo"]; !ok {
		_, err := DB.Exec("ALTER TABLE holdings ADD COLUMN memo TEXT")
		if err != nil {
			logger.L.Error("Error adding 'memo' column to 'holdings' table", "error", err)
		} else {
			logger.L.Info("Added 'memo' column to 'holdings' table")
		}
	}
	if _, ok := columnExists["updated_at"]; !ok {
		_, err := DB.Exec("ALTER TABLE holdings ADD COLUMN updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP")
		if err != nil {
			logger.L.Error("Error adding 'updated_at' column to 'holdings' table", "error", err)
		} else {
			logger.L.Info("Added 'updated_at' column to 'holdings' table")
		}
	}
}
