package db

import (
	"database/sql"

	"github.com/colearn-app/colearn-api/utils"
	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	*sql.DB
}

func InitDB(dbPath string) (*DB, error) {
	utils.LogStartup("Initializing database at: %s", dbPath)

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		utils.LogError("Failed to open database: %v", err)
		return nil, err
	}

	if err := db.Ping(); err != nil {
		utils.LogError("Failed to ping database: %v", err)
		return nil, err
	}

	utils.LogStartup("Database connection established")

	if err := createTables(db); err != nil {
		utils.LogError("Failed to create tables: %v", err)
		return nil, err
	}

	utils.LogStartup("Database tables initialized successfully")
	return &DB{db}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		// Users table
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			avatar TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Courses: the module/assignment tree lives in the data JSON column
		`CREATE TABLE IF NOT EXISTS courses (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			goal TEXT NOT NULL DEFAULT '',
			duration INTEGER NOT NULL DEFAULT 0,
			progress INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'completed', 'paused')),
			data TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		// Gamification ledger, one row per user, created lazily
		`CREATE TABLE IF NOT EXISTS gamification (
			user_id INTEGER PRIMARY KEY,
			xp INTEGER NOT NULL DEFAULT 0,
			streak INTEGER NOT NULL DEFAULT 0,
			last_active_date TEXT NOT NULL DEFAULT '',
			badges TEXT NOT NULL DEFAULT '[]',
			lessons_today INTEGER NOT NULL DEFAULT 0,
			total_lessons INTEGER NOT NULL DEFAULT 0,
			total_courses INTEGER NOT NULL DEFAULT 0,
			total_assignments INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		// Arena profiles, created lazily with starting rating/tokens
		`CREATE TABLE IF NOT EXISTS arena_profiles (
			user_id INTEGER PRIMARY KEY,
			arena_rating INTEGER NOT NULL DEFAULT 1000,
			duels_won INTEGER NOT NULL DEFAULT 0,
			duels_lost INTEGER NOT NULL DEFAULT 0,
			bosses_defeated INTEGER NOT NULL DEFAULT 0,
			arena_tokens INTEGER NOT NULL DEFAULT 100,
			win_streak INTEGER NOT NULL DEFAULT 0,
			best_win_streak INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		// Finished duel history
		`CREATE TABLE IF NOT EXISTS duels (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			topic TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			status TEXT NOT NULL,
			data TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		// Finished boss fight history
		`CREATE TABLE IF NOT EXISTS boss_fights (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			topic TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			status TEXT NOT NULL,
			data TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		// AI assistant chat history
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL,
			role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
			content TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		// Classes and membership
		`CREATE TABLE IF NOT EXISTS classes (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			creator_id INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (creator_id) REFERENCES users(id)
		)`,

		`CREATE TABLE IF NOT EXISTS class_members (
			class_id TEXT NOT NULL,
			user_id INTEGER NOT NULL,
			joined_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (class_id, user_id),
			FOREIGN KEY (class_id) REFERENCES classes(id) ON DELETE CASCADE,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,

		`CREATE TABLE IF NOT EXISTS class_invites (
			id TEXT PRIMARY KEY,
			class_id TEXT NOT NULL,
			from_user_id INTEGER NOT NULL,
			to_user_id INTEGER NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'accepted', 'rejected')),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (class_id) REFERENCES classes(id) ON DELETE CASCADE
		)`,

		`CREATE TABLE IF NOT EXISTS class_messages (
			id TEXT PRIMARY KEY,
			class_id TEXT NOT NULL,
			user_id INTEGER NOT NULL,
			user_name TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (class_id) REFERENCES classes(id) ON DELETE CASCADE
		)`,

		// Indexes for the hot lookups
		`CREATE INDEX IF NOT EXISTS idx_courses_user ON courses(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_duels_user ON duels(user_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_boss_fights_user ON boss_fights(user_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_chat_user ON chat_messages(user_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_invites_to_user ON class_invites(to_user_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_class_messages ON class_messages(class_id, created_at)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}
