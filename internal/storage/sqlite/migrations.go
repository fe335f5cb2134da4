package sqlite

import (
	"database/sql"
	"fmt"
)

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// IMPORTANT: the users table must be created first; every other table carries
// a foreign key to it.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL UNIQUE,
    created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    amount TEXT NOT NULL, -- signed decimal: positive income, negative expense
    category TEXT NOT NULL,
    transaction_date TEXT NOT NULL,
    description TEXT,
    created_at TEXT NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS budgets (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    category TEXT NOT NULL,
    amount TEXT NOT NULL,
    period_type TEXT NOT NULL, -- month/quarter/year
    period_start TEXT NOT NULL,
    period_end TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id),
    UNIQUE(user_id, category, period_start, period_end)
);

CREATE TABLE IF NOT EXISTS conversations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id INTEGER NOT NULL,
    agent_type TEXT NOT NULL, -- recorder/analyzer/saver/planner
    message_type TEXT NOT NULL, -- user/assistant
    content TEXT NOT NULL,
    timestamp TEXT NOT NULL,
    conversation_id TEXT NOT NULL, -- groups turns into one thread
    FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS saving_tips (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    category TEXT NOT NULL,
    tip TEXT NOT NULL,
    difficulty TEXT NOT NULL, -- 简单/中等/困难
    estimated_saving TEXT,
    UNIQUE(category, tip)
);

CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, transaction_date);
CREATE INDEX IF NOT EXISTS idx_budgets_user_category ON budgets(user_id, category);
CREATE INDEX IF NOT EXISTS idx_conversations_thread ON conversations(user_id, agent_type, conversation_id);
`

// defaultTips is seeded once; the UNIQUE(category, tip) constraint makes the
// INSERT OR IGNORE idempotent across restarts.
var defaultTips = []struct {
	category, tip, difficulty, saving string
}{
	{"餐饮", "自带午餐代替外卖，每周可省100-150元", "简单", "120"},
	{"交通", "使用共享单车或步行代替短途打车", "简单", "80"},
	{"购物", "加入收藏夹，24小时后再决定是否购买", "中等", "200"},
	{"娱乐", "利用图书馆、公园等免费资源", "简单", "150"},
	{"通讯", "检查并取消不必要的订阅服务", "简单", "50"},
}

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	if err := migrateLegacyConversations(db); err != nil {
		return err
	}

	if _, err := db.Exec(schema); err != nil {
		return err
	}

	return seedTips(db)
}

// migrateLegacyConversations drops a conversations table whose shape predates
// the conversation_id column. Destructive and best-effort: old turns cannot be
// grouped into threads, so they are discarded rather than guessed at.
func migrateLegacyConversations(db *sql.DB) error {
	rows, err := db.Query("PRAGMA table_info(conversations)")
	if err != nil {
		return fmt.Errorf("failed to inspect conversations table: %w", err)
	}
	defer rows.Close()

	exists := false
	hasThreadColumn := false
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return fmt.Errorf("failed to scan table info: %w", err)
		}
		exists = true
		if name == "conversation_id" {
			hasThreadColumn = true
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate table info: %w", err)
	}

	if exists && !hasThreadColumn {
		if _, err := db.Exec("DROP TABLE IF EXISTS conversations"); err != nil {
			return fmt.Errorf("failed to drop legacy conversations table: %w", err)
		}
	}
	return nil
}

func seedTips(db *sql.DB) error {
	for _, t := range defaultTips {
		_, err := db.Exec(
			"INSERT OR IGNORE INTO saving_tips (category, tip, difficulty, estimated_saving) VALUES (?, ?, ?, ?)",
			t.category, t.tip, t.difficulty, t.saving,
		)
		if err != nil {
			return fmt.Errorf("failed to seed saving tips: %w", err)
		}
	}
	return nil
}
