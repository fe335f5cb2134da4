package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/elwin56/MengMengShangAn-program/internal/models"
	"github.com/elwin56/MengMengShangAn-program/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if err := store.EnsureUser(context.Background(), 1, "default_user"); err != nil {
		t.Fatalf("EnsureUser failed: %v", err)
	}
	return store
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("EnsureUser is idempotent", func(t *testing.T) {
		if err := store.EnsureUser(ctx, 1, "default_user"); err != nil {
			t.Fatalf("second EnsureUser failed: %v", err)
		}
	})

	t.Run("InsertTransaction assigns id and created_at", func(t *testing.T) {
		tx := &models.Transaction{
			UserID:      1,
			Amount:      decimal.NewFromInt(-35),
			Category:    "餐饮",
			Date:        "2025-08-12",
			Description: "午饭",
		}
		id, err := store.InsertTransaction(ctx, tx)
		if err != nil {
			t.Fatalf("InsertTransaction failed: %v", err)
		}
		if id == 0 || tx.ID != id {
			t.Errorf("expected assigned id, got %d (tx.ID=%d)", id, tx.ID)
		}
		if tx.CreatedAt.IsZero() {
			t.Error("expected CreatedAt to be set")
		}
	})

	t.Run("InsertTransaction rejects unknown user", func(t *testing.T) {
		_, err := store.InsertTransaction(ctx, &models.Transaction{
			UserID:   99,
			Amount:   decimal.NewFromInt(-1),
			Category: "餐饮",
			Date:     "2025-08-12",
		})
		if err == nil {
			t.Error("expected foreign key violation, got nil")
		}
	})

	t.Run("ListTransactions filters and orders", func(t *testing.T) {
		for _, row := range []struct {
			amount   int64
			category string
			date     string
		}{
			{-20, "交通", "2025-08-01"},
			{-50, "餐饮", "2025-08-05"},
			{3000, "工资", "2025-08-10"},
		} {
			_, err := store.InsertTransaction(ctx, &models.Transaction{
				UserID:   1,
				Amount:   decimal.NewFromInt(row.amount),
				Category: row.category,
				Date:     row.date,
			})
			if err != nil {
				t.Fatalf("InsertTransaction failed: %v", err)
			}
		}

		txs, err := store.ListTransactions(ctx, 1, storage.TransactionFilter{
			StartDate: "2025-08-01",
			EndDate:   "2025-08-31",
		})
		if err != nil {
			t.Fatalf("ListTransactions failed: %v", err)
		}
		for i := 1; i < len(txs); i++ {
			if txs[i-1].Date < txs[i].Date {
				t.Errorf("expected newest first, got %s before %s", txs[i-1].Date, txs[i].Date)
			}
		}

		dining, err := store.ListTransactions(ctx, 1, storage.TransactionFilter{Category: "餐饮"})
		if err != nil {
			t.Fatalf("ListTransactions failed: %v", err)
		}
		for _, tx := range dining {
			if tx.Category != "餐饮" {
				t.Errorf("category filter leaked %q", tx.Category)
			}
		}
	})

	t.Run("saving tips are seeded", func(t *testing.T) {
		tips, err := store.SavingTips(ctx, "", "", 10)
		if err != nil {
			t.Fatalf("SavingTips failed: %v", err)
		}
		if len(tips) != 5 {
			t.Errorf("expected 5 seeded tips, got %d", len(tips))
		}

		dining, err := store.SavingTips(ctx, "餐饮", "简单", 3)
		if err != nil {
			t.Fatalf("SavingTips failed: %v", err)
		}
		if len(dining) != 1 {
			t.Fatalf("expected 1 dining tip, got %d", len(dining))
		}
		if !dining[0].EstimatedSaving.Equal(decimal.NewFromInt(120)) {
			t.Errorf("estimated saving = %s, want 120", dining[0].EstimatedSaving)
		}
	})
}

func TestUpsertBudget(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	b := &models.Budget{
		UserID:      1,
		Category:    "餐饮",
		Amount:      decimal.NewFromInt(500),
		PeriodType:  models.PeriodMonth,
		PeriodStart: "2025-08-01",
		PeriodEnd:   "2025-08-31",
	}
	if err := store.UpsertBudget(ctx, b); err != nil {
		t.Fatalf("UpsertBudget failed: %v", err)
	}

	first, err := store.ActiveBudget(ctx, 1, "餐饮", models.PeriodMonth, "2025-08-12")
	if err != nil {
		t.Fatalf("ActiveBudget failed: %v", err)
	}

	// Same period again with a different amount replaces, keeps created_at.
	time.Sleep(10 * time.Millisecond)
	b.Amount = decimal.NewFromInt(800)
	if err := store.UpsertBudget(ctx, b); err != nil {
		t.Fatalf("second UpsertBudget failed: %v", err)
	}

	second, err := store.ActiveBudget(ctx, 1, "餐饮", models.PeriodMonth, "2025-08-12")
	if err != nil {
		t.Fatalf("ActiveBudget failed: %v", err)
	}
	if !second.Amount.Equal(decimal.NewFromInt(800)) {
		t.Errorf("amount = %s, want 800", second.Amount)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("created_at changed on upsert: %v -> %v", first.CreatedAt, second.CreatedAt)
	}
	if second.ID != first.ID {
		t.Errorf("row identity changed on upsert: %d -> %d", first.ID, second.ID)
	}

	// Distinct period gets its own row.
	b2 := &models.Budget{
		UserID:      1,
		Category:    "餐饮",
		Amount:      decimal.NewFromInt(600),
		PeriodType:  models.PeriodMonth,
		PeriodStart: "2025-09-01",
		PeriodEnd:   "2025-09-30",
	}
	if err := store.UpsertBudget(ctx, b2); err != nil {
		t.Fatalf("UpsertBudget failed: %v", err)
	}
	budgets, err := store.ActiveBudgets(ctx, 1, models.PeriodMonth, "2025-09-15")
	if err != nil {
		t.Fatalf("ActiveBudgets failed: %v", err)
	}
	if len(budgets) != 1 || !budgets[0].Amount.Equal(decimal.NewFromInt(600)) {
		t.Errorf("unexpected September budgets: %+v", budgets)
	}

	if _, err := store.ActiveBudget(ctx, 1, "交通", models.PeriodMonth, "2025-08-12"); err != storage.ErrNotFound {
		t.Errorf("expected ErrNotFound for missing category, got %v", err)
	}
}

func TestConversations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 8, 12, 9, 0, 0, 0, time.UTC)
	appendTurn := func(conv string, agent models.AgentType, typ models.TurnType, content string, at time.Time) {
		t.Helper()
		err := store.AppendTurn(ctx, &models.Turn{
			UserID:         1,
			AgentType:      agent,
			Type:           typ,
			Content:        content,
			Timestamp:      at,
			ConversationID: conv,
		})
		if err != nil {
			t.Fatalf("AppendTurn failed: %v", err)
		}
	}

	// Two recorder threads; conv-b is more recently active.
	appendTurn("conv-a", models.AgentRecorder, models.TurnUser, "早饭10元", base)
	appendTurn("conv-a", models.AgentRecorder, models.TurnAssistant, "已记录", base.Add(time.Second))
	appendTurn("conv-b", models.AgentRecorder, models.TurnUser, "午饭35元", base.Add(time.Hour))
	// A different persona's thread must not leak into recorder lists.
	appendTurn("conv-c", models.AgentAnalyzer, models.TurnUser, "这个月花了多少", base.Add(2*time.Hour))

	t.Run("list is ordered and distinct", func(t *testing.T) {
		infos, err := store.ConversationList(ctx, 1, models.AgentRecorder)
		if err != nil {
			t.Fatalf("ConversationList failed: %v", err)
		}
		if len(infos) != 2 {
			t.Fatalf("expected 2 conversations, got %d", len(infos))
		}
		if infos[0].ID != "conv-b" || infos[1].ID != "conv-a" {
			t.Errorf("wrong order: %s, %s", infos[0].ID, infos[1].ID)
		}
		seen := map[string]bool{}
		for _, info := range infos {
			if seen[info.ID] {
				t.Errorf("duplicate conversation id %s", info.ID)
			}
			seen[info.ID] = true
		}
	})

	t.Run("history is chronological and bounded", func(t *testing.T) {
		for i := 0; i < 30; i++ {
			appendTurn("conv-long", models.AgentRecorder, models.TurnUser,
				fmt.Sprintf("msg %02d", i), base.Add(time.Duration(i)*time.Minute))
		}

		turns, err := store.ConversationHistory(ctx, 1, models.AgentRecorder, "conv-long", 20)
		if err != nil {
			t.Fatalf("ConversationHistory failed: %v", err)
		}
		if len(turns) != 20 {
			t.Fatalf("expected 20 turns, got %d", len(turns))
		}
		// The 20 most recent of 30, oldest first.
		if turns[0].Content != "msg 10" || turns[19].Content != "msg 29" {
			t.Errorf("wrong window: first %q last %q", turns[0].Content, turns[19].Content)
		}
		for i := 1; i < len(turns); i++ {
			if turns[i].Timestamp.Before(turns[i-1].Timestamp) {
				t.Errorf("history out of order at %d", i)
			}
		}
	})

	t.Run("existence is scoped to user and agent", func(t *testing.T) {
		ok, err := store.ConversationExists(ctx, 1, models.AgentRecorder, "conv-a")
		if err != nil || !ok {
			t.Errorf("expected conv-a to exist for recorder, got ok=%v err=%v", ok, err)
		}
		ok, err = store.ConversationExists(ctx, 1, models.AgentAnalyzer, "conv-a")
		if err != nil || ok {
			t.Errorf("expected conv-a to be invisible to analyzer, got ok=%v err=%v", ok, err)
		}
	})
}

func TestLegacyConversationsMigration(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "legacy.db")

	// Build a pre-thread-id conversations table by hand.
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE conversations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		agent_type TEXT NOT NULL,
		message_type TEXT NOT NULL,
		content TEXT NOT NULL,
		timestamp TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create legacy table failed: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO conversations (user_id, agent_type, message_type, content, timestamp)
		VALUES (1, 'recorder', 'user', 'old turn', '2024-01-01T00:00:00.000000000Z')`); err != nil {
		t.Fatalf("insert legacy row failed: %v", err)
	}
	db.Close()

	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("New failed on legacy database: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.EnsureUser(ctx, 1, "default_user"); err != nil {
		t.Fatalf("EnsureUser failed: %v", err)
	}

	// Legacy rows are gone and the new shape accepts thread ids.
	infos, err := store.ConversationList(ctx, 1, models.AgentRecorder)
	if err != nil {
		t.Fatalf("ConversationList failed: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("expected legacy rows dropped, got %d conversations", len(infos))
	}

	err = store.AppendTurn(ctx, &models.Turn{
		UserID:         1,
		AgentType:      models.AgentRecorder,
		Type:           models.TurnUser,
		Content:        "new turn",
		ConversationID: "conv-1",
	})
	if err != nil {
		t.Fatalf("AppendTurn after migration failed: %v", err)
	}

	// Reopening must not drop the migrated table again.
	store.Close()
	store2, err := New(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store2.Close()

	infos, err = store2.ConversationList(ctx, 1, models.AgentRecorder)
	if err != nil {
		t.Fatalf("ConversationList after reopen failed: %v", err)
	}
	if len(infos) != 1 {
		t.Errorf("expected 1 conversation to survive reopen, got %d", len(infos))
	}
}
