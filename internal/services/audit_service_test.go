package services

import (
	"testing"

	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

func TestAuditLog(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuditService(db)
	user := testutil.CreateTestUser(t, db)

	svc.Log(user.ID, AuditDelete, ResourceGoal, "goal-1", "127.0.0.1", map[string]any{"transactions_deleted": 2})

	var entries []models.AuditLog
	db.Where("user_id = ?", user.ID).Find(&entries)
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Action != "delete" || e.ResourceType != "savings_goal" || e.ResourceID != "goal-1" {
		t.Errorf("unexpected entry %+v", e)
	}
	if e.Changes != `{"transactions_deleted":2}` {
		t.Errorf("unexpected changes %s", e.Changes)
	}
}
