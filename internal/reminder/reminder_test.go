package reminder

import (
	"testing"
	"time"

	"github.com/subtrackhq/subtrack/internal/models"
)

func TestDueSoon_TableTests(t *testing.T) {
	today := time.Date(2024, 6, 10, 0, 0, 0, 0, time.Local)

	tests := []struct {
		name       string
		date       string
		windowDays int
		wantDue    bool
	}{
		{name: "due today", date: "2024-06-10", windowDays: 3, wantDue: true},
		{name: "inside window", date: "2024-06-12", windowDays: 3, wantDue: true},
		{name: "window boundary", date: "2024-06-13", windowDays: 3, wantDue: true},
		{name: "one past boundary", date: "2024-06-14", windowDays: 3, wantDue: false},
		{name: "overdue yesterday", date: "2024-06-09", windowDays: 3, wantDue: false},
		{name: "zero window due today", date: "2024-06-10", windowDays: 0, wantDue: true},
		{name: "zero window due tomorrow", date: "2024-06-11", windowDays: 0, wantDue: false},
		{name: "wide window", date: "2024-06-24", windowDays: 14, wantDue: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs := []models.Subscription{{ID: "x", NextPaymentDate: tt.date}}
			due, err := DueSoon(subs, today, tt.windowDays)
			if err != nil {
				t.Fatalf("DueSoon() error: %v", err)
			}
			if got := len(due) == 1; got != tt.wantDue {
				t.Errorf("DueSoon(%q, window=%d) included = %v, want %v",
					tt.date, tt.windowDays, got, tt.wantDue)
			}
		})
	}
}

func TestDueSoon_PreservesOrder(t *testing.T) {
	today := time.Date(2024, 6, 10, 0, 0, 0, 0, time.Local)
	subs := []models.Subscription{
		{ID: "late", NextPaymentDate: "2024-06-13"},
		{ID: "overdue", NextPaymentDate: "2024-06-01"},
		{ID: "soon", NextPaymentDate: "2024-06-11"},
		{ID: "today", NextPaymentDate: "2024-06-10"},
	}

	due, err := DueSoon(subs, today, DefaultWindowDays)
	if err != nil {
		t.Fatalf("DueSoon() error: %v", err)
	}
	wantIDs := []string{"late", "soon", "today"}
	if len(due) != len(wantIDs) {
		t.Fatalf("DueSoon() returned %d subscriptions, want %d", len(due), len(wantIDs))
	}
	for i, id := range wantIDs {
		if due[i].ID != id {
			t.Errorf("due[%d].ID = %q, want %q", i, due[i].ID, id)
		}
	}
}

func TestDueSoon_Empty(t *testing.T) {
	due, err := DueSoon(nil, time.Now(), DefaultWindowDays)
	if err != nil {
		t.Fatalf("DueSoon() error: %v", err)
	}
	if len(due) != 0 {
		t.Errorf("DueSoon(nil) = %v, want empty", due)
	}
}

func TestDueSoon_MalformedDate(t *testing.T) {
	subs := []models.Subscription{{ID: "bad", NextPaymentDate: "garbage"}}
	if _, err := DueSoon(subs, time.Now(), DefaultWindowDays); err == nil {
		t.Error("DueSoon() expected error for malformed date")
	}
}
