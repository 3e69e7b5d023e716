package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Zadjehi/satisf-exercice/internal/models"
)

type pagingAuditStore struct {
	fakeAuditStore
	limit  int
	offset int
}

func (f *pagingAuditStore) List(ctx context.Context, limit, offset int) ([]models.AuditEntry, error) {
	f.limit = limit
	f.offset = offset
	return f.fakeAuditStore.List(ctx, limit, offset)
}

func TestAuditorListClampsPaging(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{"negative limit", -1, 0, 20, 0},
		{"zero limit", 0, 0, 20, 0},
		{"oversized limit", 500, 0, 20, 0},
		{"negative offset", 20, -5, 20, 0},
		{"in range", 50, 10, 50, 10},
	}

	for _, tc := range tests {
		store := &pagingAuditStore{}
		auditor := NewAuditor(store, zerolog.Nop())

		if _, _, err := auditor.List(context.Background(), tc.limit, tc.offset); err != nil {
			t.Fatalf("%s: list: %v", tc.name, err)
		}
		if store.limit != tc.wantLimit || store.offset != tc.wantOffset {
			t.Errorf("%s: store received limit %d offset %d, want %d/%d",
				tc.name, store.limit, store.offset, tc.wantLimit, tc.wantOffset)
		}
	}
}

func TestAuditorRecordSkipsPrivilegedActor(t *testing.T) {
	store := &fakeAuditStore{}
	auditor := NewAuditor(store, zerolog.Nop())

	auditor.Record(context.Background(), 0, "export_data", "combined export", "127.0.0.1", "test")
	if len(store.entries) != 0 {
		t.Errorf("privileged action recorded: %v", store.entries)
	}

	auditor.Record(context.Background(), 7, "export_data", "combined export", "127.0.0.1", "test")
	if len(store.entries) != 1 {
		t.Fatalf("entries = %d", len(store.entries))
	}
	if store.entries[0].UserID != 7 || store.entries[0].Action != "export_data" {
		t.Errorf("entry = %+v", store.entries[0])
	}
}
