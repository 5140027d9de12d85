package statedb

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func newTestDB(t *testing.T) *StateDB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "state.db")
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "state.db")

	db1, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := db1.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := db1.AddRecentItem(RecentItemRow{ItemID: "project-1", Type: "project", Title: "Website"}, 10); err != nil {
		t.Fatalf("AddRecentItem: %v", err)
	}
	db1.Close()

	db2, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	defer db2.Close()
	if err := db2.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	rows, err := db2.LoadRecentItems(0)
	if err != nil {
		t.Fatalf("LoadRecentItems: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(rows))
	}
	if rows[0].ItemID != "project-1" || rows[0].ProjectID != "project-1" || rows[0].Title != "Website" {
		t.Errorf("Unexpected data: %+v", rows[0])
	}
}

func TestMigrateIdempotent(t *testing.T) {
	db := newTestDB(t)
	if err := db.Migrate(); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	v, err := db.GetMeta("schema_version")
	if err != nil {
		t.Fatalf("GetMeta: %v", err)
	}
	if v != "1" {
		t.Errorf("schema_version = %q, want 1", v)
	}
}

func TestRecentItemsOrderAndUpsert(t *testing.T) {
	db := newTestDB(t)
	base := time.Unix(1_700_000_000, 0)

	add := func(id, typ, project string, offset time.Duration) {
		t.Helper()
		err := db.AddRecentItem(RecentItemRow{ItemID: id, Type: typ, ProjectID: project, UsedAt: base.Add(offset)}, 0)
		if err != nil {
			t.Fatalf("AddRecentItem(%s): %v", id, err)
		}
	}
	add("p1", "project", "", 0)
	add("t1", "task", "p1", time.Second)
	add("t1", "task", "p2", 2*time.Second)
	add("p1", "project", "", 3*time.Second)

	rows, err := db.LoadRecentItems(0)
	if err != nil {
		t.Fatalf("LoadRecentItems: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d: %+v", len(rows), rows)
	}
	want := []struct{ id, project string }{{"p1", "p1"}, {"t1", "p2"}, {"t1", "p1"}}
	for i, w := range want {
		if rows[i].ItemID != w.id || rows[i].ProjectID != w.project {
			t.Errorf("row %d = %s/%s, want %s/%s", i, rows[i].ProjectID, rows[i].ItemID, w.project, w.id)
		}
	}
	if !rows[0].UsedAt.Equal(base.Add(3 * time.Second)) {
		t.Errorf("UsedAt = %v", rows[0].UsedAt)
	}

	limited, err := db.LoadRecentItems(2)
	if err != nil {
		t.Fatalf("LoadRecentItems(2): %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("Expected 2 rows, got %d", len(limited))
	}
}

func TestRecentItemsTrim(t *testing.T) {
	db := newTestDB(t)
	base := time.Unix(1_700_000_000, 0)
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		row := RecentItemRow{ItemID: id, Type: "project", UsedAt: base.Add(time.Duration(i) * time.Second)}
		if err := db.AddRecentItem(row, 3); err != nil {
			t.Fatalf("AddRecentItem: %v", err)
		}
	}

	rows, err := db.LoadRecentItems(0)
	if err != nil {
		t.Fatalf("LoadRecentItems: %v", err)
	}
	var got []string
	for _, r := range rows {
		got = append(got, r.ItemID)
	}
	if len(got) != 3 || got[0] != "e" || got[1] != "d" || got[2] != "c" {
		t.Errorf("got %v, want [e d c]", got)
	}
}

func TestRecentSearches(t *testing.T) {
	db := newTestDB(t)
	base := time.Unix(1_700_000_000, 0)
	for i, q := range []string{"brief", "launch", "brief", "wire"} {
		if err := db.AddRecentSearch(q, base.Add(time.Duration(i)*time.Second), 2); err != nil {
			t.Fatalf("AddRecentSearch: %v", err)
		}
	}

	rows, err := db.LoadRecentSearches(0)
	if err != nil {
		t.Fatalf("LoadRecentSearches: %v", err)
	}
	if len(rows) != 2 || rows[0].Query != "wire" || rows[1].Query != "brief" {
		t.Errorf("got %+v, want [wire brief]", rows)
	}
}

func TestClearRecentsAndIsEmpty(t *testing.T) {
	db := newTestDB(t)

	empty, err := db.IsEmpty()
	if err != nil || !empty {
		t.Fatalf("IsEmpty = %v, %v", empty, err)
	}
	if err := db.AddRecentSearch("x", time.Time{}, 0); err != nil {
		t.Fatalf("AddRecentSearch: %v", err)
	}
	if empty, _ := db.IsEmpty(); empty {
		t.Error("expected non-empty after search")
	}
	if err := db.ClearRecents(); err != nil {
		t.Fatalf("ClearRecents: %v", err)
	}
	if empty, _ := db.IsEmpty(); !empty {
		t.Error("expected empty after clear")
	}
}

func TestTouchAndLastModified(t *testing.T) {
	db := newTestDB(t)

	ts0, err := db.LastModified()
	if err != nil {
		t.Fatalf("LastModified: %v", err)
	}
	if ts0 != 0 {
		t.Errorf("fresh db LastModified = %d, want 0", ts0)
	}

	if err := db.Touch(); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	ts1, _ := db.LastModified()
	if ts1 == 0 {
		t.Fatal("Touch did not set last_modified")
	}

	time.Sleep(2 * time.Millisecond)
	if err := db.AddRecentSearch("later", time.Time{}, 0); err != nil {
		t.Fatalf("AddRecentSearch: %v", err)
	}
	ts2, _ := db.LastModified()
	if ts2 <= ts1 {
		t.Errorf("write did not advance last_modified: %d <= %d", ts2, ts1)
	}
}

func TestMetaMissingKey(t *testing.T) {
	db := newTestDB(t)
	v, err := db.GetMeta("nope")
	if err != nil || v != "" {
		t.Errorf("GetMeta = %q, %v", v, err)
	}
}

func TestConcurrentWrites(t *testing.T) {
	db := newTestDB(t)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			q := string(rune('a' + n))
			if err := db.AddRecentSearch(q, time.Time{}, 0); err != nil {
				t.Errorf("AddRecentSearch(%s): %v", q, err)
			}
		}(i)
	}
	wg.Wait()

	rows, err := db.LoadRecentSearches(0)
	if err != nil {
		t.Fatalf("LoadRecentSearches: %v", err)
	}
	if len(rows) != 8 {
		t.Errorf("Expected 8 searches, got %d", len(rows))
	}
}

func TestMigrateFromJSON(t *testing.T) {
	db := newTestDB(t)
	path := filepath.Join(t.TempDir(), "recents.json")
	body := `{
		"recentItems": [
			{"id": "task-1", "type": "task", "projectId": "project-1", "title": "Wireframe"},
			{"id": "project-2", "type": "project"},
			{"id": "", "type": "project"}
		],
		"recentSearches": ["newest", "", "oldest"]
	}`
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	items, searches, err := MigrateFromJSON(path, db)
	if err != nil {
		t.Fatalf("MigrateFromJSON: %v", err)
	}
	if items != 2 || searches != 2 {
		t.Errorf("imported %d items, %d searches; want 2, 2", items, searches)
	}

	rows, _ := db.LoadRecentItems(0)
	if len(rows) != 2 || rows[0].ItemID != "task-1" || rows[0].ProjectID != "project-1" {
		t.Errorf("items not in export order: %+v", rows)
	}
	srows, _ := db.LoadRecentSearches(0)
	if len(srows) != 2 || srows[0].Query != "newest" {
		t.Errorf("searches not in export order: %+v", srows)
	}
}

func TestMigrateFromJSONErrors(t *testing.T) {
	db := newTestDB(t)
	if _, _, err := MigrateFromJSON(filepath.Join(t.TempDir(), "missing.json"), db); err == nil {
		t.Error("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.json")
	_ = os.WriteFile(path, []byte("{"), 0600)
	if _, _, err := MigrateFromJSON(path, db); err == nil {
		t.Error("expected error for bad json")
	}
}
