package history

import (
	"fmt"
	"testing"
	"time"
)

func entry(i int) Entry {
	return Entry{
		ID:         fmt.Sprintf("id-%03d", i),
		Expression: fmt.Sprintf("%d+0", i),
		Result:     fmt.Sprint(i),
	}
}

func ids(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestLogKeepsNewestHundred(t *testing.T) {
	l := NewLog(0, nil)
	for i := 1; i <= 101; i++ {
		l.Add(entry(i))
	}

	if l.Len() != DefaultLimit {
		t.Fatalf("expected %d entries, got %d", DefaultLimit, l.Len())
	}

	got := l.Entries()
	if got[0].ID != "id-101" {
		t.Fatalf("expected newest entry first, got %q", got[0].ID)
	}
	if got[len(got)-1].ID != "id-002" {
		t.Fatalf("expected oldest surviving entry id-002, got %q", got[len(got)-1].ID)
	}
	if _, ok := l.Get("id-001"); ok {
		t.Fatal("expected id-001 to be evicted")
	}
}

func TestLogDeleteKeepsRelativeOrder(t *testing.T) {
	l := NewLog(10, nil)
	for i := 1; i <= 5; i++ {
		l.Add(entry(i))
	}

	if !l.Delete("id-003") {
		t.Fatal("expected delete to report the entry existed")
	}
	if l.Delete("id-003") {
		t.Fatal("expected second delete to report missing")
	}

	want := []string{"id-005", "id-004", "id-002", "id-001"}
	got := ids(l.Entries())
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNewLogTrimsSeedEntries(t *testing.T) {
	seed := []Entry{entry(3), entry(2), entry(1)}
	l := NewLog(2, seed)

	want := []string{"id-003", "id-002"}
	if got := ids(l.Entries()); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	seed[0].ID = "mutated"
	if l.Entries()[0].ID != "id-003" {
		t.Fatal("log must not alias the seed slice")
	}
}

func TestLogClearAndEntriesCopy(t *testing.T) {
	l := NewLog(5, nil)
	l.Add(entry(1))

	snapshot := l.Entries()
	snapshot[0].ID = "changed"
	if e, _ := l.Get("id-001"); e.ID != "id-001" {
		t.Fatal("Entries must return a copy")
	}

	l.Clear()
	if l.Len() != 0 {
		t.Fatalf("expected empty log, got %d", l.Len())
	}
	if got := l.Entries(); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestNewEntryAssignsTimeOrderedIDs(t *testing.T) {
	now := time.Date(2026, 1, 15, 15, 4, 5, 0, time.UTC)

	a, err := NewEntry("1+1", "2", now)
	if err != nil {
		t.Fatalf("NewEntry: %v", err)
	}
	b, err := NewEntry("2+2", "4", now)
	if err != nil {
		t.Fatalf("NewEntry: %v", err)
	}

	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct ids, got %q and %q", a.ID, b.ID)
	}
	if !a.CreatedAt.Equal(now) {
		t.Fatalf("expected CreatedAt %v, got %v", now, a.CreatedAt)
	}
	if a.Timestamp != now.Local().Format(TimestampLayout) {
		t.Fatalf("unexpected timestamp %q", a.Timestamp)
	}
}
