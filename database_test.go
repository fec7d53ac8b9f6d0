package arena

import (
	"bytes"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "arena.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMatchLifecycle(t *testing.T) {
	db := openTestDB(t)
	cfg := DefaultConfig(ModeTDM)
	cfg.Seed = 99

	if err := db.CreateMatch("m1", cfg); err != nil {
		t.Fatal(err)
	}
	m, err := db.GetMatch("m1")
	if err != nil || m == nil {
		t.Fatalf("get match: %v", err)
	}
	if m.Mode != "tdm" || m.Seed != 99 || m.Width != cfg.WorldWidth {
		t.Errorf("unexpected row %+v", m)
	}
	if m.EndedAt.Valid {
		t.Error("running match should have no end time")
	}

	ms := NewMatchState(cfg)
	ms.Elapsed = 120
	ms.Teams[TeamRed] = 30
	ms.Teams[TeamBlue] = 12
	ms.Winner = TeamRed
	if err := db.FinishMatch("m1", ms); err != nil {
		t.Fatal(err)
	}
	m, _ = db.GetMatch("m1")
	if !m.EndedAt.Valid || m.Duration != 120 || m.WinnerTeam != TeamRed || m.RedScore != 30 || m.BlueScore != 12 {
		t.Errorf("unexpected finished row %+v", m)
	}
}

func TestGetMatchUnknown(t *testing.T) {
	db := openTestDB(t)
	m, err := db.GetMatch("nope")
	if err != nil || m != nil {
		t.Errorf("expected nil, nil; got %+v, %v", m, err)
	}
	if err := db.FinishMatch("nope", MatchState{}); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestInsertAndReadEvents(t *testing.T) {
	db := openTestDB(t)
	db.CreateMatch("m1", DefaultConfig(ModeFFA))

	var batch []Event
	for i, typ := range []EventType{EventKill, EventDeath, EventKill} {
		ev := NewEvent(typ, uint64(i+1))
		ev.Match = "m1"
		ev.Actor = 3
		ev.Target = 4
		ev.Value = i
		batch = append(batch, ev)
	}
	if err := db.InsertEvents(batch); err != nil {
		t.Fatal(err)
	}

	counts, err := db.EventCounts("m1")
	if err != nil {
		t.Fatal(err)
	}
	if counts[EventKill] != 2 || counts[EventDeath] != 1 {
		t.Errorf("unexpected counts %v", counts)
	}

	got, err := db.MatchEvents("m1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	for i, ev := range got {
		if ev.ID != batch[i].ID || ev.Type != batch[i].Type || ev.Tick != batch[i].Tick {
			t.Errorf("event %d: got %+v, want %+v", i, ev, batch[i])
		}
		if ev.Actor != 3 || ev.Target != 4 || ev.Value != i {
			t.Errorf("event %d lost fields: %+v", i, ev)
		}
	}
}

func TestInsertEventsUnknownMatch(t *testing.T) {
	db := openTestDB(t)
	ev := NewEvent(EventKill, 1)
	ev.Match = "ghost"
	if err := db.InsertEvents([]Event{ev}); err == nil {
		t.Error("foreign key should reject events for an unknown match")
	}
	if counts, _ := db.EventCounts("ghost"); len(counts) != 0 {
		t.Errorf("failed batch should roll back, got %v", counts)
	}
}

func TestSettings(t *testing.T) {
	db := openTestDB(t)
	if v, err := db.GetSetting("missing"); err != nil || v != "" {
		t.Errorf("expected empty setting, got %q, %v", v, err)
	}
	db.SetSetting("k", "v1")
	db.SetSetting("k", "v2")
	if v, _ := db.GetSetting("k"); v != "v2" {
		t.Errorf("expected upsert to v2, got %q", v)
	}
}

func TestLoadOrCreateSecretIsStable(t *testing.T) {
	db := openTestDB(t)
	a, err := LoadOrCreateSecret(db)
	if err != nil {
		t.Fatal(err)
	}
	b, err := LoadOrCreateSecret(db)
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != ticketSecretSize || !bytes.Equal(a, b) {
		t.Error("secret should be generated once and reused")
	}
}

func TestRecorderFlushesOnStop(t *testing.T) {
	db := openTestDB(t)
	db.CreateMatch("m1", DefaultConfig(ModeFFA))
	rec := NewRecorder(db, quietLogger())

	for i := 0; i < recorderBatch+7; i++ {
		ev := NewEvent(EventKill, uint64(i))
		ev.Match = "m1"
		rec.Record(ev)
	}
	rec.Stop()
	rec.Stop()

	counts, err := db.EventCounts("m1")
	if err != nil {
		t.Fatal(err)
	}
	if counts[EventKill] != recorderBatch+7 {
		t.Errorf("expected %d events, got %d", recorderBatch+7, counts[EventKill])
	}
	if rec.Dropped() != 0 {
		t.Errorf("nothing should be dropped, got %d", rec.Dropped())
	}
}

func TestGameRecordsEvents(t *testing.T) {
	db := openTestDB(t)
	rec := NewRecorder(db, quietLogger())
	cfg := testConfig(ModeFFA)
	g, err := NewGame(Options{Config: cfg, MatchID: "m2", Logger: quietLogger(), Recorder: rec})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.CreateMatch(g.MatchID(), cfg); err != nil {
		t.Fatal(err)
	}
	g.AddPlayer("a", TeamNone)
	g.AddPlayer("b", TeamNone)
	g.Step(1.0 / 60)
	rec.Stop()

	counts, err := db.EventCounts("m2")
	if err != nil {
		t.Fatal(err)
	}
	if counts[EventPlayerJoined] != 2 {
		t.Errorf("expected 2 player_joined rows, got %v", counts)
	}
}
