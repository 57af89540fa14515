package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/yegors/spotten/internal/briefing"
	"github.com/yegors/spotten/pkg/logger"
)

func newTestStorage(t *testing.T) *SettingsStorage {
	t.Helper()
	log := logger.NewNop()

	db, err := Open(filepath.Join(t.TempDir(), "nested", "settings.db"), log)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	storage, err := NewSettingsStorage(db, log)
	if err != nil {
		t.Fatalf("NewSettingsStorage: %v", err)
	}
	return storage
}

func TestSettingsSaveLoad(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	off := -0.2
	form := briefing.DefaultFormInput()
	form.DropzoneID = "home"
	form.WindFL100 = briefing.WindInput{DirectionDeg: 270, SpeedKt: 25}
	form.FixedOffTrackNM = &off

	if err := s.Save(ctx, "alice", form); err != nil {
		t.Fatalf("Save: %v", err)
	}

	record, err := s.Load(ctx, "alice")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if record.Form.DropzoneID != "home" || record.Form.WindFL100.SpeedKt != 25 {
		t.Errorf("loaded form = %+v", record.Form)
	}
	if record.Form.FixedOffTrackNM == nil || *record.Form.FixedOffTrackNM != -0.2 {
		t.Errorf("fixed off track = %v", record.Form.FixedOffTrackNM)
	}
	if record.Form.FixedLineOfFlightDeg != nil {
		t.Errorf("unset line of flight came back as %v", *record.Form.FixedLineOfFlightDeg)
	}
	if record.UpdatedAt.IsZero() {
		t.Errorf("updated_at not set")
	}
}

func TestSettingsSaveReplaces(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	form := briefing.DefaultFormInput()
	form.WindGround.SpeedKt = 5
	if err := s.Save(ctx, "p", form); err != nil {
		t.Fatalf("Save: %v", err)
	}
	form.WindGround.SpeedKt = 12
	if err := s.Save(ctx, "p", form); err != nil {
		t.Fatalf("Save: %v", err)
	}

	record, err := s.Load(ctx, "p")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if record.Form.WindGround.SpeedKt != 12 {
		t.Errorf("ground wind = %f, want 12", record.Form.WindGround.SpeedKt)
	}

	records, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected one profile, got %d", len(records))
	}
}

func TestSettingsNotFound(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	if _, err := s.Load(ctx, "nobody"); !errors.Is(err, ErrSettingsNotFound) {
		t.Errorf("Load: expected ErrSettingsNotFound, got %v", err)
	}
	if err := s.Delete(ctx, "nobody"); !errors.Is(err, ErrSettingsNotFound) {
		t.Errorf("Delete: expected ErrSettingsNotFound, got %v", err)
	}
}

func TestSettingsDeleteAndList(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	for _, p := range []string{"charlie", "alice", "bob"} {
		if err := s.Save(ctx, p, briefing.DefaultFormInput()); err != nil {
			t.Fatalf("Save %s: %v", p, err)
		}
	}
	if err := s.Delete(ctx, "bob"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	records, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 || records[0].Profile != "alice" || records[1].Profile != "charlie" {
		t.Errorf("profiles = %v", records)
	}
}
