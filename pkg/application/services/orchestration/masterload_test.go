package orchestration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kaizen-line/inspector-dispatch/pkg/config"
	"github.com/kaizen-line/inspector-dispatch/pkg/domain/entities"
	"github.com/kaizen-line/inspector-dispatch/pkg/infrastructure/events"
	"github.com/kaizen-line/inspector-dispatch/pkg/infrastructure/mastercache"
)

// The counting*  wrappers below let a test observe whether
// loadMasterDataCached actually skipped a source read on a cache hit,
// independent of the fakeCollaborators fixture's own state.

type countingInspectors struct {
	inner *fakeCollaborators
	calls int
}

func (c *countingInspectors) Inspectors() ([]entities.Inspector, error) {
	c.calls++
	return c.inner.Inspectors()
}

type countingSkills struct {
	inner *fakeCollaborators
	calls int
}

func (c *countingSkills) SkillCells() ([]entities.SkillCell, error) {
	c.calls++
	return c.inner.SkillCells()
}

type countingVacations struct {
	inner *fakeCollaborators
	calls int
}

func (c *countingVacations) AbsentInspectorIDs(date time.Time) (map[string]string, error) {
	c.calls++
	return c.inner.AbsentInspectorIDs(date)
}

type countingPins struct {
	inner *fakeCollaborators
	calls int
}

func (c *countingPins) FixedPins() ([]entities.FixedPin, error) {
	c.calls++
	return c.inner.FixedPins()
}

func mustTempFixturesFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixtures.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o600); err != nil {
		t.Fatalf("writing temp fixtures file: %v", err)
	}
	return path
}

// TestLoadMasterDataCached_SecondRunHitsCache verifies that wiring a
// MasterCache into the Orchestrator (spec.md §4.6) makes a second run
// against an unchanged master file skip every one of the four source
// reads rather than repeating them.
func TestLoadMasterDataCached_SecondRunHitsCache(t *testing.T) {
	c := buildCollaborators()
	insp := &countingInspectors{inner: c}
	skl := &countingSkills{inner: c}
	vac := &countingVacations{inner: c}
	pin := &countingPins{inner: c}

	collaborators := Collaborators{
		Shipments:       c,
		Inventory:       c,
		Excluded:        c,
		Keywords:        c,
		CleaningFeed:    c,
		AdvanceRegistry: c,
		Products:        c,
		Inspectors:      insp,
		Skills:          skl,
		Vacations:       vac,
		FixedPins:       pin,
	}

	orch := NewOrchestrator(collaborators, config.NewDefault(), events.NewInMemoryEventStore(), nil)
	orch.MasterCache = mastercache.NewStore(time.Minute, nil)
	orch.MasterCachePath = mustTempFixturesFile(t)

	today := mustParseDate("2026-07-31")

	if _, _, _, _, _, err := orch.loadMasterData(today); err != nil {
		t.Fatalf("first load: %v", err)
	}
	if _, _, _, _, _, err := orch.loadMasterData(today); err != nil {
		t.Fatalf("second load: %v", err)
	}

	if insp.calls != 1 {
		t.Fatalf("expected inspectors loaded once, got %d", insp.calls)
	}
	if skl.calls != 1 {
		t.Fatalf("expected skill cells loaded once, got %d", skl.calls)
	}
	if vac.calls != 1 {
		t.Fatalf("expected vacations loaded once for the same run date, got %d", vac.calls)
	}
	if pin.calls != 1 {
		t.Fatalf("expected fixed pins loaded once, got %d", pin.calls)
	}
}

// TestLoadMasterDataCached_DifferentRunDateReloadsVacations verifies
// vacations are keyed by run date in addition to the master file's
// fingerprint, since the same file can carry different absences for
// different dates.
func TestLoadMasterDataCached_DifferentRunDateReloadsVacations(t *testing.T) {
	c := buildCollaborators()
	vac := &countingVacations{inner: c}

	collaborators := Collaborators{
		Shipments:       c,
		Inventory:       c,
		Excluded:        c,
		Keywords:        c,
		CleaningFeed:    c,
		AdvanceRegistry: c,
		Products:        c,
		Inspectors:      c,
		Skills:          c,
		Vacations:       vac,
		FixedPins:       c,
	}

	orch := NewOrchestrator(collaborators, config.NewDefault(), events.NewInMemoryEventStore(), nil)
	orch.MasterCache = mastercache.NewStore(time.Minute, nil)
	orch.MasterCachePath = mustTempFixturesFile(t)

	if _, _, _, _, _, err := orch.loadMasterData(mustParseDate("2026-07-31")); err != nil {
		t.Fatalf("first load: %v", err)
	}
	if _, _, _, _, _, err := orch.loadMasterData(mustParseDate("2026-08-01")); err != nil {
		t.Fatalf("second load: %v", err)
	}

	if vac.calls != 2 {
		t.Fatalf("expected vacations reloaded for a new run date, got %d", vac.calls)
	}
}
