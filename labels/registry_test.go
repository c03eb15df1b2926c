/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package labels

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/suparena/labelregistry/errors"
	"github.com/suparena/labelregistry/storagemodels"
)

func loadedRegistry(t *testing.T) *testRegistry {
	t.Helper()
	reg := newTestRegistry(nil)
	require.NoError(t, reg.Load(context.Background()))
	return reg
}

func TestRegistry_Create(t *testing.T) {
	reg := loadedRegistry(t)

	work, err := reg.Create("Work", WithColor("indigo"), WithIcon("mdi:briefcase"))
	require.NoError(t, err)
	require.Equal(t, "work", work.ID)
	require.Equal(t, "Work", work.Name)
	require.Equal(t, "work", work.NormalizedName)
	require.Equal(t, Some("indigo"), work.Color)
	require.Equal(t, Some("mdi:briefcase"), work.Icon)
	require.False(t, work.Description.Valid())
	require.Equal(t, work.CreatedAt, work.ModifiedAt)

	got, ok := reg.Get("work")
	require.True(t, ok)
	require.Equal(t, work, got)

	require.Equal(t, []Event{{Action: ActionCreate, LabelID: "work"}}, reg.events.all())
	require.Equal(t, EventLabelRegistryUpdated, reg.events.topics[0])
	require.Equal(t, 1, reg.persister.saveRequests())
	require.Equal(t, SaveDelay, reg.persister.delays[0])
}

func TestRegistry_CreateDuplicateName(t *testing.T) {
	reg := loadedRegistry(t)

	_, err := reg.Create("Foo")
	require.NoError(t, err)

	_, err = reg.Create("foo")
	require.True(t, errors.IsDuplicateName(err), "got %v", err)

	_, err = reg.Create(" F O O ")
	require.True(t, errors.IsDuplicateName(err), "got %v", err)

	require.Equal(t, 1, reg.Len())
	require.Len(t, reg.events.all(), 1, "failed creates must not publish")
	require.Equal(t, 1, reg.persister.saveRequests(), "failed creates must not save")
}

func TestRegistry_CreateBlankName(t *testing.T) {
	reg := loadedRegistry(t)

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := reg.Create(name)
		require.True(t, errors.IsValidationError(err), "name %q", name)
	}
	require.Zero(t, reg.Len())
}

func TestRegistry_GeneratedIDsAreSuffixed(t *testing.T) {
	reg := loadedRegistry(t)

	var ids []string
	for _, name := range []string{"Living Room", "Living-Room", "living_room", "Living.Room"} {
		e, err := reg.Create(name)
		require.NoError(t, err)
		ids = append(ids, e.ID)
	}

	require.Equal(t, []string{"living_room", "living_room_2", "living_room_3", "living_room_4"}, ids)
}

func TestRegistry_DeletedIDsAreNotReused(t *testing.T) {
	reg := loadedRegistry(t)

	first, err := reg.Create("Garage")
	require.NoError(t, err)
	require.NoError(t, reg.Delete(first.ID))

	second, err := reg.Create("Garage")
	require.NoError(t, err)
	require.Equal(t, "garage_2", second.ID)
}

func TestRegistry_GetByName(t *testing.T) {
	reg := loadedRegistry(t)

	night, err := reg.Create("Night Mode")
	require.NoError(t, err)

	for _, lookup := range []string{"Night Mode", "nightmode", "NIGHTMODE", " n i g h t mode "} {
		got, ok := reg.GetByName(lookup)
		require.True(t, ok, "lookup %q", lookup)
		require.Equal(t, night, got)
	}

	_, ok := reg.GetByName("day mode")
	require.False(t, ok)
}

func TestRegistry_GetOrCreate(t *testing.T) {
	reg := loadedRegistry(t)

	created, err := reg.GetOrCreate("Kitchen")
	require.NoError(t, err)
	require.Len(t, reg.events.all(), 1)

	existing, err := reg.GetOrCreate("KITCHEN")
	require.NoError(t, err)
	require.Equal(t, created, existing)
	require.Len(t, reg.events.all(), 1, "returning an existing label has no side effects")
	require.Equal(t, 1, reg.persister.saveRequests())
}

func TestRegistry_List(t *testing.T) {
	reg := loadedRegistry(t)

	for _, name := range []string{"Work", "Home", "Away"} {
		_, err := reg.Create(name)
		require.NoError(t, err)
	}

	var ids []string
	for _, e := range reg.List() {
		ids = append(ids, e.ID)
	}
	require.Equal(t, []string{"away", "home", "work"}, ids)
}

func TestRegistry_UpdateNoFieldsIsNoop(t *testing.T) {
	reg := loadedRegistry(t)

	work, err := reg.Create("Work")
	require.NoError(t, err)
	saves := reg.persister.saveRequests()

	got, err := reg.Update(work.ID, UpdateFields{})
	require.NoError(t, err)
	require.Equal(t, work, got)
	require.Equal(t, saves, reg.persister.saveRequests())
	require.Len(t, reg.events.all(), 1)
}

func TestRegistry_UpdateSameValuesIsNoop(t *testing.T) {
	reg := loadedRegistry(t)

	work, err := reg.Create("Work", WithColor("red"))
	require.NoError(t, err)

	got, err := reg.Update(work.ID, UpdateFields{
		Name:  SetTo("Work"),
		Color: SetTo(Some("red")),
		Icon:  SetTo(None()),
	})
	require.NoError(t, err)
	require.Equal(t, work, got)
	require.Equal(t, 1, reg.persister.saveRequests())
	require.Len(t, reg.events.all(), 1)
}

func TestRegistry_UpdateOptionalFields(t *testing.T) {
	reg := loadedRegistry(t)

	work, err := reg.Create("Work", WithColor("red"), WithDescription("office"))
	require.NoError(t, err)

	got, err := reg.Update(work.ID, UpdateFields{
		Color:       SetTo(Some("#fff")),
		Description: SetTo(None()),
		Icon:        SetTo(Some("")),
	})
	require.NoError(t, err)
	require.Equal(t, work.ID, got.ID)
	require.Equal(t, work.Name, got.Name)
	require.Equal(t, Some("#fff"), got.Color)
	require.False(t, got.Description.Valid())
	require.Equal(t, Some(""), got.Icon)
	require.Equal(t, work.CreatedAt, got.CreatedAt)
	require.True(t, got.ModifiedAt.After(work.ModifiedAt))

	require.Equal(t, []Event{
		{Action: ActionCreate, LabelID: "work"},
		{Action: ActionUpdate, LabelID: "work"},
	}, reg.events.all())
}

func TestRegistry_Rename(t *testing.T) {
	reg := loadedRegistry(t)

	work, err := reg.Create("Work")
	require.NoError(t, err)
	_, err = reg.Create("Home")
	require.NoError(t, err)

	t.Run("ToTakenName", func(t *testing.T) {
		_, err := reg.Update(work.ID, UpdateFields{Name: SetTo("HOME")})
		require.True(t, errors.IsDuplicateName(err), "got %v", err)

		got, _ := reg.Get(work.ID)
		require.Equal(t, "Work", got.Name)
	})

	t.Run("SameNormalizedForm", func(t *testing.T) {
		got, err := reg.Update(work.ID, UpdateFields{Name: SetTo("W O R K")})
		require.NoError(t, err)
		require.Equal(t, "W O R K", got.Name)
		require.Equal(t, "work", got.NormalizedName)
		require.NoError(t, reg.Verify())
	})

	t.Run("NewName", func(t *testing.T) {
		got, err := reg.Update(work.ID, UpdateFields{Name: SetTo("Office")})
		require.NoError(t, err)
		require.Equal(t, "work", got.ID, "id never changes")
		require.Equal(t, "office", got.NormalizedName)

		_, ok := reg.GetByName("work")
		require.False(t, ok, "old index key must be removed")
		byName, ok := reg.GetByName("office")
		require.True(t, ok)
		require.Equal(t, "work", byName.ID)
		require.NoError(t, reg.Verify())
	})

	t.Run("Blank", func(t *testing.T) {
		_, err := reg.Update(work.ID, UpdateFields{Name: SetTo("  ")})
		require.True(t, errors.IsValidationError(err))
	})
}

func TestRegistry_UpdateUnknown(t *testing.T) {
	reg := loadedRegistry(t)

	_, err := reg.Update("missing", UpdateFields{Color: SetTo(Some("red"))})
	require.True(t, errors.IsNotFound(err))
}

func TestRegistry_Delete(t *testing.T) {
	reg := loadedRegistry(t)

	home, err := reg.Create("Home")
	require.NoError(t, err)

	require.NoError(t, reg.Delete(home.ID))
	require.Equal(t, []string{"devices:home", "entities:home"}, *reg.cleanups)

	_, ok := reg.Get(home.ID)
	require.False(t, ok)
	_, ok = reg.GetByName("Home")
	require.False(t, ok)
	require.Empty(t, reg.List())

	require.Equal(t, Event{Action: ActionRemove, LabelID: "home"}, reg.events.all()[1])
	require.Equal(t, 2, reg.persister.saveRequests())

	err = reg.Delete(home.ID)
	require.True(t, errors.IsNotFound(err))
	require.Len(t, *reg.cleanups, 2, "unknown ids do not reach the cleaners")
}

func TestRegistry_DeleteCleansBeforeRemoval(t *testing.T) {
	persister := &memoryPersister{}
	var reg *Registry
	var seenDuringCleanup bool
	reg = New(persister, WithReferenceCleaners(ReferenceCleanerFunc(func(id string) {
		// cleaners run under the write lock; inspect state directly
		_, seenDuringCleanup = reg.labels[id]
	})))
	require.NoError(t, reg.Load(context.Background()))

	e, err := reg.Create("Temp")
	require.NoError(t, err)
	require.NoError(t, reg.Delete(e.ID))
	require.True(t, seenDuringCleanup)
}

func TestRegistry_NotLoaded(t *testing.T) {
	reg := newTestRegistry(nil)

	_, err := reg.Create("Work")
	require.ErrorIs(t, err, errors.ErrNotLoaded)
	_, err = reg.GetOrCreate("Work")
	require.ErrorIs(t, err, errors.ErrNotLoaded)
	_, err = reg.Update("work", UpdateFields{})
	require.ErrorIs(t, err, errors.ErrNotLoaded)
	require.ErrorIs(t, reg.Delete("work"), errors.ErrNotLoaded)

	_, ok := reg.Get("work")
	require.False(t, ok)
	require.Empty(t, reg.List())
}

func TestRegistry_LoadTwice(t *testing.T) {
	reg := loadedRegistry(t)
	require.ErrorIs(t, reg.Load(context.Background()), errors.ErrAlreadyLoaded)
}

func TestRegistry_LoadFailureCanBeRetried(t *testing.T) {
	reg := newTestRegistry(nil)
	reg.persister.loadErr = stderrors.New("disk unavailable")

	err := reg.Load(context.Background())
	require.Error(t, err)
	_, err = reg.Create("Work")
	require.ErrorIs(t, err, errors.ErrNotLoaded)

	reg.persister.loadErr = nil
	require.NoError(t, reg.Load(context.Background()))
}

func TestRegistry_LoadRestoresState(t *testing.T) {
	red := "red"
	created := storagemodels.NewDateTime(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	reg := newTestRegistry(&storagemodels.Snapshot{Labels: []storagemodels.LabelRecord{
		{LabelID: "work", Name: "Work", Color: &red, CreatedAt: created, ModifiedAt: created},
		{LabelID: "legacy", Name: "Legacy Label"},
	}})
	require.NoError(t, reg.Load(context.Background()))

	work, ok := reg.GetByName("WORK")
	require.True(t, ok)
	require.Equal(t, Some("red"), work.Color)
	require.Equal(t, time.Time(*created), work.CreatedAt)

	legacy, ok := reg.Get("legacy")
	require.True(t, ok)
	require.Equal(t, "legacylabel", legacy.NormalizedName, "normalized name is recomputed")
	require.Equal(t, time.Unix(0, 0).UTC(), legacy.CreatedAt)

	require.NoError(t, reg.Verify())
	require.Zero(t, reg.persister.saveRequests(), "a clean load does not save")
	require.Empty(t, reg.events.all(), "loading does not publish")
}

func TestRegistry_LoadRepairsConflicts(t *testing.T) {
	reg := newTestRegistry(&storagemodels.Snapshot{Labels: []storagemodels.LabelRecord{
		{LabelID: "work", Name: "Work"},
		{LabelID: "work", Name: "Shadow"},
		{LabelID: "work_2", Name: "WORK"},
		{LabelID: "work_3", Name: "work 2"},
		{LabelID: "", Name: "Nameless"},
	}})
	require.NoError(t, reg.Load(context.Background()))

	require.Equal(t, 3, reg.Len())
	_, ok := reg.GetByName("Shadow")
	require.False(t, ok, "duplicate id keeps the first record")

	renamed, _ := reg.Get("work_2")
	require.Equal(t, "WORK 2", renamed.Name)
	next, _ := reg.Get("work_3")
	require.Equal(t, "work 2 2", next.Name)

	require.NoError(t, reg.Verify())
	require.Equal(t, 1, reg.persister.saveRequests(), "repairs are saved")
}

func TestRegistry_CloseFlushesPendingSave(t *testing.T) {
	reg := loadedRegistry(t)

	_, err := reg.Create("Work", WithColor("indigo"))
	require.NoError(t, err)
	_, err = reg.Create("Home")
	require.NoError(t, err)

	require.NoError(t, reg.Close(context.Background()))
	require.Equal(t, 1, reg.persister.flushCount)

	stored := reg.persister.stored
	require.NotNil(t, stored)
	require.Len(t, stored.Labels, 2)
	require.Equal(t, "home", stored.Labels[0].LabelID)
	require.Equal(t, "indigo", *stored.Labels[1].Color)
	require.Nil(t, stored.Labels[1].Icon)
}

func TestRegistry_SnapshotTakenAtFlushTime(t *testing.T) {
	reg := loadedRegistry(t)

	_, err := reg.Create("Work")
	require.NoError(t, err)
	// the last mutation before the flush must be included
	_, err = reg.Update("work", UpdateFields{Color: SetTo(Some("green"))})
	require.NoError(t, err)

	require.NoError(t, reg.Close(context.Background()))
	require.Equal(t, "green", *reg.persister.stored.Labels[0].Color)
}

func TestRegistry_Scenario(t *testing.T) {
	reg := loadedRegistry(t)

	work, err := reg.Create("Work")
	require.NoError(t, err)
	home, err := reg.Create("Home")
	require.NoError(t, err)
	require.Len(t, reg.List(), 2)

	before := len(reg.events.all())
	updated, err := reg.Update(work.ID, UpdateFields{Color: SetTo(Some("#fff"))})
	require.NoError(t, err)
	require.Equal(t, work.ID, updated.ID)
	require.Equal(t, work.Name, updated.Name)
	require.Equal(t, Some("#fff"), updated.Color)

	events := reg.events.all()[before:]
	require.Equal(t, []Event{{Action: ActionUpdate, LabelID: work.ID}}, events)

	require.NoError(t, reg.Delete(home.ID))
	_, ok := reg.GetByName("Home")
	require.False(t, ok)
	require.Equal(t, []string{"devices:" + home.ID, "entities:" + home.ID}, *reg.cleanups)
}

func TestRegistry_VerifyDetectsDivergence(t *testing.T) {
	reg := loadedRegistry(t)
	_, err := reg.Create("Work")
	require.NoError(t, err)

	reg.mu.Lock()
	reg.nameIndex["ghost"] = "ghost"
	reg.mu.Unlock()

	require.True(t, errors.IsInvariantViolation(reg.Verify()))
}
