/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package labels

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Night Mode", "nightmode"},
		{"nightmode", "nightmode"},
		{"NIGHTMODE", "nightmode"},
		{" f o o ", "foo"},
		{"Tab\tand\nnewline", "tabandnewline"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, NormalizeName(tt.in))
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Work", "work"},
		{"Night Mode", "night_mode"},
		{"  Living -- Room  ", "living_room"},
		{"Café", "cafe"},
		{"Zone 51", "zone_51"},
		{"", "unknown"},
		{"!!!", "unknown"},
		{"Straße", "strasse"},
		{"Ørsted", "orsted"},
		{"Łódź", "lodz"},
		{"Работа", "rabota"},
		{"日本", "ri_ben"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestOptional(t *testing.T) {
	none := None()
	_, ok := none.Get()
	require.False(t, ok)
	require.Nil(t, none.Ptr())
	require.Equal(t, Optional{}, none)

	empty := Some("")
	v, ok := empty.Get()
	require.True(t, ok)
	require.Equal(t, "", v)
	require.NotEqual(t, none, empty, "an explicit empty string is not absent")

	p := Some("red").Ptr()
	require.Equal(t, "red", *p)
	require.Equal(t, Some("red"), OptionalFromPtr(p))
	require.Equal(t, None(), OptionalFromPtr(nil))
}

func TestField(t *testing.T) {
	var zero Field[string]
	require.False(t, zero.IsSet())
	require.Equal(t, Unchanged[string](), zero)

	f := SetTo("x")
	v, ok := f.Get()
	require.True(t, ok)
	require.Equal(t, "x", v)

	cleared := SetTo(None())
	require.True(t, cleared.IsSet())
}

func TestEntryRecordRoundTrip(t *testing.T) {
	e := Entry{
		ID:             "work",
		Name:           "Work",
		NormalizedName: "work",
		Color:          Some("indigo"),
		CreatedAt:      fixedNow,
		ModifiedAt:     fixedNow,
	}

	rec := e.toRecord()
	require.Nil(t, rec.Description)
	require.Nil(t, rec.Icon)

	require.Equal(t, e, entryFromRecord(rec))
}
