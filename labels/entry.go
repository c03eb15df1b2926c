/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package labels

import (
	"strings"
	"time"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/suparena/labelregistry/storagemodels"
)

// Entry is an immutable label value. Updates replace it wholesale.
type Entry struct {
	ID             string
	Name           string
	NormalizedName string
	Color          Optional
	Description    Optional
	Icon           Optional
	CreatedAt      time.Time
	ModifiedAt     time.Time
}

// Optional is a string attribute that may be absent. The zero value is absent.
type Optional struct {
	value string
	valid bool
}

// Some returns a present Optional holding v. The empty string is a valid value.
func Some(v string) Optional {
	return Optional{value: v, valid: true}
}

// None returns an absent Optional.
func None() Optional {
	return Optional{}
}

// OptionalFromPtr maps nil to None and anything else to Some(*p).
func OptionalFromPtr(p *string) Optional {
	if p == nil {
		return None()
	}
	return Some(*p)
}

// Get returns the value and whether it is present.
func (o Optional) Get() (string, bool) {
	return o.value, o.valid
}

// Valid reports whether a value is present.
func (o Optional) Valid() bool {
	return o.valid
}

// OrEmpty returns the value or "" when absent.
func (o Optional) OrEmpty() string {
	return o.value
}

// Ptr returns a pointer to a copy of the value, or nil when absent.
func (o Optional) Ptr() *string {
	if !o.valid {
		return nil
	}
	v := o.value
	return &v
}

// NormalizeName case-folds name and strips all whitespace. The result is the
// uniqueness key of a label and is never shown to users.
func NormalizeName(name string) string {
	folded := cases.Fold().String(name)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, folded)
}

// Slugify turns a display name into a lowercase, underscore-joined ASCII token.
// Non-ASCII letters are transliterated ("Straße" -> "strasse", "Работа" ->
// "rabota"); runs of any other character become a single separator. A name
// with nothing usable yields "unknown".
func Slugify(name string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}
	stripped = unidecode.Unidecode(stripped)

	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(stripped) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}

	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}

func (e Entry) toRecord() storagemodels.LabelRecord {
	return storagemodels.LabelRecord{
		LabelID:     e.ID,
		Name:        e.Name,
		Color:       e.Color.Ptr(),
		Description: e.Description.Ptr(),
		Icon:        e.Icon.Ptr(),
		CreatedAt:   storagemodels.NewDateTime(e.CreatedAt),
		ModifiedAt:  storagemodels.NewDateTime(e.ModifiedAt),
	}
}

func entryFromRecord(rec storagemodels.LabelRecord) Entry {
	return Entry{
		ID:             rec.LabelID,
		Name:           rec.Name,
		NormalizedName: NormalizeName(rec.Name),
		Color:          OptionalFromPtr(rec.Color),
		Description:    OptionalFromPtr(rec.Description),
		Icon:           OptionalFromPtr(rec.Icon),
		CreatedAt:      storagemodels.TimeOrEpoch(rec.CreatedAt),
		ModifiedAt:     storagemodels.TimeOrEpoch(rec.ModifiedAt),
	}
}
