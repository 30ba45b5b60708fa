// Package models defines the nutrition-tracking data shared by the local and
// remote stores.
package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-day key stored alongside every entry.
const DateLayout = "2006-01-02"

// TimeOfDayLayout is the clock time stored alongside every entry.
const TimeOfDayLayout = "15:04"

// DefaultConfidence is applied when an entry arrives without a score.
const DefaultConfidence = 1.0

// Ingredient is one component of a tracked meal.
type Ingredient struct {
	Name     string  `json:"name"`
	Grams    float64 `json:"grams"`
	Calories int     `json:"calories"`
}

// Entry is one tracked nutrition event.
type Entry struct {
	// ID is unique per user; saves with an existing ID replace the entry.
	ID string `json:"id"`

	// UserID is the owner. It is always overwritten on save.
	UserID string `json:"user_id"`

	// Timestamp is an RFC3339 instant.
	Timestamp string `json:"timestamp"`
	// Date and TimeOfDay are derived from Timestamp for query efficiency.
	Date      string `json:"date"`
	TimeOfDay string `json:"time_of_day"`

	Label string `json:"label"`

	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`

	Confidence float64 `json:"confidence"`

	// Image is a large opaque payload, omitted by the lite projection.
	Image *string `json:"image,omitempty"`

	// Manual marks entries typed in by hand rather than recognised.
	Manual *bool `json:"manual,omitempty"`

	Ingredients []Ingredient `json:"ingredients"`

	// AISnapshot keeps the raw recognition response for audit and re-edit.
	AISnapshot json.RawMessage `json:"ai_snapshot,omitempty"`
}

// Lite returns a copy of e without the large fields.
func (e Entry) Lite() Entry {
	e.Image = nil
	e.AISnapshot = nil
	return e
}

// Clone returns a deep copy of e.
func (e Entry) Clone() Entry {
	if e.Image != nil {
		img := *e.Image
		e.Image = &img
	}
	if e.Manual != nil {
		m := *e.Manual
		e.Manual = &m
	}
	if e.Ingredients != nil {
		e.Ingredients = append(make([]Ingredient, 0, len(e.Ingredients)), e.Ingredients...)
	}
	if e.AISnapshot != nil {
		e.AISnapshot = append(make(json.RawMessage, 0, len(e.AISnapshot)), e.AISnapshot...)
	}
	return e
}

// Normalize fills defaults and re-derives Date and TimeOfDay from Timestamp
// so they never drift. An empty Timestamp is set to now.
func (e *Entry) Normalize(now time.Time) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	var ts time.Time
	if e.Timestamp == "" {
		ts = now
		e.Timestamp = ts.Format(time.RFC3339)
	} else {
		parsed, err := time.Parse(time.RFC3339, e.Timestamp)
		if err != nil {
			return fmt.Errorf("%w: timestamp %q: %v", ErrInvalidEntry, e.Timestamp, err)
		}
		ts = parsed
	}
	e.Date = ts.Format(DateLayout)
	e.TimeOfDay = ts.Format(TimeOfDayLayout)

	if e.Confidence == 0 {
		e.Confidence = DefaultConfidence
	}
	if e.Ingredients == nil {
		e.Ingredients = []Ingredient{}
	}
	return e.Validate()
}

// Validate checks the numeric invariants of the entry.
func (e *Entry) Validate() error {
	if e.Calories < 0 || e.Protein < 0 || e.Carbs < 0 || e.Fat < 0 {
		return fmt.Errorf("%w: calories and macros must be non-negative", ErrInvalidEntry)
	}
	return nil
}

// Aggregate returns the aggregate projection of e.
func (e Entry) Aggregate() EntryAggregate {
	return EntryAggregate{
		ID:       e.ID,
		Date:     e.Date,
		Calories: e.Calories,
		Protein:  e.Protein,
		Carbs:    e.Carbs,
		Fat:      e.Fat,
	}
}

// EntryAggregate is the aggregate projection: identifiers and macros only.
type EntryAggregate struct {
	ID       string
	Date     string
	Calories int
	Protein  int
	Carbs    int
	Fat      int
}

// SortNewestFirst orders entries by timestamp, newest first. Unparseable
// timestamps sort last.
func SortNewestFirst(entries []Entry) {
	keys := make([]time.Time, len(entries))
	for i := range entries {
		keys[i], _ = time.Parse(time.RFC3339, entries[i].Timestamp)
	}
	sort.Stable(byTimeDesc{entries: entries, keys: keys})
}

type byTimeDesc struct {
	entries []Entry
	keys    []time.Time
}

func (b byTimeDesc) Len() int           { return len(b.entries) }
func (b byTimeDesc) Less(i, j int) bool { return b.keys[i].After(b.keys[j]) }
func (b byTimeDesc) Swap(i, j int) {
	b.entries[i], b.entries[j] = b.entries[j], b.entries[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}
