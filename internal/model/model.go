// Package model holds the domain types shared by the slotwatch packages.
//
// The main types are:
//
//   - [LocationID]: identifier of an enrollment location
//   - [Timeslot]: one bookable appointment start time
//   - [TimeslotSet]: deduplicated, chronologically sorted timeslots
//   - [LocationMapping]: location id to display label
//   - [PollResult]: per-location timeslots for a single polling round
package model

import (
	"fmt"
	"slices"
	"time"
)

// TimeslotLayout is the wire format of a timeslot start timestamp.
const TimeslotLayout = "2006-01-02T15:04"

// DateLayout is the format of a cutoff date.
const DateLayout = "2006-01-02"

// LocationID identifies a schedulable location.
type LocationID int

// LocationMapping maps location ids to human readable labels.
type LocationMapping map[LocationID]string

// Label returns the label for id, or a generic "Location <id>" label when
// the id is unknown.
func (m LocationMapping) Label(id LocationID) string {
	if label, ok := m[id]; ok {
		return label
	}
	return fmt.Sprintf("Location %d", id)
}

// Timeslot is a bookable appointment start time. It has no timezone offset;
// the wall clock is the service's local time, stored as UTC.
type Timeslot struct {
	time.Time
}

// ParseTimeslot parses a "YYYY-MM-DDTHH:MM" timestamp.
func ParseTimeslot(s string) (Timeslot, error) {
	t, err := time.Parse(TimeslotLayout, s)
	if err != nil {
		return Timeslot{}, err
	}
	return Timeslot{Time: t}, nil
}

// ParseDate parses a "YYYY-MM-DD" date as midnight of that day.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// String returns the timeslot in wire format.
func (t Timeslot) String() string {
	return t.Format(TimeslotLayout)
}

// TimeslotSet is a sorted sequence of distinct timeslots.
type TimeslotSet []Timeslot

// NewTimeslotSet returns the distinct timeslots of slots in ascending order.
// The input slice is not modified.
func NewTimeslotSet(slots []Timeslot) TimeslotSet {
	set := make(TimeslotSet, 0, len(slots))
	seen := make(map[int64]struct{}, len(slots))
	for _, s := range slots {
		key := s.UnixNano()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		set = append(set, s)
	}
	slices.SortFunc(set, func(a, b Timeslot) int {
		return a.Compare(b.Time)
	})
	return set
}

// Before returns the timeslots strictly earlier than cutoff, preserving order.
func (s TimeslotSet) Before(cutoff time.Time) TimeslotSet {
	kept := make(TimeslotSet, 0, len(s))
	for _, t := range s {
		if t.Time.Before(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// PollResult maps location ids to the timeslots found in one polling round.
//
// Iteration order is the order in which ids were first set. Setting an id
// again replaces its timeslots without moving it. The zero value is ready
// to use.
type PollResult struct {
	order []LocationID
	sets  map[LocationID]TimeslotSet
}

// NewPollResult returns an empty PollResult sized for n locations.
func NewPollResult(n int) *PollResult {
	return &PollResult{
		order: make([]LocationID, 0, n),
		sets:  make(map[LocationID]TimeslotSet, n),
	}
}

// Set stores the timeslots for id.
func (r *PollResult) Set(id LocationID, slots TimeslotSet) {
	if r.sets == nil {
		r.sets = make(map[LocationID]TimeslotSet)
	}
	if _, exists := r.sets[id]; !exists {
		r.order = append(r.order, id)
	}
	r.sets[id] = slots
}

// Get returns the timeslots stored for id and whether id is present.
func (r *PollResult) Get(id LocationID) (TimeslotSet, bool) {
	if r == nil {
		return nil, false
	}
	slots, ok := r.sets[id]
	return slots, ok
}

// IDs returns the location ids in iteration order.
func (r *PollResult) IDs() []LocationID {
	if r == nil {
		return nil
	}
	return slices.Clone(r.order)
}

// Len returns the number of locations in the result.
func (r *PollResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// Any reports whether at least one location has a timeslot.
func (r *PollResult) Any() bool {
	return r.Count() > 0
}

// Count returns the total number of timeslots across all locations.
func (r *PollResult) Count() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, slots := range r.sets {
		n += len(slots)
	}
	return n
}
