// Package export writes found timeslots as an iCalendar file so they can be
// dropped straight into a calendar app.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/emersion/go-ical"

	"github.com/jpalmerr/slotwatch/internal/model"
)

const (
	productID = "-//slotwatch//Timeslot Export//EN"

	// SlotDuration is the length given to each exported appointment.
	SlotDuration = 15 * time.Minute

	// floatingLayout is an iCalendar DATE-TIME without a zone (local time).
	floatingLayout = "20060102T150405"
)

// ErrNoTimeslots is returned when there is nothing to export.
var ErrNoTimeslots = errors.New("no timeslots to export")

// Calendar builds an iCalendar with one VEVENT per timeslot in result.
// Start and end times are floating, matching the service's local wall clock.
// stamp is the DTSTAMP of every event.
func Calendar(mapping model.LocationMapping, result *model.PollResult, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	for _, id := range result.IDs() {
		slots, _ := result.Get(id)
		for _, s := range slots {
			cal.Children = append(cal.Children, event(mapping, id, s, stamp).Component)
		}
	}
	return cal
}

// WriteCalendar encodes the calendar for result to w. It returns
// [ErrNoTimeslots] when result holds no timeslot.
func WriteCalendar(w io.Writer, mapping model.LocationMapping, result *model.PollResult, stamp time.Time) error {
	if !result.Any() {
		return ErrNoTimeslots
	}
	if err := ical.NewEncoder(w).Encode(Calendar(mapping, result, stamp)); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

// WriteCalendarFile writes the calendar for result to path, replacing any
// existing file.
func WriteCalendarFile(path string, mapping model.LocationMapping, result *model.PollResult, stamp time.Time) error {
	var buf bytes.Buffer
	if err := WriteCalendar(&buf, mapping, result, stamp); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create calendar directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write calendar file: %w", err)
	}
	return nil
}

func event(mapping model.LocationMapping, id model.LocationID, s model.Timeslot, stamp time.Time) *ical.Event {
	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, uid(id, s))
	ev.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	ev.Props.Set(floating(ical.PropDateTimeStart, s.Time))
	ev.Props.Set(floating(ical.PropDateTimeEnd, s.Add(SlotDuration)))
	ev.Props.SetText(ical.PropSummary, "Interview slot: "+mapping.Label(id))
	ev.Props.SetText(ical.PropLocation, mapping.Label(id))
	return ev
}

func floating(name string, t time.Time) *ical.Prop {
	prop := ical.NewProp(name)
	prop.Value = t.Format(floatingLayout)
	return prop
}

// uid is stable per location and start so re-imports update in place.
func uid(id model.LocationID, s model.Timeslot) string {
	return strconv.Itoa(int(id)) + "-" + s.Format(floatingLayout) + "@slotwatch"
}
