package notify

import (
	"strconv"
	"strings"

	"github.com/jpalmerr/slotwatch/internal/model"
)

const (
	// Banner opens every notification.
	Banner = "✈️ Global Entry Timeslot Bot ✈️"

	// NothingFound is appended when no location has a timeslot and the
	// caller did not ask for silence.
	NothingFound = "No open timeslots found!"

	// timeslotLayout renders e.g. "March 1, 2024 (Fri) @ 9:00 AM".
	timeslotLayout = "January 2, 2006 (Mon) @ 3:04 PM"

	indent = "    "
)

// Format renders a poll result as text blocks.
//
// The first block is always [Banner]. Each location with at least one
// timeslot adds a block made of a "<label> (<id>)" header and one indented
// line per timeslot, in result order. When no location has a timeslot,
// [NothingFound] is appended unless silent is set.
func Format(mapping model.LocationMapping, result *model.PollResult, silent bool) []string {
	blocks := []string{Banner}

	for _, id := range result.IDs() {
		slots, _ := result.Get(id)
		if len(slots) == 0 {
			continue
		}
		blocks = append(blocks, formatLocation(mapping, id, slots))
	}

	if len(blocks) == 1 && !silent {
		blocks = append(blocks, NothingFound)
	}
	return blocks
}

// FormatTimeslot renders a single timeslot without leading zeros in the
// day of month or hour.
func FormatTimeslot(t model.Timeslot) string {
	return t.Format(timeslotLayout)
}

// BannerOnly reports whether blocks carry nothing beyond the banner.
func BannerOnly(blocks []string) bool {
	return len(blocks) <= 1
}

func formatLocation(mapping model.LocationMapping, id model.LocationID, slots model.TimeslotSet) string {
	var b strings.Builder
	b.WriteString(mapping.Label(id))
	b.WriteString(" (")
	b.WriteString(strconv.Itoa(int(id)))
	b.WriteString(")")
	for _, s := range slots {
		b.WriteString("\n")
		b.WriteString(indent)
		b.WriteString(FormatTimeslot(s))
	}
	return b.String()
}
