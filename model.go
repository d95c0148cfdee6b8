package slotwatch

import (
	"github.com/jpalmerr/slotwatch/internal/model"
	"github.com/jpalmerr/slotwatch/internal/notify"
	"github.com/jpalmerr/slotwatch/internal/ttp"
)

// LocationID identifies an enrollment location.
type LocationID = model.LocationID

// Timeslot is one bookable appointment start, in the service's local time.
type Timeslot = model.Timeslot

// TimeslotSet is a deduplicated, ascending sequence of timeslots.
type TimeslotSet = model.TimeslotSet

// LocationMapping maps location ids to "<name> (<city>, <state>)" labels.
type LocationMapping = model.LocationMapping

// PollResult holds the timeslots found per location in one polling round,
// in the order the locations were polled.
type PollResult = model.PollResult

// RemoteServiceError reports a non-200 response from the scheduler API.
type RemoteServiceError = ttp.RemoteServiceError

// MalformedTimeslotError reports an unparseable timestamp from the API.
type MalformedTimeslotError = ttp.MalformedTimeslotError

// DeliveryError reports that a notification transport rejected a send.
type DeliveryError = notify.DeliveryError

var (
	// ParseTimeslot parses a "YYYY-MM-DDTHH:MM" timestamp.
	ParseTimeslot = model.ParseTimeslot

	// ParseDate parses a "YYYY-MM-DD" cutoff date.
	ParseDate = model.ParseDate

	// NewTimeslotSet dedupes and sorts timeslots.
	NewTimeslotSet = model.NewTimeslotSet
)
