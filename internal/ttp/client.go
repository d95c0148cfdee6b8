// Package ttp is a client for the Trusted Traveler Programs scheduler API.
//
// It resolves enrollment location labels and fetches open interview
// timeslots for a location. All network access goes through a [Getter], so
// the client can be exercised against fakes or an httptest server.
package ttp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jpalmerr/slotwatch/internal/model"
)

const (
	// DefaultBaseURL is the production scheduler API.
	DefaultBaseURL = "https://ttp.cbp.dhs.gov/schedulerapi"

	// DefaultServiceName selects which program's locations are listed.
	DefaultServiceName = "Global Entry"
)

// Location is one record of the location-list endpoint.
type Location struct {
	ID    model.LocationID `json:"id"`
	Name  string           `json:"name"`
	City  string           `json:"city"`
	State string           `json:"state"`
}

// Label formats the location as "<name> (<city>, <state>)".
func (l Location) Label() string {
	return fmt.Sprintf("%s (%s, %s)", l.Name, l.City, l.State)
}

// Slot is one record of the timeslot endpoint. Only the start is used.
type Slot struct {
	LocationID     model.LocationID `json:"locationId"`
	StartTimestamp string           `json:"startTimestamp"`
	EndTimestamp   string           `json:"endTimestamp"`
}

// Client queries the scheduler API.
type Client struct {
	getter      Getter
	baseURL     string
	serviceName string
}

// NewClient creates a [Client]. Empty baseURL and serviceName fall back to
// [DefaultBaseURL] and [DefaultServiceName].
func NewClient(getter Getter, baseURL, serviceName string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if serviceName == "" {
		serviceName = DefaultServiceName
	}
	return &Client{
		getter:      getter,
		baseURL:     strings.TrimRight(baseURL, "/"),
		serviceName: serviceName,
	}
}

// LocationsURL returns the location-list endpoint URL.
func (c *Client) LocationsURL() string {
	q := url.Values{}
	q.Set("temporary", "false")
	q.Set("inviteOnly", "false")
	q.Set("operational", "true")
	q.Set("serviceName", c.serviceName)
	return c.baseURL + "/locations/?" + q.Encode()
}

// TimeslotsURL returns the timeslot endpoint URL for a location.
func (c *Client) TimeslotsURL(id model.LocationID, limit int) string {
	q := url.Values{}
	q.Set("orderBy", "soonest")
	q.Set("limit", strconv.Itoa(limit))
	q.Set("locationId", strconv.Itoa(int(id)))
	q.Set("minimum", "1")
	return c.baseURL + "/slots?" + q.Encode()
}

// Locations fetches every operational location and returns id to label.
func (c *Client) Locations(ctx context.Context) (model.LocationMapping, error) {
	var locations []Location
	if err := c.getJSON(ctx, c.LocationsURL(), &locations); err != nil {
		return nil, err
	}

	mapping := make(model.LocationMapping, len(locations))
	for _, loc := range locations {
		mapping[loc.ID] = loc.Label()
	}
	return mapping, nil
}

// Timeslots fetches up to limit open slots for a location and returns them
// deduplicated in ascending order.
func (c *Client) Timeslots(ctx context.Context, id model.LocationID, limit int) (model.TimeslotSet, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	var slots []Slot
	if err := c.getJSON(ctx, c.TimeslotsURL(id, limit), &slots); err != nil {
		return nil, err
	}

	parsed := make([]model.Timeslot, 0, len(slots))
	for _, s := range slots {
		ts, err := model.ParseTimeslot(s.StartTimestamp)
		if err != nil {
			return nil, &MalformedTimeslotError{LocationID: id, Value: s.StartTimestamp, Err: err}
		}
		parsed = append(parsed, ts)
	}
	return model.NewTimeslotSet(parsed), nil
}

func (c *Client) getJSON(ctx context.Context, u string, v any) error {
	resp := c.getter.Get(ctx, u)
	if resp.Error != nil {
		return fmt.Errorf("GET %s: %w", u, resp.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return &RemoteServiceError{URL: u, StatusCode: resp.StatusCode, Body: resp.Body}
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("decode %s: %w (body: %s)", u, err, truncate(resp.Body))
	}
	return nil
}
