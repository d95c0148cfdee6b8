package main

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"
)

type mockLocation struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	City  string `json:"city"`
	State string `json:"state"`
}

type mockSlot struct {
	LocationID     int    `json:"locationId"`
	StartTimestamp string `json:"startTimestamp"`
	EndTimestamp   string `json:"endTimestamp"`
}

var mockLocations = []mockLocation{
	{ID: 5446, Name: "San Francisco Global Entry Enrollment Center", City: "San Francisco", State: "CA"},
	{ID: 5020, Name: "Blaine Global Entry Enrollment Center", City: "Blaine", State: "WA"},
}

// StartMockScheduler runs a mock scheduler API under /schedulerapi. Every
// location reports nothing until it has been asked openAfter times, then
// offers a few slots a week or two out.
// Call this in a goroutine before creating the watcher.
func StartMockScheduler(addr string, openAfter int) {
	var (
		requests = make(map[string]int)
		mu       sync.Mutex
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/schedulerapi/locations/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(mockLocations)
	})
	mux.HandleFunc("/schedulerapi/slots", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("locationId")
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		// simulate small latency variance
		time.Sleep(time.Duration(50+rand.Intn(150)) * time.Millisecond)

		mu.Lock()
		requests[id]++
		n := requests[id]
		mu.Unlock()

		slots := []mockSlot{}
		if n > openAfter {
			locationID, _ := strconv.Atoi(id)
			start := time.Now().AddDate(0, 0, 7+rand.Intn(7)).Truncate(time.Hour)
			for i := 0; i < 3 && i < limit; i++ {
				s := start.Add(time.Duration(i) * 15 * time.Minute)
				slots = append(slots, mockSlot{
					LocationID:     locationID,
					StartTimestamp: s.Format("2006-01-02T15:04"),
					EndTimestamp:   s.Add(15 * time.Minute).Format("2006-01-02T15:04"),
				})
			}
			slog.Info("slots opened", "location_id", id, "count", len(slots))
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(slots); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("mock server error", "error", err)
	}
}
