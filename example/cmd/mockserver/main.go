// Standalone mock scheduler for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	SLOTWATCH_API_URL=http://localhost:9999/schedulerapi go run ./cmd/slotwatch locations
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"
)

// openEvery is how many requests a location answers empty before it
// reports a slot once.
const openEvery = 5

func main() {
	fmt.Println("Mock scheduler starting on :9999")
	fmt.Printf("Each location reports one slot every %d requests\n", openEvery)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	var (
		requests = make(map[string]int)
		mu       sync.Mutex
	)

	http.HandleFunc("/schedulerapi/locations/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": 5446, "name": "San Francisco Global Entry Enrollment Center", "city": "San Francisco", "state": "CA"},
			{"id": 5020, "name": "Blaine Global Entry Enrollment Center", "city": "Blaine", "state": "WA"},
		})
	})

	http.HandleFunc("/schedulerapi/slots", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("locationId")

		mu.Lock()
		requests[id]++
		n := requests[id]
		mu.Unlock()

		slots := []map[string]any{}
		if n%openEvery == 0 {
			locationID, _ := strconv.Atoi(id)
			start := time.Now().AddDate(0, 0, 10).Truncate(time.Hour)
			slots = append(slots, map[string]any{
				"locationId":     locationID,
				"startTimestamp": start.Format("2006-01-02T15:04"),
				"endTimestamp":   start.Add(15 * time.Minute).Format("2006-01-02T15:04"),
			})
			slog.Info("slot opened", "location_id", id)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(slots)
	})

	if err := http.ListenAndServe(":9999", nil); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
