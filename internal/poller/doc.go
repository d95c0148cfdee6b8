// Package poller implements the round-robin timeslot polling loop.
//
// The main components are:
//
//   - [Jitter]: randomized delay around a fixed base interval
//   - [Poller]: sequential rounds over a list of locations
//   - [Query]: the locations, cutoff and limit polled every round
//   - [SlotSource]: the per-location timeslot fetcher the poller drives
//
// Polling is strictly sequential: one request at a time, a jittered sleep
// after each location, and a further sleep between rounds. The loop stops
// when a round finds any timeslot or when the context is cancelled.
package poller
