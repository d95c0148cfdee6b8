// Package slotwatch watches the Trusted Traveler Programs scheduler for open
// interview timeslots and notifies you when one appears.
//
// slotwatch polls a list of enrollment locations one at a time, pausing a
// jittered two seconds between requests, and repeats full rounds until any
// location reports a timeslot. It then emails the findings (and optionally
// posts them to Slack and writes an iCalendar file).
//
// # Quick Start
//
//	mailer, _ := ... // see the config package for building a notifier
//
//	w, err := slotwatch.New(
//	    slotwatch.WithLocationIDs(5446, 5020),
//	    slotwatch.WithCutoff(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)),
//	    slotwatch.WithNotifier(notifier),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//
//	report, err := w.Watch(ctx)
//
// # Cutoff
//
// [WithCutoff] keeps only timeslots strictly before midnight of the cutoff
// date. A slot at exactly 00:00 on the cutoff date is dropped.
//
// # Modes
//
// [Watcher.Watch] runs until something is found; there is no round limit.
// [Watcher.Check] runs a single round and reports either the findings or
// "No open timeslots found!", which [WithSilent] suppresses. Check suits a
// cron job.
//
// # Errors
//
// Remote failures surface as [*RemoteServiceError], unparseable timestamps
// as [*MalformedTimeslotError], and rejected notifications as
// [*DeliveryError]. None are retried; use errors.As to inspect them.
package slotwatch
