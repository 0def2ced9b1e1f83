package listsync

import "fmt"

// Phase is the fetch gate. It replaces independent loading, refreshing,
// fetching and end-of-list booleans with one state so that only the
// combinations below are reachable.
type Phase int

const (
	// Idle: a page is shown and more may be requested.
	Idle Phase = iota
	// LoadingFirstPage: first fetch after mount, filter or user change.
	// The whole list is replaced by a spinner.
	LoadingFirstPage
	// Refreshing: pull-to-refresh fetch of the first page.
	Refreshing
	// LoadingMore: a following page is in flight.
	LoadingMore
	// Exhausted: the last page came back empty.
	Exhausted
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case LoadingFirstPage:
		return "loading"
	case Refreshing:
		return "refreshing"
	case LoadingMore:
		return "loading-more"
	case Exhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// InFlight reports whether the phase waits on a fetch.
func (p Phase) InFlight() bool {
	return p == LoadingFirstPage || p == Refreshing || p == LoadingMore
}

// settle is the phase a completed fetch lands in.
func settle(empty bool) Phase {
	if empty {
		return Exhausted
	}
	return Idle
}
