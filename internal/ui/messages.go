// Package ui is the Bubble Tea list screen.
package ui

import (
	"time"

	"github.com/abelbrown/meetapp/internal/listsync"
	"github.com/abelbrown/meetapp/internal/meetup"
)

// PageLoaded carries the outcome of one page request back to Update.
type PageLoaded struct {
	Result listsync.Result
	Dur    time.Duration
}

// SubscribeDone carries the outcome of a subscribe call.
type SubscribeDone struct {
	ID  meetup.ID
	Err error
}

// flashExpired clears the flash bar if it still shows notice seq.
type flashExpired struct {
	seq int
}
