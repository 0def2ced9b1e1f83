// Package listsync keeps a paginated, date-filtered list of meetups in sync
// with the server.
//
// A Controller is a plain state machine. Every entry point mutates the state
// and returns at most one Request; the caller runs it against a Transport and
// hands the Result back through Complete. The controller is not safe for
// concurrent use: it is meant to be driven from a single loop such as a
// bubbletea Update function, where fetches run as commands and their results
// arrive back as messages.
package listsync

import (
	"context"
	"time"

	"github.com/abelbrown/meetapp/internal/meetup"
)

// Transport is the remote collaborator.
type Transport interface {
	// ListMeetups returns one page of meetups for the day of q.Date in server order.
	ListMeetups(ctx context.Context, q Query) ([]meetup.Meetup, error)
	// Subscribe registers the current user to a meetup.
	Subscribe(ctx context.Context, id meetup.ID) error
}

// ServerError is implemented by transport errors that carry a message
// produced by the server (the "error" field of a failure body).
type ServerError interface {
	error
	ServerMessage() string
}

// Query selects one page.
type Query struct {
	Date     time.Time
	Page     int
	PageSize int
}

// Trigger names what caused a request.
type Trigger int

const (
	TriggerMount Trigger = iota
	TriggerFilter
	TriggerRefresh
	TriggerMore
	TriggerUser
)

func (t Trigger) String() string {
	switch t {
	case TriggerMount:
		return "mount"
	case TriggerFilter:
		return "filter"
	case TriggerRefresh:
		return "refresh"
	case TriggerMore:
		return "more"
	case TriggerUser:
		return "user"
	default:
		return "unknown"
	}
}

// Request is a fetch the controller wants executed.
// Seq identifies it; a Result must carry the same Seq.
type Request struct {
	Seq     uint64
	Query   Query
	User    meetup.UserID
	Trigger Trigger
}

// Result is the outcome of running a Request.
type Result struct {
	Seq     uint64
	Records []meetup.Meetup
	Err     error
}

// NoticeKind mirrors the flash message types of the notification sink.
type NoticeKind int

const (
	NoticeSuccess NoticeKind = iota
	NoticeDanger
)

func (k NoticeKind) String() string {
	if k == NoticeSuccess {
		return "success"
	}
	return "danger"
}

// Notice is a user-facing notification.
type Notice struct {
	Kind    NoticeKind
	Message string
}

const (
	msgSubscribed      = "Subscribed to meeting!"
	msgConnectionError = "Connection error."
)
