// Package meetup defines the meetup record shared by the transport, the
// page cache and the list synchronizer.
package meetup

import "time"

// ID identifies a meetup on the server.
type ID int

// UserID identifies a signed-in user.
type UserID int

// Banner is the uploaded cover image of a meetup.
type Banner struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

// Organizer is the user that created the meetup.
type Organizer struct {
	ID   UserID `json:"id"`
	Name string `json:"name"`
}

// Subscription is one user's registration to a meetup.
type Subscription struct {
	UserID UserID `json:"user_id"`
}

// Meetup is a record as returned by GET meetups.
// Subscribed and FormattedDate are derived on ingest and never sent back.
type Meetup struct {
	ID            ID             `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description,omitempty"`
	Location      string         `json:"location"`
	Banner        Banner         `json:"banner"`
	Organizer     Organizer      `json:"user"`
	Date          time.Time      `json:"date"`
	UserID        UserID         `json:"user_id"`
	Past          bool           `json:"past"`
	Subscriptions []Subscription `json:"Subscriptions"`

	Subscribed    bool   `json:"-"`
	FormattedDate string `json:"-"`
}

// Action is the state of the subscribe button for a meetup.
type Action int

const (
	ActionSubscribe Action = iota
	ActionSubscribed
	ActionUnavailable
)

// String returns the button label.
func (a Action) String() string {
	switch a {
	case ActionSubscribed:
		return "Subscribed!"
	case ActionUnavailable:
		return "Not available anymore"
	default:
		return "Subscribe"
	}
}

// Action reports which button a row shows. Past wins over subscribed.
func (m Meetup) Action() Action {
	switch {
	case m.Past:
		return ActionUnavailable
	case m.Subscribed:
		return ActionSubscribed
	default:
		return ActionSubscribe
	}
}

// CanSubscribe reports whether subscribing is offered for the row.
func (m Meetup) CanSubscribe() bool {
	return m.Action() == ActionSubscribe
}

// SubscribedBy reports whether any subscription belongs to user.
func (m Meetup) SubscribedBy(user UserID) bool {
	for _, s := range m.Subscriptions {
		if s.UserID == user {
			return true
		}
	}
	return false
}

// Formatter renders a raw date-time with a pattern in a locale.
type Formatter func(t time.Time, pattern, locale string) string

// DisplayOptions selects how FormattedDate is produced.
type DisplayOptions struct {
	Pattern string
	Locale  string
	Format  Formatter
}

// Derive returns m with the per-user derived fields filled in.
func Derive(m Meetup, user UserID, opts DisplayOptions) Meetup {
	m.Subscribed = m.SubscribedBy(user)
	if opts.Format != nil {
		m.FormattedDate = opts.Format(m.Date, opts.Pattern, opts.Locale)
	}
	return m
}

// DeriveAll derives every record of a page, preserving order.
func DeriveAll(page []Meetup, user UserID, opts DisplayOptions) []Meetup {
	out := make([]Meetup, len(page))
	for i, m := range page {
		out[i] = Derive(m, user, opts)
	}
	return out
}
