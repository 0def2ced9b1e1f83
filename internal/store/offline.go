package store

import (
	"context"

	"github.com/abelbrown/meetapp/internal/listsync"
	"github.com/abelbrown/meetapp/internal/meetup"
)

// ErrOffline is returned by Offline.Subscribe. Its message is shown to the
// user as is.
var ErrOffline = offlineError{}

type offlineError struct{}

func (offlineError) Error() string { return "offline: subscribing needs a connection" }
func (offlineError) ServerMessage() string { return "You are offline. Connect to subscribe." }

// Offline serves the list from the cache alone. A page that was never
// cached reads as empty, which ends the list.
type Offline struct {
	store *Store
}

func NewOffline(s *Store) *Offline {
	return &Offline{store: s}
}

var _ listsync.Transport = (*Offline)(nil)

func (o *Offline) ListMeetups(ctx context.Context, q listsync.Query) ([]meetup.Meetup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, _, err := o.store.ListPage(q.Date, q.Page)
	return records, err
}

func (o *Offline) Subscribe(ctx context.Context, id meetup.ID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return ErrOffline
}
