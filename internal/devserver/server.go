// Package devserver is an in-memory meetup API for local development and
// tests. It serves the two endpoints the client uses and enforces the
// subscription rules of the real backend.
package devserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/abelbrown/meetapp/internal/logging"
	"github.com/abelbrown/meetapp/internal/meetup"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Rule violations, returned as {"error": ...} with status 400 (404 for
// ErrNotFound).
var (
	ErrNotFound          = errors.New("Meetup not found.")
	ErrPastMeetup        = errors.New("You can't subscribe to past meetups.")
	ErrOwnMeetup         = errors.New("You can't subscribe to your own meetups.")
	ErrAlreadySubscribed = errors.New("You are already subscribed to this meetup.")
	ErrSameTime          = errors.New("You can't subscribe to two meetups at the same time.")
)

// Options configures a Server.
type Options struct {
	// Tokens maps bearer tokens to users. Requests without a token act as
	// DefaultUser.
	Tokens      map[string]meetup.UserID
	DefaultUser meetup.UserID
	PageSize    int
	Location    *time.Location
	Now         func() time.Time
}

// Server holds the meetups and their subscriptions.
type Server struct {
	mu      sync.Mutex
	meetups []meetup.Meetup
	nextSub int
	opts    Options
}

func New(seed []meetup.Meetup, opts Options) *Server {
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DefaultUser == 0 {
		opts.DefaultUser = 1
	}

	ms := make([]meetup.Meetup, len(seed))
	copy(ms, seed)
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].Date.Before(ms[j].Date) })
	return &Server{meetups: ms, opts: opts, nextSub: 1}
}

// Handler returns the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/meetups", s.listMeetups)
		r.Post("/meetups/{id}/subscriptions", s.subscribe)
	})
	return r
}

type userKey struct{}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := s.opts.DefaultUser
		if h := r.Header.Get("Authorization"); h != "" {
			token := strings.TrimPrefix(h, "Bearer ")
			id, ok := s.opts.Tokens[token]
			if !ok {
				writeError(w, http.StatusUnauthorized, "Token invalid.")
				return
			}
			user = id
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

// listMeetups serves GET /meetups?date=&page=&per_page=. Only meetups on the
// calendar day of date are listed, oldest first.
func (s *Server) listMeetups(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date, err := time.Parse(time.RFC3339, q.Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date.")
		return
	}
	page := atoiDefault(q.Get("page"), 1)
	if page < 1 {
		page = 1
	}
	perPage := atoiDefault(q.Get("per_page"), s.opts.PageSize)
	if perPage < 1 {
		perPage = s.opts.PageSize
	}
	if perPage > maxPageSize {
		perPage = maxPageSize
	}

	local := date.In(s.opts.Location)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.opts.Location)
	end := start.AddDate(0, 0, 1)
	now := s.opts.Now()

	s.mu.Lock()
	var day []meetup.Meetup
	for _, m := range s.meetups {
		if !m.Date.Before(start) && m.Date.Before(end) {
			m.Past = m.Date.Before(now)
			m.Subscriptions = append([]meetup.Subscription(nil), m.Subscriptions...)
			day = append(day, m)
		}
	}
	s.mu.Unlock()

	out := []meetup.Meetup{}
	// Bound page before multiplying.
	if page-1 <= len(day)/perPage {
		from := (page - 1) * perPage
		if from < len(day) {
			out = day[from:min(from+perPage, len(day))]
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type SubscriptionRecord struct {
	ID       int           `json:"id"`
	MeetupID meetup.ID     `json:"meetup_id"`
	UserID   meetup.UserID `json:"user_id"`
}

// subscribe serves POST /meetups/{id}/subscriptions.
func (s *Server) subscribe(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, ErrNotFound.Error())
		return
	}
	user := userFrom(r.Context())

	sub, err := s.Subscribe(meetup.ID(id), user)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// Subscribe applies the subscription rules and records the subscription.
func (s *Server) Subscribe(id meetup.ID, user meetup.UserID) (SubscriptionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.meetups {
		if s.meetups[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return SubscriptionRecord{}, ErrNotFound
	}
	m := s.meetups[idx]

	switch {
	case m.Date.Before(s.opts.Now()):
		return SubscriptionRecord{}, ErrPastMeetup
	case m.UserID == user:
		return SubscriptionRecord{}, ErrOwnMeetup
	case m.SubscribedBy(user):
		return SubscriptionRecord{}, ErrAlreadySubscribed
	}
	for _, other := range s.meetups {
		if other.ID != id && other.Date.Equal(m.Date) && other.SubscribedBy(user) {
			return SubscriptionRecord{}, ErrSameTime
		}
	}

	s.meetups[idx].Subscriptions = append(s.meetups[idx].Subscriptions, meetup.Subscription{UserID: user})
	sub := SubscriptionRecord{ID: s.nextSub, MeetupID: id, UserID: user}
	s.nextSub++
	logging.Info("devserver: subscribed", "meetup", id, "user", user)
	return sub, nil
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
