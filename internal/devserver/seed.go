package devserver

import (
	"fmt"
	"time"

	"github.com/abelbrown/meetapp/internal/meetup"
)

var organizers = []meetup.Organizer{
	{ID: 1, Name: "Ana Souza"},
	{ID: 2, Name: "Rui Costa"},
	{ID: 3, Name: "Diego Fernandes"},
}

var topics = []string{
	"Go Porto", "React Native Lisboa", "Node Braga", "Rust Coimbra",
	"Kubernetes Night", "Elixir Brew", "Data Engineering Talks", "Frontend Friday",
	"Testing in Production", "SQL for Humans", "Open Source Saturday", "Design Systems",
	"Distributed Tracing", "CLI Tooling", "Terminal UIs",
}

var venues = []string{"Porto", "Lisboa", "Braga", "Coimbra", "Aveiro"}

// Seed builds a demo data set around now: a full day of meetups spread over
// two pages, a few tomorrow and one yesterday. Some are organized by user 1,
// two share a start time and the early ones today are already over.
func Seed(now time.Time) []meetup.Meetup {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	var out []meetup.Meetup
	add := func(day time.Time, hour, minute int) {
		n := len(out)
		org := organizers[n%len(organizers)]
		m := meetup.Meetup{
			ID:          meetup.ID(n + 1),
			Title:       topics[n%len(topics)],
			Description: fmt.Sprintf("Talks and pizza at %s.", venues[n%len(venues)]),
			Location:    venues[n%len(venues)],
			Banner:      meetup.Banner{ID: n + 1, URL: fmt.Sprintf("https://picsum.photos/seed/meetup%d/600/300", n+1)},
			Organizer:   org,
			UserID:      org.ID,
			Date:        day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute),
		}
		if n%4 == 3 {
			m.Subscriptions = append(m.Subscriptions, meetup.Subscription{UserID: 1})
		}
		out = append(out, m)
	}

	for i := 0; i < 14; i++ {
		add(today, 8+i, 0)
	}
	// Same start time as the 20:00 meetup.
	add(today, 20, 0)

	tomorrow := today.AddDate(0, 0, 1)
	for _, h := range []int{9, 14, 19} {
		add(tomorrow, h, 30)
	}
	add(today.AddDate(0, 0, -1), 18, 0)
	return out
}
