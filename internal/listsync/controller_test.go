package listsync

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/abelbrown/meetapp/internal/meetup"
)

var day = time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

// page builds n meetups with ids starting at first.
func page(first, n int) []meetup.Meetup {
	out := make([]meetup.Meetup, n)
	for i := range out {
		out[i] = meetup.Meetup{
			ID:    meetup.ID(first + i),
			Title: "Meetup",
			Date:  day.Add(time.Duration(i) * time.Hour),
		}
	}
	return out
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Display.Format = func(t time.Time, _, _ string) string { return t.Format(time.Kitchen) }
	return opts
}

// started returns a controller whose first page (n records) has been merged.
func started(t *testing.T, n int) *Controller {
	t.Helper()
	c := New(testOptions(), day, 1)
	req, ok := c.Start()
	if !ok {
		t.Fatal("Start should issue a request")
	}
	if !c.Complete(Result{Seq: req.Seq, Records: page(1, n)}) {
		t.Fatal("first page should be applied")
	}
	return c
}

type serverErr struct{ msg string }

func (e *serverErr) Error() string { return "server: " + e.msg }
func (e *serverErr) ServerMessage() string { return e.msg }

func TestNewIsLoading(t *testing.T) {
	c := New(testOptions(), day, 1)
	if !c.Loading() || !c.Fetching() {
		t.Error("a new controller should be loading and fetching")
	}
	if c.Refreshing() || c.EndOfList() {
		t.Error("a new controller should not be refreshing or exhausted")
	}
	if got := c.Cursor().Sentinel(); got != 1 {
		t.Errorf("initial cursor = %d, want 1", got)
	}
}

func TestStartIssuesFirstPage(t *testing.T) {
	c := New(testOptions(), day, 1)
	req, ok := c.Start()
	if !ok {
		t.Fatal("Start should issue a request")
	}
	if req.Query.Page != 1 || !req.Query.Date.Equal(day) || req.Query.PageSize != DefaultPageSize {
		t.Errorf("unexpected query %+v", req.Query)
	}
	if req.Trigger != TriggerMount || req.User != 1 {
		t.Errorf("unexpected request %+v", req)
	}

	if _, again := c.Start(); again {
		t.Error("a second Start without changes must not fetch")
	}
}

func TestCompleteDerivesAndAppends(t *testing.T) {
	c := New(testOptions(), day, 2)
	req, _ := c.Start()
	records := page(1, 5)
	records[3].Subscriptions = []meetup.Subscription{{UserID: 2}}

	c.Complete(Result{Seq: req.Seq, Records: records})

	got := c.Records()
	if len(got) != 5 {
		t.Fatalf("len(records) = %d, want 5", len(got))
	}
	for i, m := range got {
		if m.ID != meetup.ID(i+1) {
			t.Errorf("records[%d].ID = %d, server order not kept", i, m.ID)
		}
		if m.FormattedDate == "" {
			t.Errorf("records[%d] has no formatted date", i)
		}
		if m.Subscribed != (i == 3) {
			t.Errorf("records[%d].Subscribed = %v", i, m.Subscribed)
		}
	}
	if c.Loading() || c.Fetching() || c.Refreshing() {
		t.Error("flags should be cleared after completion")
	}
	if c.Phase() != Idle {
		t.Errorf("phase = %v, want idle", c.Phase())
	}
}

func TestLoadMoreWhileFetchingIsNoop(t *testing.T) {
	c := started(t, 5)

	req, ok := c.LoadMore()
	if !ok {
		t.Fatal("LoadMore should issue a request")
	}
	for i := 0; i < 10; i++ {
		if _, again := c.LoadMore(); again {
			t.Fatalf("LoadMore #%d issued a fetch while fetching", i+2)
		}
	}
	if !c.Fetching() {
		t.Error("should still be fetching")
	}
	if got := c.Cursor().Page(); got != 2 {
		t.Errorf("cursor = %d, want 2", got)
	}
	if req.Query.Page != 2 || req.Trigger != TriggerMore {
		t.Errorf("unexpected request %+v", req)
	}
}

func TestLoadMoreBelowThreshold(t *testing.T) {
	c := started(t, 4)
	if _, ok := c.LoadMore(); ok {
		t.Error("LoadMore with fewer than 5 records must not fetch")
	}
	if c.Cursor().Page() != 1 {
		t.Error("cursor must not move")
	}
}

func TestLoadMoreDuringFirstPage(t *testing.T) {
	c := New(testOptions(), day, 1)
	c.Start()
	if _, ok := c.LoadMore(); ok {
		t.Error("LoadMore while the first page loads must not fetch")
	}
}

func TestChangeFilterResets(t *testing.T) {
	c := started(t, 5)
	c.LoadMore()

	next := day.AddDate(0, 0, 1)
	req, ok := c.ChangeFilter(next)
	if !ok {
		t.Fatal("ChangeFilter should issue a request")
	}
	if len(c.Records()) != 0 {
		t.Error("records should be empty")
	}
	if c.Cursor().Sentinel() != 1 {
		t.Errorf("cursor = %d, want 1", c.Cursor().Sentinel())
	}
	if c.EndOfList() {
		t.Error("endOfList should be false")
	}
	if !c.Loading() {
		t.Error("loading should be true until the fetch resolves")
	}
	if !req.Query.Date.Equal(next) || req.Query.Page != 1 || req.Trigger != TriggerFilter {
		t.Errorf("unexpected request %+v", req)
	}

	c.Complete(Result{Seq: req.Seq, Records: page(100, 3)})
	if c.Loading() {
		t.Error("loading should clear once the fetch resolves")
	}
}

func TestChangeFilterSameDateRefetches(t *testing.T) {
	c := started(t, 5)
	if _, ok := c.ChangeFilter(day); !ok {
		t.Error("picking the same date again should still reload")
	}
}

func TestEndOfListStaysUntilReset(t *testing.T) {
	c := started(t, 5)
	req, _ := c.LoadMore()
	c.Complete(Result{Seq: req.Seq, Records: nil})

	if !c.EndOfList() {
		t.Fatal("empty page should set endOfList")
	}
	for i := 0; i < 3; i++ {
		if _, ok := c.LoadMore(); ok {
			t.Fatal("LoadMore after end of list must not fetch")
		}
		if !c.EndOfList() {
			t.Fatal("endOfList must stay set")
		}
	}

	if _, ok := c.Refresh(); !ok {
		t.Fatal("Refresh should fetch even when exhausted")
	}
	if c.EndOfList() {
		t.Error("Refresh should clear endOfList")
	}

	c2 := started(t, 5)
	req, _ = c2.LoadMore()
	c2.Complete(Result{Seq: req.Seq})
	c2.ChangeFilter(day.AddDate(0, 0, 2))
	if c2.EndOfList() {
		t.Error("ChangeFilter should clear endOfList")
	}
}

func TestScenarioSecondPageEmpty(t *testing.T) {
	c := started(t, 5)

	req, ok := c.LoadMore()
	if !ok {
		t.Fatal("LoadMore should fetch")
	}
	if c.Cursor().Sentinel() != 2 || req.Query.Page != 2 {
		t.Fatalf("cursor = %d, request page = %d, want 2", c.Cursor().Sentinel(), req.Query.Page)
	}
	c.Complete(Result{Seq: req.Seq, Records: []meetup.Meetup{}})

	if !c.EndOfList() {
		t.Error("endOfList should be true")
	}
	if len(c.Records()) != 5 {
		t.Errorf("len(records) = %d, want 5", len(c.Records()))
	}
}

func TestScenarioRefreshOnFirstPage(t *testing.T) {
	c := started(t, 5)
	if c.Cursor().Sentinel() != 1 {
		t.Fatalf("precondition: cursor = %d", c.Cursor().Sentinel())
	}

	req, ok := c.Refresh()
	if !ok {
		t.Fatal("Refresh should fetch")
	}
	if c.Cursor().Sentinel() != 0 {
		t.Errorf("cursor = %d, want sentinel 0", c.Cursor().Sentinel())
	}
	if req.Query.Page != 1 {
		t.Errorf("wire page = %d, want 1", req.Query.Page)
	}
	if len(c.Records()) != 0 {
		t.Error("records should be cleared before the refresh fetch")
	}
	if !c.Refreshing() || c.Fetching() {
		t.Error("refresh should set refreshing, not fetching")
	}

	c.Complete(Result{Seq: req.Seq, Records: page(50, 2)})
	if len(c.Records()) != 2 || c.Records()[0].ID != 50 {
		t.Errorf("records = %v, want the refreshed page only", c.Records())
	}
	if c.Refreshing() {
		t.Error("refreshing should clear")
	}
}

func TestRefreshTogglesSentinel(t *testing.T) {
	c := started(t, 5)
	c.Refresh()
	if c.Cursor().Sentinel() != 0 {
		t.Fatalf("first refresh: cursor = %d, want 0", c.Cursor().Sentinel())
	}
	if _, ok := c.Refresh(); !ok {
		t.Fatal("second refresh should fetch")
	}
	if c.Cursor().Sentinel() != 1 {
		t.Errorf("second refresh: cursor = %d, want 1", c.Cursor().Sentinel())
	}
}

func TestLoadMoreFromSentinelJumpsToTwo(t *testing.T) {
	c := started(t, 5)
	req, _ := c.Refresh()
	c.Complete(Result{Seq: req.Seq, Records: page(1, 5)})

	req, ok := c.LoadMore()
	if !ok {
		t.Fatal("LoadMore should fetch")
	}
	if c.Cursor().Sentinel() != 2 || req.Query.Page != 2 {
		t.Errorf("cursor = %d, page = %d, want 2", c.Cursor().Sentinel(), req.Query.Page)
	}
}

func TestRefreshFromLaterPage(t *testing.T) {
	c := started(t, 5)
	req, _ := c.LoadMore()
	c.Complete(Result{Seq: req.Seq, Records: page(6, 5)})
	req, _ = c.LoadMore()
	c.Complete(Result{Seq: req.Seq, Records: page(11, 5)})
	if c.Cursor().Sentinel() != 3 {
		t.Fatalf("cursor = %d, want 3", c.Cursor().Sentinel())
	}

	req, _ = c.Refresh()
	if c.Cursor().Sentinel() != 0 || req.Query.Page != 1 {
		t.Errorf("cursor = %d, page = %d", c.Cursor().Sentinel(), req.Query.Page)
	}
}

func TestStaleResultsAreDropped(t *testing.T) {
	c := New(testOptions(), day, 1)
	first, _ := c.Start()
	second, _ := c.ChangeFilter(day.AddDate(0, 0, 1))

	if c.Complete(Result{Seq: first.Seq, Records: page(1, 5)}) {
		t.Error("the superseded result must be dropped")
	}
	if len(c.Records()) != 0 || !c.Loading() {
		t.Error("a dropped result must not change state")
	}

	if !c.Complete(Result{Seq: second.Seq, Records: page(20, 5)}) {
		t.Fatal("the current result should apply")
	}
	if c.Records()[0].ID != 20 {
		t.Errorf("records[0].ID = %d, want 20", c.Records()[0].ID)
	}

	if c.Complete(Result{Seq: second.Seq, Records: page(20, 5)}) {
		t.Error("a result must apply only once")
	}
	if c.Complete(Result{}) {
		t.Error("a zero sequence is never in flight")
	}
}

func TestRefreshSupersedesLoadMore(t *testing.T) {
	c := started(t, 5)
	more, _ := c.LoadMore()
	refresh, _ := c.Refresh()

	if c.Complete(Result{Seq: more.Seq, Records: page(6, 5)}) {
		t.Error("load-more result must be dropped after a refresh")
	}
	c.Complete(Result{Seq: refresh.Seq, Records: page(1, 5)})
	if len(c.Records()) != 5 {
		t.Errorf("len(records) = %d, want 5", len(c.Records()))
	}
}

func TestFetchFailureIsSilent(t *testing.T) {
	c := started(t, 5)
	req, _ := c.LoadMore()
	boom := errors.New("network down")

	if !c.Complete(Result{Seq: req.Seq, Err: boom}) {
		t.Fatal("a failed result is still the in-flight one")
	}
	if len(c.Records()) != 5 {
		t.Error("failure must not change records")
	}
	if c.Loading() || c.Fetching() || c.Refreshing() || c.EndOfList() {
		t.Error("failure must clear flags without ending the list")
	}
	if !errors.Is(c.LastErr(), boom) {
		t.Errorf("LastErr = %v", c.LastErr())
	}

	if _, ok := c.LoadMore(); !ok {
		t.Error("LoadMore should be possible again after a failure")
	}
}

func TestFailedRefreshClearsSpinner(t *testing.T) {
	c := started(t, 5)
	req, _ := c.Refresh()
	c.Complete(Result{Seq: req.Seq, Err: errors.New("timeout")})
	if c.Refreshing() {
		t.Error("refreshing must clear on failure")
	}
}

func TestSetUser(t *testing.T) {
	c := started(t, 5)
	if _, ok := c.SetUser(1); ok {
		t.Error("same user must not refetch")
	}

	req, ok := c.SetUser(2)
	if !ok {
		t.Fatal("a new user should refetch")
	}
	if req.User != 2 || req.Trigger != TriggerUser || req.Query.Page != 1 {
		t.Errorf("unexpected request %+v", req)
	}
	if len(c.Records()) != 0 || !c.Loading() {
		t.Error("a new user restarts the list")
	}

	records := page(1, 1)
	records[0].Subscriptions = []meetup.Subscription{{UserID: 2}}
	c.Complete(Result{Seq: req.Seq, Records: records})
	if !c.Records()[0].Subscribed {
		t.Error("subscribed flag should follow the new user")
	}
}

func TestApplySubscribeSuccess(t *testing.T) {
	c := started(t, 5)
	before := append([]meetup.Meetup(nil), c.Records()...)
	shared := c.Records()

	n := c.ApplySubscribe(3, nil)
	if n.Kind != NoticeSuccess || n.Message != "Subscribed to meeting!" {
		t.Errorf("notice = %+v", n)
	}

	after := c.Records()
	for i := range after {
		if after[i].ID == 3 {
			if !after[i].Subscribed {
				t.Error("record 3 should be subscribed")
			}
			want := before[i]
			want.Subscribed = true
			if !reflect.DeepEqual(after[i], want) {
				t.Errorf("only Subscribed may change: got %+v, want %+v", after[i], want)
			}
			continue
		}
		if !reflect.DeepEqual(after[i], before[i]) {
			t.Errorf("records[%d] changed", i)
		}
	}
	if shared[2].Subscribed {
		t.Error("the previous slice must not be mutated")
	}
}

func TestApplySubscribeServerMessage(t *testing.T) {
	c := started(t, 5)
	before := c.Records()

	err := &serverErr{msg: "Meetup has already passed."}
	n := c.ApplySubscribe(42, err)
	if n.Kind != NoticeDanger || n.Message != "Meetup has already passed." {
		t.Errorf("notice = %+v", n)
	}
	if !reflect.DeepEqual(c.Records(), before) {
		t.Error("failure must not change records")
	}
}

func TestApplySubscribeWrappedServerMessage(t *testing.T) {
	c := started(t, 5)
	err := errors.Join(errors.New("subscribe 1"), &serverErr{msg: "You can't subscribe to your own meetups."})
	if n := c.ApplySubscribe(1, err); n.Message != "You can't subscribe to your own meetups." {
		t.Errorf("notice = %+v", n)
	}
	if c.Records()[0].Subscribed {
		t.Error("failure must not subscribe")
	}
}

func TestApplySubscribeConnectionError(t *testing.T) {
	c := started(t, 5)
	tests := []error{
		errors.New("dial tcp: connection refused"),
		&serverErr{},
	}
	for _, err := range tests {
		n := c.ApplySubscribe(1, err)
		if n.Kind != NoticeDanger || n.Message != "Connection error." {
			t.Errorf("ApplySubscribe(%v) = %+v", err, n)
		}
	}
}

func TestApplySubscribeUnknownID(t *testing.T) {
	c := started(t, 5)
	before := c.Records()
	n := c.ApplySubscribe(999, nil)
	if n.Kind != NoticeSuccess {
		t.Errorf("notice = %+v", n)
	}
	if !reflect.DeepEqual(c.Records(), before) {
		t.Error("records should be unchanged when the id is not shown")
	}
}

func TestSnapshot(t *testing.T) {
	c := started(t, 5)
	c.Refresh()
	s := c.Snapshot()
	if s.Phase != Refreshing || s.Sentinel != 0 || s.Page != 1 || s.Count != 0 || s.InFlight == 0 {
		t.Errorf("snapshot = %+v", s)
	}
}
