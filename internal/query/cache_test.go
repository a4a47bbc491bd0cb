package query_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskdash/internal/query"
	"taskdash/internal/service"
)

// clock is a manually advanced time source.
type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newCache(staleTime time.Duration) (*query.Cache, *clock) {
	clk := &clock{t: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)}
	return query.New(staleTime, query.WithClock(clk.now)), clk
}

// counter returns a fetch function that counts its calls and returns the sequence values.
func counter(calls *int, values ...string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) {
		v := values[*calls%len(values)]
		*calls++
		return v, nil
	}
}

func TestFetch_FreshHitSkipsRequest(t *testing.T) {
	c, clk := newCache(30 * time.Second)
	ctx := context.Background()
	key := query.TeamList()
	calls := 0

	r := query.Fetch(ctx, c, key, counter(&calls, "a"))
	if r.Status != query.StatusSuccess || r.Data != "a" || r.Stale {
		t.Fatalf("first fetch=%+v", r)
	}

	clk.advance(10 * time.Second)
	r = query.Fetch(ctx, c, key, counter(&calls, "b"))
	if calls != 1 || r.Data != "a" {
		t.Fatalf("fresh read issued %d calls, data=%q", calls, r.Data)
	}

	clk.advance(30 * time.Second)
	query.Fetch(ctx, c, key, counter(&calls, "b"))
	if calls != 2 {
		t.Fatalf("stale read should refetch, calls=%d", calls)
	}
}

func TestFetch_ErrorKeepsPreviousData(t *testing.T) {
	c, _ := newCache(0)
	ctx := context.Background()
	key := query.TaskDetail(1)

	query.Fetch(ctx, c, key, func(context.Context) (string, error) { return "cached", nil })

	boom := errors.New("boom")
	r := query.Fetch(ctx, c, key, func(context.Context) (string, error) { return "", boom })
	if r.Status != query.StatusError || !errors.Is(r.Err, boom) {
		t.Fatalf("result=%+v, want error status", r)
	}
	if r.Data != "cached" || !r.HasData() {
		t.Errorf("Data=%q, previous data must stay visible", r.Data)
	}
}

func TestFetch_ErrorWithoutData(t *testing.T) {
	c, _ := newCache(time.Minute)
	r := query.Fetch(context.Background(), c, query.TeamList(), func(context.Context) ([]service.Team, error) {
		return nil, errors.New("down")
	})
	if r.Status != query.StatusError || r.HasData() || r.Data != nil {
		t.Fatalf("result=%+v", r)
	}
}

func TestInvalidate_MarksStaleAndRefetchesOnRead(t *testing.T) {
	c, _ := newCache(time.Hour)
	ctx := context.Background()
	calls := 0

	list := query.TaskList(service.ListTasksParams{Page: 1, Size: 10})
	query.Fetch(ctx, c, list, counter(&calls, "v1", "v2"))

	c.Invalidate(ctx, query.ListsOf(query.ResourceTasks))
	if calls != 1 {
		t.Fatalf("entries without listeners must not refetch eagerly, calls=%d", calls)
	}
	if r, _ := query.Peek[string](c, list); !r.Stale || r.Data != "v1" {
		t.Fatalf("after invalidate Peek=%+v, want stale v1", r)
	}

	r := query.Fetch(ctx, c, list, counter(&calls, "v1", "v2"))
	if calls != 2 || r.Data != "v2" || r.Stale {
		t.Fatalf("read after invalidate=%+v calls=%d", r, calls)
	}
}

func TestInvalidate_RefetchesSubscribedEntries(t *testing.T) {
	c, _ := newCache(time.Hour)
	ctx := context.Background()
	key := query.TeamList()
	calls := 0
	query.Fetch(ctx, c, key, counter(&calls, "v1", "v2"))

	var statuses []query.Status
	unsubscribe := c.Subscribe(key, func(k query.Key, s query.State) {
		if k != key {
			t.Errorf("listener got key %v", k)
		}
		statuses = append(statuses, s.Status)
	})
	defer unsubscribe()

	c.Invalidate(ctx, query.AllOf(query.ResourceTeams))

	if calls != 2 {
		t.Fatalf("subscribed entry should refetch, calls=%d", calls)
	}
	want := []query.Status{query.StatusSuccess, query.StatusLoading, query.StatusSuccess}
	if len(statuses) != len(want) {
		t.Fatalf("statuses=%v, want %v", statuses, want)
	}
	for i := range want {
		if statuses[i] != want[i] {
			t.Fatalf("statuses=%v, want %v", statuses, want)
		}
	}
	if r, _ := query.Peek[string](c, key); r.Data != "v2" {
		t.Errorf("Data=%q, want v2", r.Data)
	}
}

func TestInvalidate_MatchScope(t *testing.T) {
	c, _ := newCache(time.Hour)
	ctx := context.Background()
	ok := func(context.Context) (int, error) { return 1, nil }

	keys := []query.Key{
		query.TaskList(service.ListTasksParams{}),
		query.TaskList(service.ListTasksParams{Search: "x"}),
		query.TaskDetail(1),
		query.TaskDetail(2),
		query.TeamList(),
	}
	for _, k := range keys {
		query.Fetch(ctx, c, k, ok)
	}

	c.Invalidate(ctx, query.ListsOf(query.ResourceTasks))
	c.Invalidate(ctx, query.DetailOf(query.ResourceTasks, "1"))

	wantStale := []bool{true, true, true, false, false}
	for i, k := range keys {
		r, _ := query.Peek[int](c, k)
		if r.Stale != wantStale[i] {
			t.Errorf("%v stale=%v, want %v", k, r.Stale, wantStale[i])
		}
	}
}

func TestSubscribe_UnsubscribeStopsNotifications(t *testing.T) {
	c, _ := newCache(0)
	key := query.TaskDetail(5)
	n := 0
	unsubscribe := c.Subscribe(key, func(query.Key, query.State) { n++ })
	unsubscribe()
	unsubscribe()

	query.Fetch(context.Background(), c, key, func(context.Context) (int, error) { return 5, nil })
	if n != 0 {
		t.Errorf("listener called %d times after unsubscribe", n)
	}
}

func TestReset(t *testing.T) {
	c, _ := newCache(time.Hour)
	ctx := context.Background()
	query.Fetch(ctx, c, query.TeamList(), func(context.Context) (int, error) { return 1, nil })

	c.Reset()
	if _, ok := query.Peek[int](c, query.TeamList()); ok {
		t.Fatal("Reset should drop entries without listeners")
	}
}

func TestMatch_Matches(t *testing.T) {
	detail := query.TaskDetail(3)
	tests := []struct {
		m    query.Match
		want bool
	}{
		{query.AllOf(query.ResourceTasks), true},
		{query.AllOf(query.ResourceTeams), false},
		{query.ListsOf(query.ResourceTasks), false},
		{query.DetailOf(query.ResourceTasks, "3"), true},
		{query.DetailOf(query.ResourceTasks, "4"), false},
	}
	for _, tt := range tests {
		if got := tt.m.Matches(detail); got != tt.want {
			t.Errorf("%+v.Matches(%v)=%v, want %v", tt.m, detail, got, tt.want)
		}
	}
}

func TestReset_DropsInFlightResult(t *testing.T) {
	c, _ := newCache(time.Hour)
	ctx := context.Background()
	key := query.TaskList(service.ListTasksParams{})

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan query.Result[string])
	go func() {
		done <- query.Fetch(ctx, c, key, func(context.Context) (string, error) {
			close(started)
			<-release
			return "previous account", nil
		})
	}()

	<-started
	c.Reset()
	close(release)

	late := <-done
	if !errors.Is(late.Err, query.ErrReset) || late.Data != "" {
		t.Fatalf("late result=%+v", late)
	}
	if _, ok := query.Peek[string](c, key); ok {
		t.Fatal("late result was stored")
	}

	calls := 0
	r := query.Fetch(ctx, c, key, counter(&calls, "current account"))
	if calls != 1 || r.Data != "current account" {
		t.Errorf("fetch after reset calls=%d data=%q", calls, r.Data)
	}
}
