package fence

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestBeginCancelsPreviousQuery(t *testing.T) {
	var f Fence
	first, firstCtx := f.Begin(context.Background())
	second, secondCtx := f.Begin(context.Background())

	if !errors.Is(firstCtx.Err(), context.Canceled) {
		t.Fatalf("first context not canceled: %v", firstCtx.Err())
	}
	if secondCtx.Err() != nil {
		t.Fatalf("second context canceled: %v", secondCtx.Err())
	}
	if first.Current() {
		t.Fatal("first ticket still current")
	}
	if !second.Current() {
		t.Fatal("second ticket not current")
	}
	if second.Generation() <= first.Generation() {
		t.Fatalf("generations not increasing: %d then %d", first.Generation(), second.Generation())
	}
}

func TestDeliverDropsStaleResults(t *testing.T) {
	var f Fence
	stale, _ := f.Begin(context.Background())
	latest, _ := f.Begin(context.Background())

	var got []string
	if f.Deliver(stale, func() { got = append(got, "stale") }) {
		t.Fatal("stale ticket delivered")
	}
	if !f.Deliver(latest, func() { got = append(got, "latest") }) {
		t.Fatal("latest ticket rejected")
	}
	if len(got) != 1 || got[0] != "latest" {
		t.Fatalf("got = %v", got)
	}
}

func TestStopInvalidatesTickets(t *testing.T) {
	var f Fence
	ticket, ctx := f.Begin(context.Background())
	f.Stop()
	if ctx.Err() == nil {
		t.Fatal("context not canceled")
	}
	if ticket.Current() || f.Deliver(ticket, nil) {
		t.Fatal("ticket still current after Stop")
	}
}

func TestForeignTicketRejected(t *testing.T) {
	var a, b Fence
	ticket, _ := a.Begin(context.Background())
	b.Begin(context.Background())
	if b.Deliver(ticket, nil) {
		t.Fatal("ticket from another fence delivered")
	}
	if (Ticket{}).Current() {
		t.Fatal("zero ticket reported current")
	}
}

// Out-of-order completion: only the response for the last query survives.
func TestConcurrentResponsesKeepLatest(t *testing.T) {
	var f Fence
	const queries = 20
	tickets := make([]Ticket, queries)
	for i := range tickets {
		tickets[i], _ = f.Begin(context.Background())
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		result = -1
	)
	for i := queries - 1; i >= 0; i-- {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Deliver(tickets[i], func() {
				mu.Lock()
				result = i
				mu.Unlock()
			})
		}()
	}
	wg.Wait()
	if result != queries-1 {
		t.Fatalf("result = %d, want %d", result, queries-1)
	}
}
