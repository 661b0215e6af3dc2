package crawler

import (
	"testing"

	"github.com/nao1215/contentcrawler/internal/model"
)

func TestFrontierCandidatesBeforeQueries(t *testing.T) {
	t.Parallel()

	frontier := NewFrontier(NewState(0, 0))
	frontier.PushQuery("golang generics tutorial")
	frontier.PushCandidate("https://example.com/a")
	frontier.PushCandidate("https://example.com/b")

	wantOrder := []model.WorkItem{
		model.NewCandidateURL("https://example.com/a"),
		model.NewCandidateURL("https://example.com/b"),
		model.NewSearchQuery("golang generics tutorial"),
	}
	for i, want := range wantOrder {
		got, ok := frontier.Pop()
		if !ok {
			t.Fatalf("Pop() #%d returned empty", i)
		}
		if got != want {
			t.Errorf("Pop() #%d = %+v, want %+v", i, got, want)
		}
	}

	if _, ok := frontier.Pop(); ok {
		t.Error("Pop() on empty frontier returned an item")
	}
	if !frontier.IsEmpty() {
		t.Error("IsEmpty() = false after draining")
	}
}

func TestFrontierCandidateDedup(t *testing.T) {
	t.Parallel()

	state := NewState(0, 0)
	frontier := NewFrontier(state)

	if !frontier.PushCandidate("https://Example.com/Page/") {
		t.Fatal("first push rejected")
	}
	// Normalizes to the same URL.
	if frontier.PushCandidate("https://example.com/page?utm_source=x") {
		t.Error("normalized duplicate of a queued candidate accepted")
	}
	if frontier.CandidateCount() != 1 {
		t.Fatalf("CandidateCount() = %d, want 1", frontier.CandidateCount())
	}

	// The queued entry is released on pop, but a visited URL stays out.
	item, _ := frontier.Pop()
	state.MarkVisited(NormalizeURL(item.URL))
	if frontier.PushCandidate("https://example.com/page") {
		t.Error("visited URL re-queued")
	}

	// A never-visited URL that was merely queued before can come back.
	frontier2 := NewFrontier(NewState(0, 0))
	frontier2.PushCandidate("https://example.com/other")
	frontier2.Pop()
	if !frontier2.PushCandidate("https://example.com/other") {
		t.Error("popped-but-unvisited URL rejected")
	}
}

func TestFrontierQueryHistory(t *testing.T) {
	t.Parallel()

	frontier := NewFrontier(NewState(0, 0))

	if !frontier.PushQuery("ai safety overview") {
		t.Fatal("first query rejected")
	}
	if frontier.PushQuery("ai safety overview") {
		t.Error("exact duplicate query accepted")
	}
	// Case-sensitive by contract.
	if !frontier.PushQuery("AI Safety Overview") {
		t.Error("differently cased query rejected")
	}

	// History outlives the queue: a popped query can never return.
	frontier.Pop()
	frontier.Pop()
	if frontier.PushQuery("ai safety overview") {
		t.Error("historical query re-accepted after pop")
	}
	if frontier.HistoryLen() != 2 {
		t.Errorf("HistoryLen() = %d, want 2", frontier.HistoryLen())
	}
}
