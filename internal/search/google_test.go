package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/nao1215/contentcrawler/internal/crawler"
	"github.com/nao1215/contentcrawler/internal/model"
)

func testLimiter() *crawler.Limiter {
	return crawler.NewLimiter(
		crawler.WithLimiterSleep(func(time.Duration) {}),
		crawler.WithLimiterLogger(quietLogger()),
	)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func items(links ...string) []model.SearchResult {
	out := make([]model.SearchResult, 0, len(links))
	for _, l := range links {
		out = append(out, model.SearchResult{Title: "result " + l, Link: l})
	}
	return out
}

func serveResults(t *testing.T, w http.ResponseWriter, results []model.SearchResult) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"items": results}); err != nil {
		t.Error(err)
	}
}

func TestGoogleClientSearch(t *testing.T) {
	t.Parallel()

	var gotQuery, gotKey, gotCX string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotKey = r.URL.Query().Get("key")
		gotCX = r.URL.Query().Get("cx")
		serveResults(t, w, items("https://a.example", "https://b.example", "https://c.example"))
	}))
	defer server.Close()

	client := NewGoogleClient("api-key", "cse-id", "quantum computing", testLimiter(),
		WithBaseURL(server.URL),
		WithLogger(quietLogger()),
	)

	got, err := client.Search(context.Background(), "quantum computing overview")
	if err != nil {
		t.Fatalf("Search() = %v", err)
	}
	want := []string{"https://a.example", "https://b.example", "https://c.example"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Search() = %v, want %v", got, want)
	}
	if gotQuery != "quantum computing overview" || gotKey != "api-key" || gotCX != "cse-id" {
		t.Errorf("request carried q=%q key=%q cx=%q", gotQuery, gotKey, gotCX)
	}
}

func TestGoogleClientRecencyRestriction(t *testing.T) {
	t.Parallel()

	var restricts []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		restricts = append(restricts, r.URL.Query().Get("dateRestrict"))
		if r.URL.Query().Get("dateRestrict") == "m1" {
			// Too few recent results forces the unrestricted retry.
			serveResults(t, w, items("https://recent.example"))
			return
		}
		serveResults(t, w, items("https://recent.example", "https://older.example"))
	}))
	defer server.Close()

	client := NewGoogleClient("k", "c", "topic", testLimiter(),
		WithBaseURL(server.URL),
		WithLogger(quietLogger()),
	)

	got, err := client.Search(context.Background(), "latest topic developments")
	if err != nil {
		t.Fatalf("Search() = %v", err)
	}

	if !reflect.DeepEqual(restricts, []string{"m1", ""}) {
		t.Errorf("dateRestrict sequence = %v, want restricted then unrestricted", restricts)
	}
	want := []string{"https://recent.example", "https://older.example"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Search() = %v, want merged deduplicated results %v", got, want)
	}
}

func TestGoogleClientNoRestrictionForPlainQuery(t *testing.T) {
	t.Parallel()

	var restricts []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		restricts = append(restricts, r.URL.Query().Get("dateRestrict"))
		serveResults(t, w, items("https://a.example"))
	}))
	defer server.Close()

	client := NewGoogleClient("k", "c", "topic", testLimiter(),
		WithBaseURL(server.URL),
		WithLogger(quietLogger()),
	)

	if _, err := client.Search(context.Background(), "topic overview"); err != nil {
		t.Fatalf("Search() = %v", err)
	}
	if !reflect.DeepEqual(restricts, []string{""}) {
		t.Errorf("dateRestrict sequence = %v, want a single unrestricted call", restricts)
	}
}

func TestGoogleClientProviderFailureReturnsEmpty(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend unavailable", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewGoogleClient("k", "c", "topic", testLimiter(),
		WithBaseURL(server.URL),
		WithLogger(quietLogger()),
	)

	got, err := client.Search(context.Background(), "topic overview")
	if err != nil {
		t.Fatalf("Search() = %v, want nil error on provider failure", err)
	}
	if len(got) != 0 {
		t.Errorf("Search() = %v, want empty", got)
	}
}

// fakeRanker reverses the results, or fails.
type fakeRanker struct {
	err error
}

func (f *fakeRanker) RankResults(_ context.Context, _, _ string, results []model.SearchResult) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]string, 0, len(results))
	for i := len(results) - 1; i >= 0; i-- {
		out = append(out, results[i].Link)
	}
	return out, nil
}

func TestGoogleClientRanking(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serveResults(t, w, items("https://a.example", "https://b.example"))
	}))
	t.Cleanup(server.Close)

	t.Run("ranked order wins", func(t *testing.T) {
		t.Parallel()
		client := NewGoogleClient("k", "c", "topic", testLimiter(),
			WithBaseURL(server.URL),
			WithRanker(&fakeRanker{}),
			WithLogger(quietLogger()),
		)
		got, err := client.Search(context.Background(), "topic overview")
		if err != nil {
			t.Fatalf("Search() = %v", err)
		}
		want := []string{"https://b.example", "https://a.example"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Search() = %v, want ranked %v", got, want)
		}
	})

	t.Run("non-fatal ranker failure keeps provider order", func(t *testing.T) {
		t.Parallel()
		client := NewGoogleClient("k", "c", "topic", testLimiter(),
			WithBaseURL(server.URL),
			WithRanker(&fakeRanker{err: errors.New("flaky")}),
			WithLogger(quietLogger()),
		)
		got, err := client.Search(context.Background(), "topic overview")
		if err != nil {
			t.Fatalf("Search() = %v", err)
		}
		want := []string{"https://a.example", "https://b.example"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Search() = %v, want provider order %v", got, want)
		}
	})

	t.Run("fatal ranker failure propagates", func(t *testing.T) {
		t.Parallel()
		fatal := &crawler.ExternalServiceError{Class: crawler.ClassGenerative, Attempts: 6, Err: crawler.ErrRateLimited}
		client := NewGoogleClient("k", "c", "topic", testLimiter(),
			WithBaseURL(server.URL),
			WithRanker(&fakeRanker{err: fatal}),
			WithLogger(quietLogger()),
		)
		if _, err := client.Search(context.Background(), "topic overview"); !crawler.IsFatal(err) {
			t.Errorf("Search() = %v, want the fatal error surfaced", err)
		}
	})
}

func TestWantsRecent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		query string
		want  bool
	}{
		{query: "latest llm benchmarks", want: true},
		{query: "topic recent developments", want: true},
		{query: "ai news analysis", want: true},
		{query: fmt.Sprintf("go releases %d", time.Now().Year()), want: true},
		{query: fmt.Sprintf("go releases %d", time.Now().Year()-1), want: true},
		{query: "introduction to compilers", want: false},
		{query: "basics of sourdough", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			t.Parallel()
			if got := wantsRecent(tt.query); got != tt.want {
				t.Errorf("wantsRecent(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}
