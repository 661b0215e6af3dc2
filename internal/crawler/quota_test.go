package crawler

import (
	"reflect"
	"testing"
)

func TestDomainQuotaAdmit(t *testing.T) {
	t.Parallel()

	quota := NewDomainQuota(2)

	if !quota.Admit("https://example.com/a") {
		t.Fatal("fresh domain refused")
	}

	quota.Increment("https://example.com/a")
	if !quota.Admit("https://EXAMPLE.com/b") {
		t.Error("domain under ceiling refused; host case must not matter")
	}

	quota.Increment("https://example.com/b")
	if quota.Admit("https://example.com/c") {
		t.Error("domain at ceiling admitted")
	}

	if !quota.Admit("https://other.org/x") {
		t.Error("unrelated domain blocked by another domain's quota")
	}

	if !quota.Admit("http://bad url%") {
		t.Error("unparseable URL must be admitted")
	}
}

func TestDomainQuotaCounts(t *testing.T) {
	t.Parallel()

	quota := NewDomainQuota(5)
	quota.Increment("https://a.example/1")
	quota.Increment("https://a.example/2")
	quota.Increment("https://b.example/1")
	quota.Increment("http://unparseable %")

	if got := quota.Count("a.example"); got != 2 {
		t.Errorf("Count(a.example) = %d, want 2", got)
	}
	if got := quota.Count("A.EXAMPLE"); got != 2 {
		t.Errorf("Count is not case-insensitive: got %d", got)
	}

	want := map[string]int{"a.example": 2, "b.example": 1}
	got := quota.Counts()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Counts() = %v, want %v", got, want)
	}

	// The returned map is a copy.
	got["a.example"] = 99
	if quota.Count("a.example") != 2 {
		t.Error("Counts() leaked internal state")
	}
}

func TestDomainQuotaSaturated(t *testing.T) {
	t.Parallel()

	quota := NewDomainQuota(3)
	for range 2 {
		quota.Increment("https://near.example/x")
	}
	for range 3 {
		quota.Increment("https://full.example/x")
	}
	quota.Increment("https://fresh.example/x")

	want := []string{"full.example", "near.example"}
	if got := quota.Saturated(); !reflect.DeepEqual(got, want) {
		t.Errorf("Saturated() = %v, want %v", got, want)
	}
}

func TestDomainQuotaDefaultCeiling(t *testing.T) {
	t.Parallel()

	quota := NewDomainQuota(0)
	for range DefaultMaxPerDomain {
		if !quota.Admit("https://example.com/p") {
			t.Fatal("refused before reaching the default ceiling")
		}
		quota.Increment("https://example.com/p")
	}
	if quota.Admit("https://example.com/p") {
		t.Errorf("admitted past the default ceiling of %d", DefaultMaxPerDomain)
	}
}
