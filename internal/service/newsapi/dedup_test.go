package newsapi

import "testing"

func TestNormalizeTitle(t *testing.T) {
	got := NormalizeTitle("  Bitcoin   Surges PAST  $100K ")
	want := "bitcoin surges past $100k"
	if got != want {
		t.Fatalf("normalize = %q, want %q", got, want)
	}
}

func TestSimilarity(t *testing.T) {
	a := NormalizeTitle("Bitcoin surges past 100k on ETF inflows")
	b := NormalizeTitle("Bitcoin surges past 100k on ETF hopes")
	if s := Similarity(a, b); s <= 0.7 {
		t.Fatalf("near-duplicate similarity = %v, want > 0.7", s)
	}

	c := NormalizeTitle("Fed holds interest rates steady")
	if s := Similarity(a, c); s != 0 {
		t.Fatalf("unrelated similarity = %v, want 0", s)
	}

	if s := Similarity(a, a); s != 1 {
		t.Fatalf("self similarity = %v, want 1", s)
	}

	if s := Similarity("", a); s != 0 {
		t.Fatalf("empty similarity = %v, want 0", s)
	}
}
