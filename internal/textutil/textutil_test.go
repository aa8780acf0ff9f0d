package textutil

import "testing"

func TestSimilarityNil(t *testing.T) {
	tests := []struct {
		name string
		a    *Fingerprint
		b    *Fingerprint
	}{
		{"both nil", nil, nil},
		{"a nil", nil, NewFingerprint("hello world")},
		{"b nil", NewFingerprint("hello world"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Similarity(tt.b); got != 0 {
				t.Errorf("Similarity() = %v, want 0", got)
			}
		})
	}
}

func TestSimilarityIdentical(t *testing.T) {
	fp := NewFingerprint("The quick brown fox jumps over the lazy dog")
	if got := fp.Similarity(fp); got != 1.0 {
		t.Errorf("Similarity(identical) = %v, want 1.0", got)
	}
}

func TestSimilarityDisjoint(t *testing.T) {
	a := NewFingerprint("apple banana cherry")
	b := NewFingerprint("dog elephant frog")
	if got := a.Similarity(b); got != 0 {
		t.Errorf("Similarity(disjoint) = %v, want 0", got)
	}
}

func TestNearDetectsRewordedHeadlines(t *testing.T) {
	a := "Signal releases new desktop client with usernames"
	b := "Signal desktop client releases with usernames support"
	if !Near(a, b, 0.8) {
		t.Errorf("Near(%q, %q) = false, want true", a, b)
	}
	c := "Kernel 6.12 ships realtime preemption"
	if Near(a, c, 0.8) {
		t.Errorf("Near(%q, %q) = true, want false", a, c)
	}
}

func TestTokenizeFiltersShortTokens(t *testing.T) {
	tokens := Tokenize("Go is a fun language: v2!")
	want := []string{"fun", "language"}
	if len(tokens) != len(want) {
		t.Fatalf("Tokenize() = %v, want %v", tokens, want)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Fatalf("Tokenize() = %v, want %v", tokens, want)
		}
	}
}
