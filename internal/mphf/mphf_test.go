package mphf

import (
	"fmt"
	"strings"
	"testing"
)

func TestHashKnownValues(t *testing.T) {
	tests := []struct {
		key  string
		salt uint64
		size int
		want int
	}{
		{"select", 0, 487, 395},
		{"select", 5, 487, 298},
		{"from", 0, 487, 76},
		{"from", 5, 487, 67},
		{"", 0, 487, 447},
		{"abort", 0, 1000003, 326617},
	}
	for _, tt := range tests {
		if got := Hash(tt.key, tt.salt, tt.size); got != tt.want {
			t.Errorf("Hash(%q, %d, %d) = %d, want %d", tt.key, tt.salt, tt.size, got, tt.want)
		}
	}
}

func wordEntries(words []string) []Entry[int] {
	entries := make([]Entry[int], len(words))
	for i, w := range words {
		entries[i] = Entry[int]{Key: w, Value: i}
	}
	return entries
}

func TestBuildAndGet(t *testing.T) {
	var words []string
	for i := range 300 {
		words = append(words, fmt.Sprintf("word_%03d", i))
	}
	m, err := Build(wordEntries(words))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if m.Len() != len(words) {
		t.Fatalf("Len = %d, want %d", m.Len(), len(words))
	}
	for i, w := range words {
		v, ok := m.Get(w)
		if !ok || v != i {
			t.Errorf("Get(%q) = %d, %v; want %d, true", w, v, ok, i)
		}
	}
	for _, w := range words {
		for _, miss := range []string{w + "x", w[:len(w)-1], strings.ToUpper(w), "_" + w} {
			if v, ok := m.Get(miss); ok {
				t.Errorf("Get(%q) = %d, want miss", miss, v)
			}
		}
	}
}

func TestBuildSmallSets(t *testing.T) {
	for _, words := range [][]string{
		{"only"},
		{"a", "b"},
		{"a", "b", "c"},
		{"begin", "commit", "rollback", "savepoint", "release"},
	} {
		m, err := Build(wordEntries(words))
		if err != nil {
			t.Fatalf("Build(%q): %v", words, err)
		}
		for i, w := range words {
			if v, ok := m.Get(w); !ok || v != i {
				t.Errorf("%q: Get(%q) = %d, %v", words, w, v, ok)
			}
		}
		if _, ok := m.Get("missing"); ok {
			t.Errorf("%q: Get(missing) hit", words)
		}
	}
}

func TestBuildRejectsDuplicates(t *testing.T) {
	_, err := Build(wordEntries([]string{"x", "y", "x"}))
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate key error, got %v", err)
	}
}

func TestEmptyMap(t *testing.T) {
	m, err := Build[int](nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Get("anything"); ok {
		t.Error("empty map returned a value")
	}
}

func TestLargestPrime(t *testing.T) {
	for n, want := range map[int]int{1: 1, 2: 2, 3: 3, 4: 3, 10: 7, 490: 487} {
		if got := largestPrime(n); got != want {
			t.Errorf("largestPrime(%d) = %d, want %d", n, got, want)
		}
	}
}
