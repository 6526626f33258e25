package security

import (
	"testing"
)

func TestHasher_DigestAndMatches(t *testing.T) {
	h := NewHasher(10)
	password := []byte("longpassword1")
	hash, err := h.Digest(password)
	if err != nil {
		t.Fatalf("Digest: %v", err)
	}
	if hash == "" {
		t.Fatal("Digest returned empty")
	}
	if !h.Matches(password, hash) {
		t.Fatal("Matches should succeed for the original password")
	}
}

func TestHasher_MatchesWrongPassword(t *testing.T) {
	h := NewHasher(10)
	hash, _ := h.Digest([]byte("longpassword1"))
	if h.Matches([]byte("wrongpass"), hash) {
		t.Fatal("Matches with wrong password should fail")
	}
}

func TestHasher_MatchesMalformedHash(t *testing.T) {
	h := NewHasher(10)
	if h.Matches([]byte("whatever"), "not-a-bcrypt-hash") {
		t.Fatal("Matches with malformed stored hash should fail")
	}
}

func TestHasher_Cost(t *testing.T) {
	h := NewHasher(12)
	if h.Cost != 12 {
		t.Errorf("Cost want 12, got %d", h.Cost)
	}
	h0 := NewHasher(0)
	if h0.Cost < 4 {
		t.Errorf("zero cost should be clamped to at least MinCost, got %d", h0.Cost)
	}
}
