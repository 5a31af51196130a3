package tokens

import (
	"regexp"
	"testing"
)

var hexPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestGenerateShape(t *testing.T) {
	plain, hash, err := Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(plain) != PlainLength {
		t.Fatalf("token length = %d, want %d", len(plain), PlainLength)
	}
	if !hexPattern.MatchString(plain) {
		t.Fatalf("token is not lowercase hex: %q", plain)
	}
	if hash == ([32]byte{}) {
		t.Fatal("expected non-zero hash")
	}
}

func TestGenerateUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 64; i++ {
		plain, _, err := Generate()
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if seen[plain] {
			t.Fatal("duplicate token generated")
		}
		seen[plain] = true
	}
}

func TestHashForLookupMatchesGenerate(t *testing.T) {
	plain, hash, err := Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if HashForLookup(plain) != hash {
		t.Fatal("lookup hash does not match generated hash")
	}
	if HashForLookup(plain+"x") == hash {
		t.Fatal("distinct candidate should not match")
	}
}

func TestEncodeHash(t *testing.T) {
	plain, hash, err := Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	encoded := EncodeHash(hash)
	if len(encoded) != 64 || !hexPattern.MatchString(encoded) {
		t.Fatalf("unexpected encoded hash: %q", encoded)
	}
	if encoded != EncodeHash(HashForLookup(plain)) {
		t.Fatal("encoding is not deterministic")
	}
}
