package password

import (
	"strings"
	"testing"
)

func testConfig() Config {
	return Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func TestNewRejectsWeakConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Memory = 1024
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for memory below minimum")
	}

	cfg = testConfig()
	cfg.SaltLength = 4
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for short salt")
	}
}

func TestHashAndVerify(t *testing.T) {
	h, err := New(testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	encoded, err := h.Hash("correct-horse-battery")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$") {
		t.Fatalf("unexpected encoding: %s", encoded)
	}

	if !h.Verify("correct-horse-battery", encoded) {
		t.Fatal("expected matching password to verify")
	}
	if h.Verify("wrong-password-00", encoded) {
		t.Fatal("expected mismatched password to fail")
	}
}

func TestHashRejectsShortPassword(t *testing.T) {
	h, err := New(testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := h.Hash("short"); err == nil {
		t.Fatal("expected error for password under 8 bytes")
	}
}

func TestHashIsSalted(t *testing.T) {
	h, err := New(testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	first, err := h.Hash("correct-horse-battery")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	second, err := h.Hash("correct-horse-battery")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct digests for repeated hashing")
	}
}

func TestVerifyMalformedDigestReturnsFalse(t *testing.T) {
	h, err := New(testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for _, malformed := range []string{
		"",
		"not-a-digest",
		"$bcrypt$v=19$m=8192,t=1,p=1$AAAA$BBBB",
		"$argon2id$v=19$m=8192,t=1$AAAA$BBBB",
	} {
		if h.Verify("anything-at-all", malformed) {
			t.Fatalf("malformed digest %q verified", malformed)
		}
	}
}

func TestSentinelNeverVerifies(t *testing.T) {
	h, err := New(testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	sentinel := Sentinel()
	if !IsSentinel(sentinel) {
		t.Fatal("IsSentinel(Sentinel()) should be true")
	}

	for _, candidate := range []string{"", "password123", sentinel, "$argon2id$"} {
		if h.Verify(candidate, sentinel) {
			t.Fatalf("candidate %q verified against sentinel", candidate)
		}
	}
}

func TestNeedsUpgrade(t *testing.T) {
	h, err := New(testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	encoded, err := h.Hash("correct-horse-battery")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	needs, err := h.NeedsUpgrade(encoded)
	if err != nil {
		t.Fatalf("NeedsUpgrade failed: %v", err)
	}
	if needs {
		t.Fatal("digest at current parameters should not need upgrade")
	}

	stronger := testConfig()
	stronger.Memory = 64 * 1024
	h2, err := New(stronger)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	needs, err = h2.NeedsUpgrade(encoded)
	if err != nil {
		t.Fatalf("NeedsUpgrade failed: %v", err)
	}
	if !needs {
		t.Fatal("digest below configured memory should need upgrade")
	}
}
