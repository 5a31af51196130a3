package identifier

import (
	"reflect"
	"testing"
)

func TestParseEmail(t *testing.T) {
	q := Parse("  Alice@Example.COM ")
	if q.Kind != KindEmail {
		t.Fatal("expected email kind")
	}
	if q.Email != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %q", q.Email)
	}
}

func TestParseInternationalPhone(t *testing.T) {
	q := Parse("+20155512345")
	if q.Kind != KindPhone {
		t.Fatal("expected phone kind")
	}

	want := []string{
		"+20155512345",
		"00155512345", // cc length 1
		"0155512345",  // cc length 2
	}
	if !reflect.DeepEqual(q.Exact, want) {
		t.Fatalf("candidates = %v, want %v", q.Exact, want)
	}
	if q.Suffix != "" {
		t.Fatalf("unexpected suffix %q", q.Suffix)
	}
}

func TestParseInternationalPhoneWithSpaces(t *testing.T) {
	q := Parse("+201555 12345")

	found := false
	for _, c := range q.Exact {
		if c == "0155512345" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected local variant 0155512345 among %v", q.Exact)
	}
}

func TestParseInternationalShortRemainderDiscarded(t *testing.T) {
	// Nine digits after "+": only the one-digit country code leaves a
	// remainder long enough.
	q := Parse("+1234567890")
	want := []string{"+1234567890", "0234567890"}
	if !reflect.DeepEqual(q.Exact, want) {
		t.Fatalf("candidates = %v, want %v", q.Exact, want)
	}
}

func TestParseLocalPhone(t *testing.T) {
	q := Parse("0155512345")
	if q.Kind != KindPhone {
		t.Fatal("expected phone kind")
	}
	if len(q.Exact) != 1 || q.Exact[0] != "0155512345" {
		t.Fatalf("unexpected exact candidates %v", q.Exact)
	}
	if q.Suffix != "155512345" {
		t.Fatalf("suffix = %q, want 155512345", q.Suffix)
	}
}

func TestParseBarePhone(t *testing.T) {
	q := Parse("155512345")
	if len(q.Exact) != 1 || q.Exact[0] != "155512345" || q.Suffix != "" {
		t.Fatalf("bare identifiers must match exactly only: %+v", q)
	}
}

func TestMatchesPhone(t *testing.T) {
	cases := []struct {
		name   string
		stored string
		login  string
		want   bool
	}{
		{"exact local", "0155512345", "0155512345", true},
		{"international login vs local stored", "0155512345", "+20155512345", true},
		{"international login with spaces", "0155512345", "+201555 12345", true},
		{"local login vs international stored", "+20155512345", "0155512345", true},
		{"unrelated digits", "0155512345", "0999999999", false},
		{"suffix needs plus prefix", "20155512345", "0155512345", false},
		{"bare login no variants", "0155512345", "155512345", false},
	}

	for _, tc := range cases {
		q := Parse(tc.login)
		if got := MatchesPhone(tc.stored, q); got != tc.want {
			t.Fatalf("%s: MatchesPhone(%q, Parse(%q)) = %v, want %v", tc.name, tc.stored, tc.login, got, tc.want)
		}
	}
}

func TestMatchesPhoneIgnoresEmailQueries(t *testing.T) {
	q := Parse("alice@example.com")
	if MatchesPhone("0155512345", q) {
		t.Fatal("email query must never match a phone")
	}
}
