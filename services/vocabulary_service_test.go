package services

import "testing"

func TestNormalizeLevel(t *testing.T) {
	cases := map[string]string{
		"B1":    "b1",
		" a2 ":  "a2",
		"c1":    "c1",
		"  C2":  "c2",
		"":      "",
		"\tB2 ": "b2",
	}

	for in, want := range cases {
		if got := NormalizeLevel(in); got != want {
			t.Errorf("NormalizeLevel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeTopic(t *testing.T) {
	cases := map[string]string{
		"Food and Drink":      "food and drink",
		"  Food and Drink  ":  "food and drink",
		"Food   and\tDrink":   "food and drink",
		"Food\nand\nDrink":    "food and drink",
		"":                    "",
		"   ":                 "",
		"single":              "single",
		" At  the  Airport  ": "at the airport",
		"ANIMALS":             "animals",
	}

	for in, want := range cases {
		if got := NormalizeTopic(in); got != want {
			t.Errorf("NormalizeTopic(%q) = %q, want %q", in, got, want)
		}
	}
}

// Case and space variants of the same topic collapse to one lookup key
func TestNormalizeTopicCaseInvariant(t *testing.T) {
	write := NormalizeTopic("Animals  ")
	read := NormalizeTopic("animals")
	if write != read {
		t.Errorf("topic keys diverge on case: write=%q read=%q", write, read)
	}
}

func TestNormalizeTopicIdempotent(t *testing.T) {
	inputs := []string{"Food  and  Drink", " travel ", "At the Airport"}
	for _, in := range inputs {
		once := NormalizeTopic(in)
		twice := NormalizeTopic(once)
		if once != twice {
			t.Errorf("NormalizeTopic not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
