package db

import "testing"

func TestContains(t *testing.T) {
	for in, want := range map[string]string{
		"Bandra":   "%bandra%",
		"100%":     `%100\%%`,
		"a_b":      `%a\_b%`,
		`c:\homes`: `%c:\\homes%`,
	} {
		if got := Contains(in); got != want {
			t.Errorf("Contains(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLike(t *testing.T) {
	if got, want := Like("title"), `LOWER(title) LIKE ? ESCAPE '\'`; got != want {
		t.Fatalf("Like = %q, want %q", got, want)
	}
}
