package util

import "testing"

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plus folds to space", input: "Los Mensch+Arbeitswelt", want: "los mensch arbeitswelt"},
		{name: "spaced plus", input: "Los Mensch + Arbeitswelt", want: "los mensch arbeitswelt"},
		{name: "diacritics", input: "Müller & Co", want: "muller co"},
		{name: "punctuation folds", input: "Café de la Gare, S.A.", want: "cafe de la gare s a"},
		{name: "whitespace collapse", input: "  Vega   AG  ", want: "vega ag"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeName(tc.input)
			if got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestNormalizeNameIdempotent(t *testing.T) {
	inputs := []string{"Müller & Co", "Los Mensch + Arbeitswelt", "ÀÉÎÕÜ ß 12-3", ""}
	for _, in := range inputs {
		once := NormalizeName(in)
		if NormalizeName(once) != once {
			t.Fatalf("not idempotent for %q: %q vs %q", in, once, NormalizeName(once))
		}
	}
}

func TestNormalizeNameCaseAndDiacriticInsensitive(t *testing.T) {
	if NormalizeName("Müller & Co") != NormalizeName("MULLER & CO") {
		t.Fatal("case/diacritic variants must normalize equal")
	}
	if NormalizeName("Müller & Co") == NormalizeName("muller and co") {
		t.Fatal("ampersand and the word 'and' must stay distinct")
	}
}

func TestNormalizeCode(t *testing.T) {
	cases := map[string]string{
		"27106":    "27106",
		" 27106 ":  "27106",
		"27106.0":  "27106",
		"12.5":     "12.5",
		"ABC-12.0": "ABC-12.0",
	}
	for in, want := range cases {
		if got := NormalizeCode(in); got != want {
			t.Fatalf("NormalizeCode(%q)=%q want %q", in, got, want)
		}
	}
}

func TestCoerceInt(t *testing.T) {
	if v, ok := CoerceInt("12.0"); !ok || v != 12 {
		t.Fatalf("got %d %v", v, ok)
	}
	if v, ok := CoerceInt("7"); !ok || v != 7 {
		t.Fatalf("got %d %v", v, ok)
	}
	if _, ok := CoerceInt(""); ok {
		t.Fatal("empty cell must not coerce")
	}
	if _, ok := CoerceInt("n/a"); ok {
		t.Fatal("non-numeric cell must not coerce")
	}
}
