package pipeline

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		line string
		want LineClass
	}{
		{"Gabriel Wüst", ClassPersonLike},
		{"Anna-Lena Meier", ClassPersonLike},
		{"Maria Rossi SA", ClassPlain},
		{"Los Mensch + Arbeitswelt", ClassPlain},
		{"Kasinostrasse 25", ClassAddressLike},
		{"Via Roma 5", ClassAddressLike},
		{"Chemin du Lac 12a", ClassAddressLike},
		{"info@example.ch", ClassNoise},
		{"Tel. +41 62 123 45 67", ClassNoise},
		{"www.example.ch", ClassNoise},
		{"27106", ClassNoise},
		{"  ", ClassNoise},
	}
	for _, tc := range cases {
		if got := Classify(tc.line); got != tc.want {
			t.Fatalf("Classify(%q)=%d want %d", tc.line, got, tc.want)
		}
	}
}

func TestLooksLikePersonBounds(t *testing.T) {
	if looksLikePerson("Gabriel") {
		t.Fatalf("single token accepted")
	}
	if looksLikePerson("Anna Berta Clara Dora Emma") {
		t.Fatalf("five tokens accepted")
	}
	if looksLikePerson("Hans MÜLLER") {
		t.Fatalf("all-caps token accepted")
	}
}

func TestHasStreetMarkerTokenLevel(t *testing.T) {
	for _, tok := range []string{"Kasinostrasse", "Bahnhofstraße", "Museumsweg", "Dorfplatz", "via", "rue", "avenue"} {
		if !hasStreetMarker(tok) {
			t.Fatalf("%q not recognized", tok)
		}
	}
	// "via" inside an ordinary word must not count at token level.
	for _, tok := range []string{"Olivia", "Trivial", "Struktur", "25"} {
		if hasStreetMarker(tok) {
			t.Fatalf("%q wrongly recognized", tok)
		}
	}
}
