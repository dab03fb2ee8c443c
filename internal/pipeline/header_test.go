package pipeline

import "testing"

func TestHeaderWindow(t *testing.T) {
	got := HeaderWindow("a b c d e", 3)
	if got != "a b c" {
		t.Fatalf("got %q", got)
	}
}

func TestHeaderWindowCollapsesLayout(t *testing.T) {
	got := HeaderWindow("27106\n\nLos  Mensch\tArbeitswelt\n", 50)
	if got != "27106 Los Mensch Arbeitswelt" {
		t.Fatalf("got %q", got)
	}
}

func TestHeaderWindowShortText(t *testing.T) {
	if got := HeaderWindow("one two", 50); got != "one two" {
		t.Fatalf("got %q", got)
	}
}
