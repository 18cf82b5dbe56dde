package search

import (
	"testing"

	"github.com/go-test/deep"
)

func TestTokens(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Κολωνάκι, Αθήνα, Ελλάδα", []string{"κολωνακι", "αθηνα", "ελλαδα"}},
		{"  Café-Bar  (Ψυρρή)!", []string{"cafe", "bar", "ψυρρη"}},
		{"ΑΘΗΝΑΣ", []string{"αθηνασ"}},
		{"", []string{}},
		{" ,;. ", []string{}},
		{"\xff\xfe", []string{}},
		{"Αθήνα\xffΚολωνάκι", []string{"αθηνα", "κολωνακι"}},
	}

	for _, test := range tests {
		got := Tokens(test.in)
		if diff := deep.Equal(got, test.want); diff != nil {
			t.Errorf("Tokens(%q): %v", test.in, diff)
		}
	}
}

func TestTokenMatch(t *testing.T) {
	const target = "Κολωνάκι, Αθήνα, Ελλάδα"

	tests := []struct {
		query string
		want  bool
	}{
		{"αθηνα κολωνακι", true},
		{"ΚΟΛΩΝΑΚΙ αθήνα", true},
		{"κολων", true},
		{"αθηνα περιστερι", false},
		{"", true},
		{"   ", true},
		{"\xff", true},
		{"\xffαθηνα", true},
		{"\xffπειραιας", false},
	}

	for _, test := range tests {
		if got := TokenMatch(test.query, target); got != test.want {
			t.Errorf("TokenMatch(%q) = %v, want %v", test.query, got, test.want)
		}
	}

	if TokenMatch("αθηνα", "") {
		t.Error("empty target should not match a non-empty query")
	}
	if TokenMatch("αθηνα", "\xff") {
		t.Error("a target of invalid bytes should not match a non-empty query")
	}
}
