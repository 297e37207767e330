package core

import (
	"encoding/json"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"3.50", "3.5", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{"0", "0", true},
		{".5", "0.5", true},
		{"7.", "7", true},
		{"1.005", "1.01", true}, // half-up rounding
		{" 2.50 ", "2.5", true},
		{"-1", "", false},
		{"+1", "", false},
		{"1e3", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{".", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got.String(), err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(MustMoney("3.50"))
	if err != nil || string(b) != "3.5" {
		t.Fatalf("expected bare number 3.5, got %s (err=%v)", b, err)
	}

	for _, in := range []string{`12.5`, `"12.5"`, `"12,5"`} {
		var m Money
		if err := json.Unmarshal([]byte(in), &m); err != nil {
			t.Fatalf("%s: unexpected error %v", in, err)
		}
		if !m.Equal(MustMoney("12.5")) {
			t.Fatalf("%s: expected 12.5, got %s", in, m)
		}
	}

	var m Money
	if err := json.Unmarshal([]byte(`"twelve"`), &m); err == nil {
		t.Fatalf("expected error for non numeric string")
	}
}

func TestRawAmountDecodesNumbersAndStrings(t *testing.T) {
	var in struct {
		A RawAmount `json:"a"`
		B RawAmount `json:"b"`
		C RawAmount `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":"3.50","b":50,"c":null}`), &in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.A != "3.50" || in.B != "50" || in.C != "" {
		t.Fatalf("unexpected raw amounts: %+v", in)
	}
	m, err := in.A.Coerce()
	if err != nil || m.Float() != 3.5 {
		t.Fatalf("expected 3.5, got %v (err=%v)", m, err)
	}
}
