package core

import (
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2024, 1, 1), true},
		{NewDate(2024, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateISO(t *testing.T) {
	if got := NewDate(2024, 5, 3).ISO(); got != "2024-05-03" {
		t.Fatalf("expected 2024-05-03, got %s", got)
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Date:        NewDate(2024, 5, 1),
		Description: "Whole Foods Market",
		Amount:      Money{Cents: -4500},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Date: Date{}, Description: "a", Amount: Money{Cents: -1}},
		{Date: NewDate(2024, 5, 1), Description: "  ", Amount: Money{Cents: -1}},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestNormalizeDescription(t *testing.T) {
	cases := []struct {
		in, out string
	}{
		{"  Whole   Foods\tMarket ", "Whole Foods Market"},
		{"STARBUCKS #1234", "STARBUCKS #1234"},
		{"", "Unknown"},
		{"   ", "Unknown"},
	}
	for _, tc := range cases {
		if got := NormalizeDescription(tc.in); got != tc.out {
			t.Fatalf("%q expected %q, got %q", tc.in, tc.out, got)
		}
	}
}
