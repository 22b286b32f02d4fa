package parse

import (
	"testing"

	"github.com/m3rciful/kursbot/internal/domain"
)

func TestAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"150", 150, true},
		{"99,5", 99.5, true},
		{"12 500", 12500, true},
		{"12 500,75", 12500.75, true},
		{"1,234.5", 1234.5, true},
		{"0.25", 0.25, true},
		{"0", 0, false},
		{"-5", 0, false},
		{"abc", 0, false},
		{"1,2,3", 0, false},
		{"", 0, false},
		{"   ", 0, false},
	}
	for _, tc := range cases {
		got, err := Amount(tc.in)
		if tc.ok {
			if err != nil {
				t.Errorf("Amount(%q) unexpected error: %v", tc.in, err)
				continue
			}
			if got != tc.want {
				t.Errorf("Amount(%q) = %v, want %v", tc.in, got, tc.want)
			}
		} else if err == nil {
			t.Errorf("Amount(%q) = %v, want error", tc.in, got)
		}
	}
}

func TestAlertSymbolic(t *testing.T) {
	req, ok := Alert("USD > 13000")
	if !ok {
		t.Fatal("expected match")
	}
	if req.From != "USD" || req.To != "UZS" {
		t.Errorf("unexpected pair %s/%s", req.From, req.To)
	}
	if req.Condition != domain.ConditionAbove || req.Target != 13000 {
		t.Errorf("unexpected condition %s target %v", req.Condition, req.Target)
	}
}

func TestAlertSymbolicExplicitQuote(t *testing.T) {
	req, ok := Alert("eur<14 000 uzs")
	if !ok {
		t.Fatal("expected match")
	}
	if req.From != "EUR" || req.To != "UZS" {
		t.Errorf("unexpected pair %s/%s", req.From, req.To)
	}
	if req.Condition != domain.ConditionBelow || req.Target != 14000 {
		t.Errorf("unexpected condition %s target %v", req.Condition, req.Target)
	}
}

func TestAlertEnglishWords(t *testing.T) {
	req, ok := Alert("usd above 12 900")
	if !ok {
		t.Fatal("expected match")
	}
	if req.Condition != domain.ConditionAbove || req.Target != 12900 {
		t.Errorf("unexpected condition %s target %v", req.Condition, req.Target)
	}

	req, ok = Alert("USD below 12500,5")
	if !ok {
		t.Fatal("expected match")
	}
	if req.Condition != domain.ConditionBelow || req.Target != 12500.5 {
		t.Errorf("unexpected condition %s target %v", req.Condition, req.Target)
	}
}

func TestAlertRussianWords(t *testing.T) {
	req, ok := Alert("usd выше 13000")
	if !ok {
		t.Fatal("expected match")
	}
	if req.Condition != domain.ConditionAbove {
		t.Errorf("unexpected condition %s", req.Condition)
	}

	req, ok = Alert("EUR ниже 14000")
	if !ok {
		t.Fatal("expected match")
	}
	if req.Condition != domain.ConditionBelow {
		t.Errorf("unexpected condition %s", req.Condition)
	}
}

func TestAlertUzbekWords(t *testing.T) {
	req, ok := Alert("usd 13000 dan yuqori")
	if !ok {
		t.Fatal("expected match")
	}
	if req.From != "USD" || req.Condition != domain.ConditionAbove || req.Target != 13000 {
		t.Errorf("unexpected result %+v", req)
	}

	req, ok = Alert("eur 14000 dan past")
	if !ok {
		t.Fatal("expected match")
	}
	if req.Condition != domain.ConditionBelow {
		t.Errorf("unexpected condition %s", req.Condition)
	}
}

func TestAlertNoMatch(t *testing.T) {
	for _, in := range []string{
		"hello there",
		"usd 13000",
		"> 13000",
		"usd > zero",
		"usd > 0",
	} {
		if _, ok := Alert(in); ok {
			t.Errorf("Alert(%q) unexpectedly matched", in)
		}
	}
}
