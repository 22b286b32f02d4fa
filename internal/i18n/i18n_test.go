package i18n

import "testing"

func TestTFallsBackToEnglish(t *testing.T) {
	if got := T("de", "alerts.empty"); got != catalog[LangEN]["alerts.empty"] {
		t.Fatalf("unexpected fallback: %q", got)
	}
}

func TestTUnknownKeyReturnsKey(t *testing.T) {
	if got := T(LangRU, "no.such.key"); got != "no.such.key" {
		t.Fatalf("unexpected value: %q", got)
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"ru": LangRU,
		"uz": LangUZ,
		"en": LangEN,
		"fr": Default,
		"":   Default,
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCatalogsCoverEnglishKeys(t *testing.T) {
	for _, lang := range []string{LangRU, LangUZ} {
		for key := range catalog[LangEN] {
			if _, ok := catalog[lang][key]; !ok {
				t.Errorf("%s catalog missing key %q", lang, key)
			}
		}
	}
}
