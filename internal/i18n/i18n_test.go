package i18n

import "testing"

func TestLookupFallbacks(t *testing.T) {
	tbl, err := Parse(`
["greet"]
en = "Hello"
de = "Hallo"

["only.de"]
de = "Nur Deutsch"
`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	tests := []struct {
		lang, key, want string
	}{
		{"de", "greet", "Hallo"},
		{"de_DE.UTF-8", "greet", "Hallo"},
		{"fr", "greet", "Hello"},
		{"en", "missing.key", "missing.key"},
		{"fr", "only.de", "only.de"},
		{"de", "only.de", "Nur Deutsch"},
	}
	for _, tt := range tests {
		if got := tbl.Lookup(tt.lang, tt.key); got != tt.want {
			t.Errorf("Lookup(%q, %q) = %q, want %q", tt.lang, tt.key, got, tt.want)
		}
	}
}

func TestLocalizerFormats(t *testing.T) {
	l := For("de")
	if got := l.T("budget.day_of", 3, 7); got != "Tag 3 von 7" {
		t.Errorf("T(day_of) = %q, want %q", got, "Tag 3 von 7")
	}
	if got := For("xx").T("tab.history"); got != "History" {
		t.Errorf("unknown language = %q, want English", got)
	}
}

func TestBuiltinTableIsComplete(t *testing.T) {
	tbl := Default()
	want := []string{"de", "en", "es", "fr", "ja"}
	langs := tbl.Languages()
	if len(langs) != len(want) {
		t.Fatalf("Languages = %v, want %v", langs, want)
	}
	for key, byLang := range tbl.entries {
		for _, l := range want {
			if byLang[l] == "" {
				t.Errorf("key %q missing %s", key, l)
			}
		}
	}
}

func TestNormalize(t *testing.T) {
	for in, want := range map[string]string{
		"":            "en",
		"C":           "en",
		"ja_JP.UTF-8": "ja",
		"pt-BR":       "pt",
		" FR ":        "fr",
	} {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
