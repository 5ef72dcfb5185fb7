package config

import (
	"os"

	"github.com/theirongolddev/fxtrip/internal/i18n"
)

// DetectLanguage reads the POSIX locale variables to pick a UI language.
// Falls back to English when none is set.
func DetectLanguage() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(key); v != "" {
			return i18n.Normalize(v)
		}
	}
	return i18n.Fallback
}

// SupportedLanguage reports whether the built-in strings cover lang.
func SupportedLanguage(lang string) bool {
	lang = i18n.Normalize(lang)
	for _, l := range i18n.Default().Languages() {
		if l == lang {
			return true
		}
	}
	return false
}
