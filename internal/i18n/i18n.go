// Package i18n serves localized UI strings with English and raw-key fallback.
package i18n

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
)

// Fallback is the language used when a key has no entry for the requested one.
const Fallback = "en"

//go:embed strings.toml
var builtin string

// Table maps key -> language -> text.
type Table struct {
	entries map[string]map[string]string
}

// Parse decodes a TOML table of the form ["key"] lang = "text".
func Parse(data string) (*Table, error) {
	entries := make(map[string]map[string]string)
	if _, err := toml.Decode(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing strings: %w", err)
	}
	return &Table{entries: entries}, nil
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the built-in table.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Parse(builtin)
		if err != nil {
			t = &Table{entries: map[string]map[string]string{}}
		}
		defaultTable = t
	})
	return defaultTable
}

// Lookup returns the text for key in lang, falling back to English and then
// to the key itself.
func (t *Table) Lookup(lang, key string) string {
	if byLang, ok := t.entries[key]; ok {
		if s, ok := byLang[Normalize(lang)]; ok && s != "" {
			return s
		}
		if s, ok := byLang[Fallback]; ok && s != "" {
			return s
		}
	}
	return key
}

// Languages lists every language that appears in the table.
func (t *Table) Languages() []string {
	seen := map[string]bool{}
	for _, byLang := range t.entries {
		for l := range byLang {
			seen[l] = true
		}
	}
	out := make([]string, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Localizer binds a table to one language.
type Localizer struct {
	table *Table
	lang  string
}

// For returns a localizer for lang over the built-in table.
func For(lang string) Localizer {
	return Default().Localizer(lang)
}

// Localizer returns a localizer for lang.
func (t *Table) Localizer(lang string) Localizer {
	return Localizer{table: t, lang: Normalize(lang)}
}

// Lang returns the normalized language code.
func (l Localizer) Lang() string { return l.lang }

// T translates key. With args the text is used as a fmt format.
func (l Localizer) T(key string, args ...any) string {
	t := l.table
	if t == nil {
		t = Default()
	}
	s := t.Lookup(l.lang, key)
	if len(args) > 0 {
		return fmt.Sprintf(s, args...)
	}
	return s
}

// Normalize reduces a locale like "de_DE.UTF-8" or "pt-BR" to its language.
func Normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "_-."); i >= 0 {
		lang = lang[:i]
	}
	if lang == "" || lang == "c" || lang == "posix" {
		return Fallback
	}
	return lang
}
