package render

import "strings"

// Translator resolves label keys such as "tabs.strategies" for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// TranslatorFunc adapts a function into a Translator.
type TranslatorFunc func(locale, key string, args ...any) (string, error)

func (fn TranslatorFunc) Translate(locale, key string, args ...any) (string, error) {
	return fn(locale, key, args...)
}

// Label returns the translation of key, or fallback when no translator is
// set or it has nothing for key. OnMissing hears about every key a
// configured translator could not serve.
func Label(opts RenderOptions, key, fallback string) string {
	key = strings.TrimSpace(key)
	if key == "" || opts.Translator == nil {
		return orKey(fallback, key)
	}

	text, err := opts.Translator.Translate(opts.Locale, key)
	if err == nil && strings.TrimSpace(text) != "" {
		return text
	}
	if opts.OnMissing != nil {
		opts.OnMissing(opts.Locale, key, err)
	}
	return orKey(fallback, key)
}

func orKey(fallback, key string) string {
	if strings.TrimSpace(fallback) == "" {
		return key
	}
	return fallback
}
