// Package lang holds the bot's UI strings. The catalog is embedded from
// messages.yaml; Russian is the fallback for missing keys.
package lang

import (
	_ "embed"
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

const (
	Ru = "ru"
	En = "en"
)

//go:embed messages.yaml
var messagesYAML []byte

var (
	supported = []language.Tag{language.Russian, language.English}
	matcher   = language.NewMatcher(supported)
	cat       *catalog.Builder
	keys      map[string]map[string]string
)

func init() {
	var err error
	cat, keys, err = load(messagesYAML)
	if err != nil {
		panic(fmt.Sprintf("lang: %v", err))
	}
}

func load(data []byte) (*catalog.Builder, map[string]map[string]string, error) {
	var raw map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("parse catalog: %w", err)
	}
	b := catalog.NewBuilder(catalog.Fallback(language.Russian))
	for code, msgs := range raw {
		tag, err := language.Parse(code)
		if err != nil {
			return nil, nil, fmt.Errorf("catalog language %q: %w", code, err)
		}
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				return nil, nil, fmt.Errorf("catalog %s/%s: %w", code, key, err)
			}
		}
	}
	return b, raw, nil
}

// Supported reports whether l has its own catalog.
func Supported(l string) bool {
	return l == Ru || l == En
}

// Match picks the catalog language for a Telegram language code such as
// "en-US". Unknown or empty codes give fallback.
func Match(code, fallback string) string {
	if code == "" {
		return fallback
	}
	tag, err := language.Parse(code)
	if err != nil {
		return fallback
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return fallback
	}
	base, _ := supported[idx].Base()
	return base.String()
}

// T formats the message key in language l.
func T(l, key string, args ...interface{}) string {
	tag := language.Russian
	if l == En {
		tag = language.English
	}
	p := message.NewPrinter(tag, message.Catalog(cat))
	return p.Sprintf(key, args...)
}

// Has reports whether key is defined for l.
func Has(l, key string) bool {
	_, ok := keys[l][key]
	return ok
}

// Category returns the label for a menu category; "" is "all".
func Category(l, category string) string {
	if category == "" {
		return T(l, "cat_all")
	}
	return T(l, "cat_"+category)
}
