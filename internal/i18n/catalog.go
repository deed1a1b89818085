// Package i18n resolves translation keys for forecast messages.
package i18n

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// BaseLocale is the fallback locale for missing keys.
const BaseLocale = "en-US"

// Catalog holds translations for every supported locale.
type Catalog struct {
	builder  *catalog.Builder
	messages map[language.Tag]map[string]string
	tags     []language.Tag
	matcher  language.Matcher
}

// NewCatalog registers the given messages, keyed by locale then key. The
// base locale must be present.
func NewCatalog(locales map[string]map[string]string) (*Catalog, error) {
	if _, ok := locales[BaseLocale]; !ok {
		return nil, fmt.Errorf("base locale %s is not defined", BaseLocale)
	}

	names := make([]string, 0, len(locales))
	for name := range locales {
		if name != BaseLocale {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	names = append([]string{BaseLocale}, names...)

	c := &Catalog{
		builder:  catalog.NewBuilder(catalog.Fallback(language.MustParse(BaseLocale))),
		messages: make(map[language.Tag]map[string]string, len(locales)),
	}
	for _, name := range names {
		tag, err := language.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("parse locale tag %q: %w", name, err)
		}
		msgs := make(map[string]string, len(locales[name]))
		for key, value := range locales[name] {
			key = strings.TrimSpace(key)
			if key == "" {
				return nil, fmt.Errorf("locale %s: message key cannot be blank", name)
			}
			// Stored text is printed as is, so verbs are escaped.
			if err := c.builder.SetString(tag, key, strings.ReplaceAll(value, "%", "%%")); err != nil {
				return nil, fmt.Errorf("locale %s: set %q: %w", name, key, err)
			}
			msgs[key] = value
		}
		c.messages[tag] = msgs
		c.tags = append(c.tags, tag)
	}
	c.matcher = language.NewMatcher(c.tags)
	return c, nil
}

var defaultCatalog = mustCatalog(NewCatalog(builtin))

// Default returns the catalog of built-in translations.
func Default() *Catalog {
	return defaultCatalog
}

func mustCatalog(c *Catalog, err error) *Catalog {
	if err != nil {
		panic(err)
	}
	return c
}

// Locales returns the supported locales, base locale first.
func (c *Catalog) Locales() []string {
	out := make([]string, 0, len(c.tags))
	for _, tag := range c.tags {
		out = append(out, tag.String())
	}
	return out
}

// For returns a translator for the closest supported locale.
func (c *Catalog) For(locale string) *Translator {
	tag := c.tags[0]
	if strings.TrimSpace(locale) != "" {
		if requested, err := language.Parse(locale); err == nil {
			_, index, confidence := c.matcher.Match(requested)
			if confidence != language.No {
				tag = c.tags[index]
			}
		}
	}
	return &Translator{catalog: c, tag: tag}
}

// Translator resolves keys for one locale. It implements
// message.Translator of the message composer.
type Translator struct {
	catalog *Catalog
	tag     language.Tag
}

// Locale returns the resolved locale.
func (t *Translator) Locale() string {
	return t.tag.String()
}

// Resolve returns the text for key, falling back to the base locale and
// then to the key itself.
func (t *Translator) Resolve(key string) string {
	for _, tag := range []language.Tag{t.tag, t.catalog.tags[0]} {
		if _, ok := t.catalog.messages[tag][key]; ok {
			return message.NewPrinter(tag, message.Catalog(t.catalog.builder)).Sprintf(key)
		}
	}
	return key
}
