// Package i18n looks up translated UI strings by locale, falling back to
// en-US when a locale or a key is missing.
package i18n

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"

	"github.com/hubastard/arbor/engine/logging"
)

// Fallback is always present in a Catalog and answers every lookup the
// requested locale cannot.
var Fallback = language.AmericanEnglish

var ErrNoTranslations = errors.New("no translations")

// Catalog holds message format strings per language. Messages use
// golang.org/x/text/message formatting, so "%d items" and friends work.
// It is not safe for concurrent mutation.
type Catalog struct {
	builder *catalog.Builder
	keys    map[language.Tag]map[string]struct{}
	tags    []language.Tag
	matcher language.Matcher
}

func NewCatalog() *Catalog {
	c := &Catalog{
		builder: catalog.NewBuilder(catalog.Fallback(Fallback)),
		keys:    make(map[language.Tag]map[string]struct{}),
	}
	c.addTag(Fallback)
	return c
}

// Set adds or replaces the message for key in locale.
func (c *Catalog) Set(locale, key, msg string) error {
	tag, err := language.Parse(locale)
	if err != nil {
		return fmt.Errorf("locale %q: %w", locale, err)
	}
	if err := c.builder.SetString(tag, key, msg); err != nil {
		return fmt.Errorf("set %s/%s: %w", tag, key, err)
	}
	c.addTag(tag)
	c.keys[tag][key] = struct{}{}
	return nil
}

// LoadYAML adds the key: message mapping in data to locale.
func (c *Catalog) LoadYAML(locale string, data []byte) error {
	var msgs map[string]string
	if err := yaml.Unmarshal(data, &msgs); err != nil {
		return fmt.Errorf("locale %q: %w", locale, err)
	}
	for k, v := range msgs {
		if err := c.Set(locale, k, v); err != nil {
			return err
		}
	}
	return nil
}

// LoadFS loads every <locale>.yaml file in dir. Broken files are logged and
// skipped. It fails with ErrNoTranslations when no file loads.
func (c *Catalog) LoadFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("load locales: %w", err)
	}
	loaded := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || path.Ext(name) != ".yaml" {
			continue
		}
		locale := strings.TrimSuffix(name, ".yaml")
		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err == nil {
			err = c.LoadYAML(locale, data)
		}
		if err != nil {
			logging.Logger().Error("error while loading language", "locale", locale, "err", err)
			continue
		}
		loaded++
	}
	if loaded == 0 {
		return fmt.Errorf("%s: %w", dir, ErrNoTranslations)
	}
	return nil
}

// Languages lists the loaded languages, Fallback first.
func (c *Catalog) Languages() []language.Tag { return append([]language.Tag(nil), c.tags...) }

// Match returns the loaded language that best serves locale, or Fallback.
func (c *Catalog) Match(locale string) language.Tag {
	want, err := language.Parse(locale)
	if err != nil {
		return Fallback
	}
	_, i, conf := c.matcher.Match(want)
	if conf == language.No {
		return Fallback
	}
	return c.tags[i]
}

// Has reports whether locale itself defines key.
func (c *Catalog) Has(locale, key string) bool {
	tag, err := language.Parse(locale)
	if err != nil {
		return false
	}
	_, ok := c.keys[tag][key]
	return ok
}

// Lookup formats the message for key in the language best matching locale.
// Keys missing there come from Fallback; keys missing everywhere are
// returned unformatted.
func (c *Catalog) Lookup(locale, key string, args ...any) string {
	tag := c.Match(locale)
	if _, ok := c.keys[tag][key]; !ok {
		if _, ok := c.keys[Fallback][key]; !ok {
			return key
		}
		tag = Fallback
	}
	return message.NewPrinter(tag, message.Catalog(c.builder)).Sprintf(key, args...)
}

// Printer returns a printer for locale backed by the catalog.
func (c *Catalog) Printer(locale string) *message.Printer {
	return message.NewPrinter(c.Match(locale), message.Catalog(c.builder))
}

func (c *Catalog) addTag(tag language.Tag) {
	if _, ok := c.keys[tag]; ok {
		return
	}
	c.keys[tag] = make(map[string]struct{})
	c.tags = append(c.tags, tag)
	c.matcher = language.NewMatcher(c.tags)
}
