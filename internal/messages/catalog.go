// Package messages загружает локализованные тексты бота из встроенных YAML-файлов.
package messages

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var locales embed.FS

// DefaultLanguage язык, на который откатываются отсутствующие переводы
var DefaultLanguage = language.German

// Catalog тексты бота для одного языка
type Catalog struct {
	lang    language.Tag
	printer *message.Printer
	keys    map[string]struct{}
	// formats сырые строки языка каталога поверх языка по умолчанию
	formats map[string]string
}

// Load загружает все локали и возвращает каталог для выбранного языка
func Load(lang string) (*Catalog, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("parse language %q: %w", lang, err)
	}

	builder := catalog.NewBuilder(catalog.Fallback(DefaultLanguage))
	keys := make(map[string]struct{})

	files, err := locales.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}

	var supported []language.Tag
	byLocale := make(map[string]map[string]string)
	for _, f := range files {
		name := strings.TrimSuffix(f.Name(), path.Ext(f.Name()))
		entries, err := readLocale(f.Name())
		if err != nil {
			return nil, err
		}

		byLocale[name] = entries
		localeTag := language.Make(name)
		supported = append(supported, localeTag)
		for key, text := range entries {
			if err := builder.SetString(localeTag, key, text); err != nil {
				return nil, fmt.Errorf("set %s/%s: %w", name, key, err)
			}
			keys[key] = struct{}{}
		}
	}

	matched, _, confidence := language.NewMatcher(supported).Match(tag)
	if confidence == language.No {
		return nil, fmt.Errorf("unsupported language %q", lang)
	}
	base, _ := matched.Base()
	matched = language.Make(base.String())

	formats := make(map[string]string)
	for _, name := range []string{DefaultLanguage.String(), matched.String()} {
		for key, text := range byLocale[name] {
			formats[key] = text
		}
	}

	return &Catalog{
		lang:    matched,
		printer: message.NewPrinter(matched, message.Catalog(builder)),
		keys:    keys,
		formats: formats,
	}, nil
}

// MustLoad как Load, но паникует при ошибке
func MustLoad(lang string) *Catalog {
	c, err := Load(lang)
	if err != nil {
		panic("failed to load messages: " + err.Error())
	}
	return c
}

// Language язык каталога
func (c *Catalog) Language() language.Tag {
	return c.lang
}

// Text возвращает отформатированный текст по ключу. Неизвестный ключ возвращается как есть.
func (c *Catalog) Text(key string, args ...any) string {
	if _, ok := c.keys[key]; !ok {
		return key
	}
	return c.printer.Sprintf(key, args...)
}

// Keys отсортированный список ключей всех локалей
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.keys))
	for k := range c.keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func readLocale(name string) (map[string]string, error) {
	data, err := locales.ReadFile(path.Join("locales", name))
	if err != nil {
		return nil, fmt.Errorf("read locale %s: %w", name, err)
	}

	entries := make(map[string]string)
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse locale %s: %w", name, err)
	}
	return entries, nil
}
