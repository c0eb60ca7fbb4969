// Package i18n holds the reply catalogs. Each YAML file maps a language code
// to nested keys; lookups use the dotted path ("rob.success").
package i18n

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Translator resolves localized strings using dot-separated keys.
type Translator interface {
	T(key string) string
	Lang() string
}

// Manager stores all available translations.
type Manager struct {
	translations map[string]map[string]string
	defaultLang  string

	// names[i] is the catalog behind matcher tag i; the default comes first.
	names   []string
	matcher language.Matcher
}

// LoadFromDir loads every *.yaml and *.yml file in dir.
func LoadFromDir(dir, defaultLang string) (*Manager, error) {
	m, err := LoadFS(os.DirFS(dir), defaultLang)
	if err != nil {
		return nil, fmt.Errorf("%w (dir %s)", err, dir)
	}
	return m, nil
}

// LoadFS loads the catalogs at the root of fsys.
func LoadFS(fsys fs.FS, defaultLang string) (*Manager, error) {
	catalog, err := parseFS(fsys)
	if err != nil {
		return nil, err
	}

	if defaultLang == "" {
		defaultLang = "en"
	}
	defaultLang = strings.ToLower(defaultLang)
	if _, ok := catalog[defaultLang]; !ok {
		return nil, fmt.Errorf("i18n: default language %q is missing", defaultLang)
	}

	m := &Manager{translations: catalog, defaultLang: defaultLang}
	m.names = append(m.names, defaultLang)
	for _, lang := range m.Languages() {
		if lang != defaultLang {
			m.names = append(m.names, lang)
		}
	}

	tags := make([]language.Tag, 0, len(m.names))
	for _, name := range m.names {
		tag, err := language.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("i18n: catalog %q is not a language tag: %w", name, err)
		}
		tags = append(tags, tag)
	}
	m.matcher = language.NewMatcher(tags)
	return m, nil
}

// Translator returns a translator for the closest loaded language, so
// "ru-RU" and "pt-BR" pick the "ru" and "pt" catalogs. Anything without a
// reasonable match gets the default language.
func (m *Manager) Translator(lang string) Translator {
	if m == nil {
		return translator{}
	}
	return translator{
		lang:     m.match(lang),
		fallback: m.defaultLang,
		catalog:  m.translations,
	}
}

func (m *Manager) match(lang string) string {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return m.defaultLang
	}
	if _, ok := m.translations[strings.ToLower(lang)]; ok {
		return strings.ToLower(lang)
	}

	tag, err := language.Parse(lang)
	if err != nil {
		return m.defaultLang
	}
	_, idx, conf := m.matcher.Match(tag)
	if conf == language.No || idx < 0 || idx >= len(m.names) {
		return m.defaultLang
	}
	return m.names[idx]
}

// Languages returns all loaded languages.
func (m *Manager) Languages() []string {
	if m == nil {
		return nil
	}

	languages := make([]string, 0, len(m.translations))
	for lang := range m.translations {
		languages = append(languages, lang)
	}
	sort.Strings(languages)
	return languages
}

// Has reports whether key exists in the default language.
func (m *Manager) Has(key string) bool {
	if m == nil {
		return false
	}
	_, ok := m.translations[m.defaultLang][key]
	return ok
}

// Tf translates key and fills its placeholders from args.
func Tf(t Translator, key string, args map[string]any) string {
	if t == nil {
		return key
	}
	return Format(t.T(key), args)
}

// Format replaces {{.name}} placeholders with args[name]. Placeholders with
// no matching arg stay in the text.
func Format(text string, args map[string]any) string {
	if len(args) == 0 {
		return text
	}

	var b strings.Builder
	for {
		start := strings.Index(text, "{{.")
		if start < 0 {
			break
		}
		end := strings.Index(text[start:], "}}")
		if end < 0 {
			break
		}
		end += start

		b.WriteString(text[:start])
		name := text[start+3 : end]
		if value, ok := args[name]; ok {
			fmt.Fprint(&b, value)
		} else {
			b.WriteString(text[start : end+2])
		}
		text = text[end+2:]
	}
	b.WriteString(text)
	return b.String()
}

type translator struct {
	lang     string
	fallback string
	catalog  map[string]map[string]string
}

func (t translator) Lang() string {
	return t.lang
}

func (t translator) T(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	if value, ok := t.catalog[t.lang][key]; ok {
		return value
	}
	if value, ok := t.catalog[t.fallback][key]; ok {
		return value
	}
	return key
}

func parseFS(fsys fs.FS) (map[string]map[string]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("i18n: read catalogs: %w", err)
	}

	catalog := make(map[string]map[string]string)
	found := false
	for _, entry := range entries {
		ext := strings.ToLower(path.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		found = true

		data, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", entry.Name(), err)
		}
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", entry.Name(), err)
		}

		for lang, tree := range doc {
			lang = strings.ToLower(strings.TrimSpace(lang))
			nested, ok := tree.(map[string]any)
			if lang == "" || !ok {
				continue
			}
			if catalog[lang] == nil {
				catalog[lang] = make(map[string]string)
			}
			flatten("", nested, catalog[lang])
		}
	}

	if !found {
		return nil, fmt.Errorf("i18n: no yaml catalogs found")
	}
	return catalog, nil
}

func flatten(prefix string, in map[string]any, out map[string]string) {
	for key, value := range in {
		if prefix != "" {
			key = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]any:
			flatten(key, v, out)
		case string:
			out[key] = v
		case nil:
		default:
			out[key] = fmt.Sprint(v)
		}
	}
}
