package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var embeddedLocales embed.FS

// Bundle holds every supported language table in memory. It is immutable after Load.
type Bundle struct {
	dict     map[string]map[string]string
	fallback string
	langs    []string
	matcher  language.Matcher
}

// Load reads the embedded locale files with fallback as the primary language.
func Load(fallback string) (*Bundle, error) {
	return LoadFS(embeddedLocales, "locales", fallback)
}

// LoadFS reads every <lang>.json file in dir. Each file is a flat key to text map.
func LoadFS(fsys fs.FS, dir, fallback string) (*Bundle, error) {
	fallback = strings.ToLower(strings.TrimSpace(fallback))
	if fallback == "" {
		return nil, fmt.Errorf("fallback language is required")
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read locale dir: %w", err)
	}

	b := &Bundle{
		dict:     map[string]map[string]string{},
		fallback: fallback,
	}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".json" {
			continue
		}
		lang := strings.ToLower(strings.TrimSuffix(entry.Name(), ".json"))
		raw, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("load locale %s: %w", lang, err)
		}
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", lang, err)
		}
		b.dict[lang] = m
	}

	primary, ok := b.dict[fallback]
	if !ok {
		return nil, fmt.Errorf("fallback locale %s not loaded", fallback)
	}
	for key, value := range primary {
		if strings.TrimSpace(value) == "" {
			return nil, fmt.Errorf("fallback locale %s has empty value for %q", fallback, key)
		}
	}

	b.langs = make([]string, 0, len(b.dict))
	for lang := range b.dict {
		if lang != fallback {
			b.langs = append(b.langs, lang)
		}
	}
	sort.Strings(b.langs)
	b.langs = append([]string{fallback}, b.langs...)

	tags := make([]language.Tag, 0, len(b.langs))
	for _, lang := range b.langs {
		tag, err := language.Parse(lang)
		if err != nil {
			return nil, fmt.Errorf("locale %s is not a valid language tag: %w", lang, err)
		}
		tags = append(tags, tag)
	}
	b.matcher = language.NewMatcher(tags)
	return b, nil
}

// Supported lists the loaded languages, primary first.
func (b *Bundle) Supported() []string {
	out := make([]string, len(b.langs))
	copy(out, b.langs)
	return out
}

// Fallback returns the primary language.
func (b *Bundle) Fallback() string { return b.fallback }

func (b *Bundle) IsSupported(lang string) bool {
	_, ok := b.dict[strings.ToLower(lang)]
	return ok
}

// T returns translation for key in lang, falling back to the primary language and finally key.
func (b *Bundle) T(lang, key string) string {
	if m, ok := b.dict[strings.ToLower(lang)]; ok {
		if v, ok := m[key]; ok && v != "" {
			return v
		}
	}
	if v, ok := b.dict[b.fallback][key]; ok {
		return v
	}
	return key
}

// Table returns every primary-language key resolved for lang.
func (b *Bundle) Table(lang string) map[string]string {
	primary := b.dict[b.fallback]
	out := make(map[string]string, len(primary))
	for key := range primary {
		out[key] = b.T(lang, key)
	}
	for key, value := range b.dict[strings.ToLower(lang)] {
		if value != "" {
			out[key] = value
		}
	}
	return out
}

// Resolve chooses the best supported language from an Accept-Language header.
func (b *Bundle) Resolve(acceptLang string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(tags) == 0 {
		return b.fallback
	}
	_, idx, confidence := b.matcher.Match(tags...)
	if confidence == language.No {
		return b.fallback
	}
	return b.langs[idx]
}
