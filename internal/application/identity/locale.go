package identity

import (
	"strings"

	"golang.org/x/text/language"
)

// DefaultSupportedLocales are the client translations shipped today
var DefaultSupportedLocales = []string{"en", "zh-Hant", "zh-Hans", "id", "fil"}

// LocaleMatcher normalizes user supplied locale tags to a supported one
type LocaleMatcher struct {
	tags    []language.Tag
	names   []string
	matcher language.Matcher
}

// NewLocaleMatcher builds a matcher. The first supported locale is the fallback.
func NewLocaleMatcher(supported []string) *LocaleMatcher {
	if len(supported) == 0 {
		supported = DefaultSupportedLocales
	}
	m := &LocaleMatcher{}
	for _, s := range supported {
		tag, err := language.Parse(s)
		if err != nil {
			continue
		}
		m.tags = append(m.tags, tag)
		m.names = append(m.names, s)
	}
	if len(m.tags) == 0 {
		m.tags = []language.Tag{language.English}
		m.names = []string{"en"}
	}
	m.matcher = language.NewMatcher(m.tags)
	return m
}

// Match returns the supported locale closest to raw. Accept-Language style
// lists are accepted. Unknown input falls back to the first locale.
func (m *LocaleMatcher) Match(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return m.names[0]
	}
	desired, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(desired) == 0 {
		return m.names[0]
	}
	_, idx, conf := m.matcher.Match(desired...)
	if conf == language.No {
		return m.names[0]
	}
	return m.names[idx]
}

// Supported reports whether the tag is one of the configured locales
func (m *LocaleMatcher) Supported(tag string) bool {
	for _, n := range m.names {
		if n == tag {
			return true
		}
	}
	return false
}

// Locales returns the configured locale names
func (m *LocaleMatcher) Locales() []string {
	return append([]string(nil), m.names...)
}
