package common

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// MaskedValue replaces any value considered sensitive.
const MaskedValue = "***MASKED***"

// SensitivePattern represents a pattern to detect and mask sensitive information
type SensitivePattern struct {
	Name        string         // Pattern name (e.g., "password", "authorization")
	Regex       *regexp.Regexp // Regular expression to match sensitive data
	Replacement string         // Replacement string
	Keys        []string       // Attribute or header names to mask (case-insensitive)
}

// DefaultSensitivePatterns covers credentials that can reach the logs of a
// step: auth settings, proxy credentials and authentication headers.
var DefaultSensitivePatterns = []SensitivePattern{
	{
		Name:        "password",
		Regex:       regexp.MustCompile(`(?i)(password|passwd|pwd)(["'\s]*[:=]["'\s]*)([^"',}\]\s&]+)`),
		Replacement: "${1}${2}" + MaskedValue,
		Keys:        []string{"password", "passwd", "pwd", "auth_password", "proxy_password"},
	},
	{
		Name:        "authorization",
		Keys:        []string{"authorization", "proxy-authorization", "cookie", "set-cookie", "x-api-key"},
		Replacement: MaskedValue,
	},
	{
		Name:        "token",
		Regex:       regexp.MustCompile(`(?i)(access[_-]?token|auth[_-]?token|api[_-]?key)(["'\s]*[:=]["'\s]*)([^"',}\]\s&]+)`),
		Replacement: "${1}${2}" + MaskedValue,
		Keys:        []string{"token", "access_token", "auth_token", "api_key"},
	},
	{
		Name:        "bearer_token",
		Regex:       regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9\-._~+/]+=*`),
		Replacement: "Bearer " + MaskedValue,
	},
	{
		Name:        "basic_auth",
		Regex:       regexp.MustCompile(`(?i)Basic\s+[A-Za-z0-9+/]+=*`),
		Replacement: "Basic " + MaskedValue,
	},
	{
		Name:        "digest_auth",
		Regex:       regexp.MustCompile(`(?i)Digest\s+(username|realm)=.+`),
		Replacement: "Digest " + MaskedValue,
	},
	{
		Name:        "url_userinfo",
		Regex:       regexp.MustCompile(`(://[^:/@\s]+):[^@/\s]+@`),
		Replacement: "${1}:" + MaskedValue + "@",
	},
}

// Masker handles masking of sensitive information in logs
type Masker struct {
	mu       sync.RWMutex
	patterns []SensitivePattern
	enabled  bool
}

// NewMasker creates a new masker with default patterns
func NewMasker() *Masker {
	return NewMaskerWithPatterns(DefaultSensitivePatterns)
}

// NewMaskerWithPatterns creates a new masker with custom patterns
func NewMaskerWithPatterns(patterns []SensitivePattern) *Masker {
	ps := make([]SensitivePattern, len(patterns))
	copy(ps, patterns)
	return &Masker{patterns: ps, enabled: true}
}

// SetEnabled enables or disables masking
func (m *Masker) SetEnabled(enabled bool) {
	m.mu.Lock()
	m.enabled = enabled
	m.mu.Unlock()
}

// IsEnabled returns whether masking is enabled
func (m *Masker) IsEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// AddPattern adds a new sensitive pattern. A pattern with keys but no regex
// gets one built from the keys.
func (m *Masker) AddPattern(pattern SensitivePattern) {
	if pattern.Regex == nil && len(pattern.Keys) > 0 {
		quoted := make([]string, len(pattern.Keys))
		for i, k := range pattern.Keys {
			quoted[i] = regexp.QuoteMeta(k)
		}
		pattern.Regex = regexp.MustCompile(fmt.Sprintf(`(?i)\b(%s)(\s*[:=]\s*['"]?)([^'",\s}\]&]+)`, strings.Join(quoted, "|")))
		if pattern.Replacement == "" {
			pattern.Replacement = "${1}${2}" + MaskedValue
		}
	}
	m.mu.Lock()
	m.patterns = append(m.patterns, pattern)
	m.mu.Unlock()
}

// IsSensitiveKey reports whether key names a value that must never be logged.
func (m *Masker) IsSensitiveKey(key string) bool {
	lower := strings.ToLower(strings.TrimSpace(key))
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.patterns {
		for _, k := range p.Keys {
			if lower == strings.ToLower(k) {
				return true
			}
		}
	}
	return false
}

// MaskString masks sensitive information in a string
func (m *Masker) MaskString(input string) string {
	if !m.IsEnabled() {
		return input
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := input
	for _, p := range m.patterns {
		if p.Regex == nil {
			continue
		}
		result = p.Regex.ReplaceAllString(result, p.Replacement)
	}
	return result
}

// MaskValue masks sensitive information based on key-value context
func (m *Masker) MaskValue(key string, value interface{}) interface{} {
	if !m.IsEnabled() {
		return value
	}
	if m.IsSensitiveKey(key) {
		return MaskedValue
	}
	if s, ok := value.(string); ok {
		return m.MaskString(s)
	}
	return value
}

// MaskKeyValuePairs masks sensitive information in key-value pairs
func (m *Masker) MaskKeyValuePairs(pairs ...any) []any {
	if !m.IsEnabled() {
		return pairs
	}
	result := make([]any, len(pairs))
	for i := 0; i < len(pairs); i += 2 {
		result[i] = pairs[i]
		if i+1 >= len(pairs) {
			break
		}
		if k, ok := pairs[i].(string); ok {
			result[i+1] = m.MaskValue(k, pairs[i+1])
		} else {
			result[i+1] = pairs[i+1]
		}
	}
	return result
}

// Global masker instance
var globalMasker = NewMasker()

// GetGlobalMasker returns the global masker instance
func GetGlobalMasker() *Masker {
	return globalMasker
}

// MaskSensitiveData masks sensitive data using the global masker
func MaskSensitiveData(input string) string {
	return globalMasker.MaskString(input)
}

// EnableMasking enables/disables global masking
func EnableMasking(enabled bool) {
	globalMasker.SetEnabled(enabled)
}

// IsMaskingEnabled returns whether global masking is enabled
func IsMaskingEnabled() bool {
	return globalMasker.IsEnabled()
}
