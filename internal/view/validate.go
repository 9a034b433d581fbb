package view

import (
	"math/big"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/matthewbaird/rulesetview/internal/declaration"
	"github.com/matthewbaird/rulesetview/internal/ruleset"
)

// isValid checks value against the key's type, vocabulary and pattern.
func isValid(key declaration.Key, value string) bool {
	switch key.Type() {
	case ruleset.TypeAnyURI:
		if !isURI(value) {
			return false
		}
		if ns := key.Namespace(); ns != "" && !InNamespace(ns, value) {
			return false
		}
	case ruleset.TypeBoolean:
		if value != booleanTrue(key) {
			return false
		}
	case ruleset.TypeDate:
		if _, err := time.Parse(time.DateOnly, value); err != nil {
			return false
		}
	case ruleset.TypeInteger:
		if _, ok := new(big.Int).SetString(value, 10); !ok {
			return false
		}
		if digits := len(strings.TrimLeft(value, "+-")); digits < key.MinDigits() {
			return false
		}
	}

	if key.HasOptions() {
		found := false
		for _, v := range key.OptionValues() {
			if v == value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if pattern := key.Pattern(); pattern != "" {
		re, err := regexp.Compile(`^(?:` + pattern + `)$`)
		if err != nil || !re.MatchString(value) {
			return false
		}
	}
	return true
}

// isURI accepts an absolute or relative URI reference without whitespace.
func isURI(value string) bool {
	if value == "" || strings.IndexFunc(value, unicode.IsSpace) >= 0 {
		return false
	}
	_, err := url.Parse(value)
	return err == nil
}

// booleanTrue is the stored form of a set boolean: the first option value
// if the key has a vocabulary, "on" otherwise.
func booleanTrue(key declaration.Key) string {
	if values := key.OptionValues(); len(values) > 0 {
		return values[0]
	}
	return "on"
}

// InNamespace reports whether uri belongs to namespace. It does if it starts
// with the namespace ending in "/" or "#", or with "{namespace}". A
// namespace that ends without "/" and is no web URL also matches as a plain
// prefix.
func InNamespace(namespace, uri string) bool {
	normalized := namespace
	if !strings.HasSuffix(normalized, "/") && !strings.HasSuffix(normalized, "#") {
		normalized += "/"
	}
	if strings.HasPrefix(uri, normalized) || strings.HasPrefix(uri, "{"+namespace+"}") {
		return true
	}
	return !strings.HasSuffix(namespace, "/") && !isWebURL(namespace) && strings.HasPrefix(uri, namespace)
}

func isWebURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
