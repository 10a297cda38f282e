package model

import (
	"encoding/json"
	"sort"
	"strconv"
)

var (
	uiHintKeys = []string{
		"helpText",
		"hint",
		"label",
		"placeholder",
		"submitLabel",
		"unit",
		"widget",
	}

	uiHintKeySet = func(keys []string) map[string]struct{} {
		result := make(map[string]struct{}, len(keys))
		for _, key := range keys {
			result[key] = struct{}{}
		}
		return result
	}(uiHintKeys)
)

// AllowedUIHintKeys returns a sorted copy of the recognised UI extension keys.
func AllowedUIHintKeys() []string {
	keys := append([]string(nil), uiHintKeys...)
	sort.Strings(keys)
	return keys
}

// IsAllowedUIHintKey reports whether the supplied key participates in the
// curated UI hint contract.
func IsAllowedUIHintKey(key string) bool {
	_, ok := uiHintKeySet[key]
	return ok
}

// CanonicalizeExtensionValue turns an extension value into a renderer-friendly
// string. Returns false when the value cannot be represented deterministically.
func CanonicalizeExtensionValue(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case json.Number:
		return v.String(), true
	case map[string]any, []any, []string:
		payload, err := json.Marshal(v)
		if err != nil || len(payload) <= 2 {
			return "", false
		}
		return string(payload), true
	default:
		return "", false
	}
}
