// README: City extractor; picks the first city out of the city-selection output.
package trip

import (
	"encoding/json"
	"regexp"
	"strings"
)

// FallbackCity is used whenever no city can be determined.
const FallbackCity = "Paris"

// cityKeys are tried in order when the selection decodes to a JSON object.
var cityKeys = []string{"city", "selected_city", "city_name", "name", "output"}

// cityLine matches "Paris", "- Paris, France", "2) **New York**, USA" on a line of its own.
var cityLine = regexp.MustCompile(`^[ \t]*(?:[-*•][ \t]*|\d+[.)][ \t]*)?(?:\*\*)?(\p{Lu}[\p{L} .'-]*?)(?:\*\*)?(?:[ \t]*,[ \t]*\p{Lu}[\p{L} .'-]*?)?(?:\*\*)?[ \t]*$`)

// listedCity matches a list item whose city is followed by a description, as in
// "1. **Kyoto, Japan** - temples" or "* Rome, Italy: food". The marker is required.
var listedCity = regexp.MustCompile(`^[ \t]*(?:[-*•]|\d+[.)])[ \t]*(?:\*\*)?(\p{Lu}[\p{L} .'-]*?)(?:\*\*)?(?:[ \t]*,[ \t]*\p{Lu}[\p{L} .'-]*?)?(?:\*\*)?[ \t]*(?:[:(\x{2013}\x{2014}]|-[ \t])`)

// Value is the untyped output of the city-selection step: Text, Mapping or Other.
type Value interface {
	isValue()
}

// Text is raw model output or a JSON string.
type Text string

// Mapping is a decoded JSON object.
type Mapping map[string]Value

// Other wraps anything else a JSON document can hold (arrays, numbers, booleans, null).
type Other struct {
	Raw any
}

func (Text) isValue()    {}
func (Mapping) isValue() {}
func (Other) isValue()   {}

// ParseValue converts a decoded JSON value into a Value.
func ParseValue(v any) Value {
	switch t := v.(type) {
	case string:
		return Text(t)
	case map[string]any:
		m := make(Mapping, len(t))
		for k, inner := range t {
			m[k] = ParseValue(inner)
		}
		return m
	case Value:
		return t
	default:
		return Other{Raw: v}
	}
}

// ExtractCity returns the first city named in v, or FallbackCity.
func ExtractCity(v Value) string {
	if city, ok := extractCity(v); ok {
		return city
	}
	return FallbackCity
}

func extractCity(v Value) (string, bool) {
	switch t := v.(type) {
	case Text:
		return extractFromText(string(t))
	case Mapping:
		for _, key := range cityKeys {
			inner, ok := t[key]
			if !ok || isEmpty(inner) {
				continue
			}
			return extractCity(inner)
		}
	}
	return "", false
}

func extractFromText(s string) (string, bool) {
	if strings.TrimSpace(s) == "" {
		return "", false
	}
	if city, ok := firstCityLine(s); ok {
		return city, true
	}
	var decoded any
	if err := json.Unmarshal([]byte(cleanJSONString(s)), &decoded); err != nil {
		return "", false
	}
	return extractCity(ParseValue(decoded))
}

// firstCityLine returns the city of the first line that is a bare city or a city list item.
func firstCityLine(s string) (string, bool) {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSuffix(line, "\r")
		// Described items first; cityLine would read "Lisbon - trams" as one name.
		m := listedCity.FindStringSubmatch(line)
		if m == nil {
			m = cityLine.FindStringSubmatch(line)
		}
		if m == nil {
			continue
		}
		if city := strings.Trim(m[1], " \t."); city != "" {
			return city, true
		}
	}
	return "", false
}

// isEmpty reports values that count as "nothing there" when looking up keys.
func isEmpty(v Value) bool {
	switch t := v.(type) {
	case nil:
		return true
	case Text:
		return t == ""
	case Mapping:
		return len(t) == 0
	case Other:
		switch raw := t.Raw.(type) {
		case nil:
			return true
		case bool:
			return !raw
		case float64:
			return raw == 0
		case []any:
			return len(raw) == 0
		}
	}
	return false
}

// cleanJSONString removes markdown code fences if present (e.g. ```json ... ```).
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
