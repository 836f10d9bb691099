package recipe

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	fenceRE         = regexp.MustCompile("(?is)```(?:json)?\\s*(.*?)```")
	trailingCommaRE = regexp.MustCompile(`,\s*([\]}])`)
)

// Parse extracts a Recipe from raw model output. Model text is best-effort:
// it may be wrapped in markdown fences, surrounded by prose, carry trailing
// commas, or use loose shapes for ingredients and steps. Parse repairs what
// it can and fails with ErrMalformedResponse when the required fields
// (title, ingredients, steps) cannot be recovered. It never invents data.
func Parse(raw string) (*Recipe, error) {
	candidate, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(candidate), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	r := &Recipe{Nutrition: map[string]string{}}

	r.Title = strings.TrimSpace(firstString(doc, "title", "name", "recipe_name"))
	if r.Title == "" {
		return nil, fmt.Errorf("%w: missing title", ErrMalformedResponse)
	}

	r.Ingredients = parseIngredients(firstValue(doc, "ingredients", "ingredient_list"))
	if len(r.Ingredients) == 0 {
		return nil, fmt.Errorf("%w: missing ingredients", ErrMalformedResponse)
	}

	r.Steps = parseSteps(firstValue(doc, "steps", "instructions"))
	if len(r.Steps) == 0 {
		return nil, fmt.Errorf("%w: missing steps", ErrMalformedResponse)
	}

	r.Cuisine = strings.TrimSpace(firstString(doc, "cuisine"))
	r.Servings = toInt(doc["servings"])
	r.TotalTimeMinutes = toInt(firstValue(doc, "total_time_minutes", "time_minutes"))
	r.Nutrition = parseNutrition(doc["nutrition"])
	r.Tips = parseTips(doc["tips"])

	return r, nil
}

// extractJSON slices the JSON object out of the surrounding model text.
func extractJSON(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)

	if m := fenceRE.FindStringSubmatch(candidate); m != nil {
		candidate = strings.TrimSpace(m[1])
	}

	start := strings.Index(candidate, "{")
	end := strings.LastIndex(candidate, "}")
	if start == -1 || end == -1 || start > end {
		return "", fmt.Errorf("%w: no JSON object in output", ErrMalformedResponse)
	}
	candidate = candidate[start : end+1]

	// Some models emit single-quoted pseudo-JSON.
	if strings.Contains(candidate, "'") && !strings.Contains(candidate, `"`) {
		candidate = strings.ReplaceAll(candidate, "'", `"`)
	}

	return trailingCommaRE.ReplaceAllString(candidate, "$1"), nil
}

func firstValue(doc map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := doc[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func firstString(doc map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := asString(doc[k]); s != "" {
			return s
		}
	}
	return ""
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func toInt(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// parseIngredients accepts entries that are either objects with
// name/quantity keys or bare strings.
func parseIngredients(v any) []Ingredient {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []Ingredient
	for _, item := range list {
		switch t := item.(type) {
		case map[string]any:
			name := strings.TrimSpace(firstString(t, "name", "ingredient"))
			if name == "" {
				continue
			}
			qty := strings.TrimSpace(firstString(t, "quantity", "qty", "amount"))
			out = append(out, Ingredient{Name: name, Quantity: qty})
		case string:
			if name := strings.TrimSpace(t); name != "" {
				out = append(out, Ingredient{Name: name})
			}
		}
	}
	return out
}

// parseSteps accepts an array of strings, an array of numbered step objects,
// or a single string that gets split into sentences.
func parseSteps(v any) []string {
	switch t := v.(type) {
	case []any:
		var out []string
		for _, item := range t {
			switch s := item.(type) {
			case string:
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			case map[string]any:
				if ins := strings.TrimSpace(firstString(s, "instruction", "step", "text")); ins != "" {
					out = append(out, ins)
				}
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(t, ".") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	default:
		return nil
	}
}

// parseNutrition flattens the nutrition object into nutrient -> amount
// strings. Numeric amounts are stringified; nested or null values dropped.
func parseNutrition(v any) map[string]string {
	out := map[string]string{}
	m, ok := v.(map[string]any)
	if !ok {
		return out
	}
	for k, val := range m {
		if s := strings.TrimSpace(asString(val)); s != "" {
			out[strings.TrimSpace(k)] = s
		}
	}
	return out
}

func parseTips(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range list {
		if s := strings.TrimSpace(asString(item)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
