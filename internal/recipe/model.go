package recipe

import (
	"fmt"
	"strings"
)

// Ingredient is a single recipe ingredient with a free-text quantity
// like "1 cup" or "200 g".
type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity,omitempty"`
}

// Recipe represents the structure of the generated recipe.
type Recipe struct {
	Title            string            `json:"title"`
	Cuisine          string            `json:"cuisine,omitempty"`
	Servings         int               `json:"servings,omitempty"`
	TotalTimeMinutes int               `json:"total_time_minutes,omitempty"`
	Ingredients      []Ingredient      `json:"ingredients"`
	Steps            []string          `json:"steps"`
	Nutrition        map[string]string `json:"nutrition"`
	Tips             []string          `json:"tips,omitempty"`
}

// Validate reports whether the recipe is complete enough to return to a
// caller: non-empty title, at least one ingredient and one step. The
// nutrition map may be empty but never nil.
func (r *Recipe) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("%w: missing title", ErrMalformedResponse)
	}
	if len(r.Ingredients) == 0 {
		return fmt.Errorf("%w: no ingredients", ErrMalformedResponse)
	}
	if len(r.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrMalformedResponse)
	}
	if r.Nutrition == nil {
		r.Nutrition = map[string]string{}
	}
	return nil
}

// Preferences are caller-supplied dietary constraints and serving hints.
// All fields are optional.
type Preferences struct {
	Dietary                 []string `json:"dietary,omitempty"`
	Servings                int      `json:"servings,omitempty"`
	CuisineHint             string   `json:"cuisine_hint,omitempty"`
	CookingTimeLimitMinutes int      `json:"cooking_time_limit_minutes,omitempty"`
	Language                string   `json:"language,omitempty"`
	Variation               bool     `json:"variation,omitempty"`
}

// Normalize trims and lowercases the free-text preference fields so prompt
// construction sees a consistent shape.
func (p *Preferences) Normalize() {
	dietary := p.Dietary[:0]
	for _, d := range p.Dietary {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			dietary = append(dietary, d)
		}
	}
	p.Dietary = dietary
	p.CuisineHint = strings.TrimSpace(p.CuisineHint)
	p.Language = strings.ToLower(strings.TrimSpace(p.Language))
	if p.Servings < 0 {
		p.Servings = 0
	}
	if p.CookingTimeLimitMinutes < 0 {
		p.CookingTimeLimitMinutes = 0
	}
}
