// Package prompt turns caller input into a single generation request for
// the model. Construction is pure: no I/O, no shared state.
package prompt

import (
	"fmt"
	"strings"

	"chefgpt/internal/recipe"
)

// Request is one composed generation request. It exists only for the
// duration of a single model call.
type Request struct {
	Instruction string
	Image       []byte
	Variation   bool
}

const schemaInstruction = `Return JSON strictly in this schema: {"title": string, "cuisine": string or null, "servings": int, "total_time_minutes": int or null, "ingredients": [{"name": string, "quantity": string or null}], "steps": [string], "nutrition": object mapping nutrient name to amount with unit (for example {"calories": "120kcal", "protein": "8g"}), "tips": [string] or null}. Only output valid JSON with double quotes, no markdown fences and no text outside the JSON object.`

// ForIngredients builds a text generation request from an ingredient list.
// At least one non-blank ingredient is required.
func ForIngredients(ingredients []string, prefs recipe.Preferences) (Request, error) {
	var cleaned []string
	for _, ing := range ingredients {
		if ing = strings.TrimSpace(ing); ing != "" {
			cleaned = append(cleaned, ing)
		}
	}
	if len(cleaned) == 0 {
		return Request{}, fmt.Errorf("%w: at least one ingredient is required", recipe.ErrInvalidInput)
	}
	prefs.Normalize()

	var b strings.Builder
	b.WriteString("You are ChefGPT, a culinary assistant. ")
	b.WriteString("Generate ONE practical recipe using ONLY the provided ingredients if possible, plus pantry staples. ")
	b.WriteString("Respect dietary preferences and aim for balanced nutrition.\n")
	fmt.Fprintf(&b, "Ingredients available: %s.\n", strings.Join(cleaned, ", "))
	writePreferences(&b, prefs)
	b.WriteString(schemaInstruction)

	return Request{Instruction: b.String(), Variation: prefs.Variation}, nil
}

// ForImage builds a vision generation request from raw image bytes.
func ForImage(image []byte, prefs recipe.Preferences) (Request, error) {
	if len(image) == 0 {
		return Request{}, fmt.Errorf("%w: an image is required", recipe.ErrInvalidInput)
	}
	prefs.Normalize()

	var b strings.Builder
	b.WriteString("You are ChefGPT. Identify the ingredients visible in the image and propose ONE recipe ")
	b.WriteString("with a specific descriptive title based on the dish you see.\n")
	writePreferences(&b, prefs)
	b.WriteString(schemaInstruction)

	return Request{Instruction: b.String(), Image: image, Variation: prefs.Variation}, nil
}

// ForFreeform builds a generation request from a free-text dish description.
func ForFreeform(request string, prefs recipe.Preferences) (Request, error) {
	request = strings.TrimSpace(request)
	if len(request) < 3 {
		return Request{}, fmt.Errorf("%w: prompt must be at least 3 characters", recipe.ErrInvalidInput)
	}
	if len(request) > 500 {
		return Request{}, fmt.Errorf("%w: prompt must be at most 500 characters", recipe.ErrInvalidInput)
	}
	prefs.Normalize()

	var b strings.Builder
	b.WriteString("You are ChefGPT, a culinary assistant. ")
	b.WriteString("Generate ONE complete recipe based on the user's request, with all ingredients, detailed steps and nutrition info.\n")
	fmt.Fprintf(&b, "User request: %s\n", request)
	writePreferences(&b, prefs)
	b.WriteString(schemaInstruction)

	return Request{Instruction: b.String(), Variation: prefs.Variation}, nil
}

func writePreferences(b *strings.Builder, prefs recipe.Preferences) {
	if prefs.CuisineHint != "" {
		fmt.Fprintf(b, "Cuisine hint: %s.\n", prefs.CuisineHint)
	}
	if prefs.Servings > 0 {
		fmt.Fprintf(b, "Target servings: %d.\n", prefs.Servings)
	}
	if prefs.CookingTimeLimitMinutes > 0 {
		fmt.Fprintf(b, "Time limit: %d minutes.\n", prefs.CookingTimeLimitMinutes)
	}
	if len(prefs.Dietary) > 0 {
		fmt.Fprintf(b, "Dietary: %s.\n", strings.Join(prefs.Dietary, ", "))
	}
	if prefs.Language != "" {
		fmt.Fprintf(b, "Respond entirely in %s. All text (title, ingredients, steps, tips) must be in that language. Keep measurements practical.\n", prefs.Language)
	}
	if prefs.Variation {
		b.WriteString("IMPORTANT: Generate a COMPLETELY DIFFERENT variation of the recipe. Use different cooking methods, spices or preparation style than the obvious choice.\n")
	}
}
