package recipe

import "fmt"

// ScaleServings returns a copy of r rescaled to newServings portions.
// Ingredient quantities and every nutrient are multiplied by
// newServings/servings; no rounding is applied. r itself is not modified.
func ScaleServings(r Recipe, newServings int) (Recipe, error) {
	if newServings < 1 {
		return Recipe{}, ErrInvalidTargetServings
	}
	if r.servings < 1 {
		return Recipe{}, ErrInvalidServings
	}

	factor := float64(newServings) / float64(r.servings)

	scaled := r.Clone()
	for i := range scaled.ingredients {
		scaled.ingredients[i] = scaled.ingredients[i].Scale(factor)
	}
	scaled.nutrition = r.nutrition.Scale(factor)
	scaled.servings = newServings

	return scaled, nil
}

// ValidateBatch checks that every recipe in the batch can be rescaled to
// newServings. It reports the first violation found.
func ValidateBatch(recipes []Recipe, newServings int) error {
	if newServings < 1 {
		return ErrInvalidTargetServings
	}
	for i, r := range recipes {
		if r.servings < 1 {
			return fmt.Errorf("recipe at position %d: %w", i, ErrInvalidServings)
		}
	}
	return nil
}

// ScaleBatch rescales every recipe to newServings, preserving order.
// The batch is validated as a whole first: one invalid recipe fails the
// call and no partial result is returned.
func ScaleBatch(recipes []Recipe, newServings int) ([]Recipe, error) {
	if err := ValidateBatch(recipes, newServings); err != nil {
		return nil, err
	}

	scaled := make([]Recipe, len(recipes))
	for i, r := range recipes {
		s, err := ScaleServings(r, newServings)
		if err != nil {
			return nil, err
		}
		scaled[i] = s
	}
	return scaled, nil
}
