package recipe

import (
	"math"
	"strings"
)

// Ingredient represents one structured ingredient line of a recipe.
// ID is unique within its recipe only; Unit is an opaque label.
type Ingredient struct {
	ID       int64
	Name     string
	Quantity float64
	Unit     string
}

// Validate validates the ingredient
func (i Ingredient) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrInvalidIngredientName
	}
	if i.Quantity < 0 || math.IsNaN(i.Quantity) || math.IsInf(i.Quantity, 0) {
		return ErrInvalidQuantity
	}
	return nil
}

// Scale returns the ingredient with its quantity multiplied by factor
func (i Ingredient) Scale(factor float64) Ingredient {
	i.Quantity *= factor
	return i
}

// Nutrition holds whole-recipe nutrient totals at the recipe's current
// servings. Calories are in kcal, everything else in grams.
type Nutrition struct {
	Calories      float64
	Protein       float64
	Fat           float64
	Carbohydrates float64
	Fiber         float64
	Sugar         float64
}

// NewNutrition builds a nutrition profile from individual nutrient values
func NewNutrition(calories, protein, fat, carbohydrates, fiber, sugar float64) *Nutrition {
	return &Nutrition{
		Calories:      calories,
		Protein:       protein,
		Fat:           fat,
		Carbohydrates: carbohydrates,
		Fiber:         fiber,
		Sugar:         sugar,
	}
}

// Scale returns a new profile with every nutrient multiplied by factor.
// A nil profile stays nil.
func (n *Nutrition) Scale(factor float64) *Nutrition {
	if n == nil {
		return nil
	}
	return &Nutrition{
		Calories:      n.Calories * factor,
		Protein:       n.Protein * factor,
		Fat:           n.Fat * factor,
		Carbohydrates: n.Carbohydrates * factor,
		Fiber:         n.Fiber * factor,
		Sugar:         n.Sugar * factor,
	}
}

func (n *Nutrition) clone() *Nutrition {
	if n == nil {
		return nil
	}
	c := *n
	return &c
}
