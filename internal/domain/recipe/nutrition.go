package recipe

import "fmt"

// Nutrient keys in presentation order
const (
	NutrientCalories      = "calories"
	NutrientProtein       = "protein"
	NutrientFat           = "fat"
	NutrientCarbohydrates = "carbohydrates"
	NutrientFiber         = "fiber"
	NutrientSugar         = "sugar"
)

// NutrientFact is one labelled nutrient value of a summary.
type NutrientFact struct {
	Key   string
	Label string
	Value float64
	Unit  string
}

// String renders the fact as "Label: value unit" with two decimals
func (f NutrientFact) String() string {
	return fmt.Sprintf("%s: %.2f %s", f.Label, f.Value, f.Unit)
}

// Summarize returns exactly six facts in the order calories, protein, fat,
// carbohydrates, fiber, sugar. A nil profile yields six zero-valued facts.
// Values are reported as stored, without range checks.
func Summarize(n *Nutrition) []NutrientFact {
	var v Nutrition
	if n != nil {
		v = *n
	}

	return []NutrientFact{
		{Key: NutrientCalories, Label: "Calories", Value: v.Calories, Unit: "kcal"},
		{Key: NutrientProtein, Label: "Protein", Value: v.Protein, Unit: "g"},
		{Key: NutrientFat, Label: "Fat", Value: v.Fat, Unit: "g"},
		{Key: NutrientCarbohydrates, Label: "Carbohydrates", Value: v.Carbohydrates, Unit: "g"},
		{Key: NutrientFiber, Label: "Fiber", Value: v.Fiber, Unit: "g"},
		{Key: NutrientSugar, Label: "Sugar", Value: v.Sugar, Unit: "g"},
	}
}
