// Package recipe contains the core domain logic for recipes: the recipe
// aggregate, proportional serving scaling and nutrition summaries.
package recipe

// Recipe is a value: copying a Recipe never shares mutable state with the
// original, and every transformation returns a new Recipe.
type Recipe struct {
	id           int64
	title        string
	description  string
	instructions string
	servings     int

	ingredients     []Ingredient
	ingredientLines []string

	// nil means the recipe has not been analyzed yet
	nutrition *Nutrition
}

// Attributes is the plain field set used to build or inspect a Recipe.
type Attributes struct {
	ID              int64
	Title           string
	Description     string
	Instructions    string
	Servings        int
	Ingredients     []Ingredient
	IngredientLines []string
	Nutrition       *Nutrition
}

// New creates a Recipe from attributes with validation
func New(attrs Attributes) (Recipe, error) {
	if attrs.Servings < 1 {
		return Recipe{}, ErrInvalidServings
	}

	for _, ing := range attrs.Ingredients {
		if err := ing.Validate(); err != nil {
			return Recipe{}, err
		}
	}

	r := Recipe{
		id:              attrs.ID,
		title:           attrs.Title,
		description:     attrs.Description,
		instructions:    attrs.Instructions,
		servings:        attrs.Servings,
		ingredients:     copyIngredients(attrs.Ingredients),
		ingredientLines: copyLines(attrs.IngredientLines),
		nutrition:       attrs.Nutrition.clone(),
	}

	return r, nil
}

// ID returns the recipe identifier, zero until persisted
func (r Recipe) ID() int64 {
	return r.id
}

// Title returns the recipe title
func (r Recipe) Title() string {
	return r.title
}

// Description returns the recipe description
func (r Recipe) Description() string {
	return r.description
}

// Instructions returns the preparation instructions
func (r Recipe) Instructions() string {
	return r.instructions
}

// Servings returns the number of portions the quantities are written for
func (r Recipe) Servings() int {
	return r.servings
}

// Ingredients returns a copy of the ordered ingredient list
func (r Recipe) Ingredients() []Ingredient {
	return copyIngredients(r.ingredients)
}

// IngredientLines returns a copy of the free-text ingredient lines
func (r Recipe) IngredientLines() []string {
	return copyLines(r.ingredientLines)
}

// Nutrition returns a copy of the nutrition profile, nil if not analyzed
func (r Recipe) Nutrition() *Nutrition {
	return r.nutrition.clone()
}

// HasNutrition reports whether the recipe carries a nutrition profile
func (r Recipe) HasNutrition() bool {
	return r.nutrition != nil
}

// WithID returns a copy of the recipe carrying the given identifier
func (r Recipe) WithID(id int64) Recipe {
	c := r.Clone()
	c.id = id
	return c
}

// WithNutrition returns a copy of the recipe with the nutrition replaced
func (r Recipe) WithNutrition(n *Nutrition) Recipe {
	c := r.Clone()
	c.nutrition = n.clone()
	return c
}

// Clone returns a deep copy of the recipe
func (r Recipe) Clone() Recipe {
	c := r
	c.ingredients = copyIngredients(r.ingredients)
	c.ingredientLines = copyLines(r.ingredientLines)
	c.nutrition = r.nutrition.clone()
	return c
}

// Attributes returns a detached copy of all recipe fields
func (r Recipe) Attributes() Attributes {
	return Attributes{
		ID:              r.id,
		Title:           r.title,
		Description:     r.description,
		Instructions:    r.instructions,
		Servings:        r.servings,
		Ingredients:     copyIngredients(r.ingredients),
		IngredientLines: copyLines(r.ingredientLines),
		Nutrition:       r.nutrition.clone(),
	}
}

func copyIngredients(src []Ingredient) []Ingredient {
	if src == nil {
		return []Ingredient{}
	}
	dst := make([]Ingredient, len(src))
	copy(dst, src)
	return dst
}

func copyLines(src []string) []string {
	if src == nil {
		return []string{}
	}
	dst := make([]string, len(src))
	copy(dst, src)
	return dst
}
