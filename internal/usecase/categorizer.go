package usecase

import (
	"strings"

	"github.com/pantrybase/ingredients/internal/domain"
)

// categoryRule pairs a category with the keywords that imply it.
type categoryRule struct {
	category string
	keywords []string
}

// categoryRules is walked in order and the first whole-word keyword hit wins.
// Order is part of the contract: specific categories come before broad ones
// so that "salmon" lands in seafood, not protein.
var categoryRules = []categoryRule{
	{"seafood", []string{
		"fish", "salmon", "tuna", "cod", "halibut", "tilapia", "trout",
		"shrimp", "prawn", "crab", "lobster", "scallop", "clam", "mussel",
		"oyster", "squid", "octopus", "anchovy", "sardine", "seafood",
	}},
	{"dairy", []string{
		"milk", "cheese", "yogurt", "butter", "cream", "cheddar",
		"mozzarella", "parmesan", "ricotta", "feta", "brie", "ghee",
		"buttermilk", "kefir",
	}},
	{"protein", []string{
		"chicken", "beef", "pork", "turkey", "lamb", "duck", "veal",
		"bacon", "sausage", "ham", "steak", "egg", "eggs", "tofu",
		"tempeh", "seitan",
	}},
	{"grain", []string{
		"rice", "pasta", "bread", "flour", "oat", "oats", "quinoa",
		"barley", "couscous", "noodle", "noodles", "tortilla", "cereal",
		"cornmeal", "bulgur", "farro",
	}},
	{"legume", []string{
		"bean", "beans", "lentil", "lentils", "chickpea", "chickpeas",
		"pea", "peas", "edamame", "hummus",
	}},
	{"vegetable", []string{
		"onion", "garlic", "tomato", "potato", "carrot", "celery",
		"broccoli", "spinach", "lettuce", "kale", "cabbage", "bell pepper",
		"zucchini", "eggplant", "cucumber", "mushroom", "cauliflower",
		"asparagus", "leek", "shallot", "squash", "beet", "radish",
		"arugula", "corn",
	}},
	{"fruit", []string{
		"apple", "banana", "orange", "lemon", "lime", "berry", "berries",
		"strawberry", "blueberry", "raspberry", "grape", "mango", "peach",
		"pear", "pineapple", "melon", "avocado", "cherry", "apricot",
		"plum", "fig", "date", "coconut",
	}},
	{"herb", []string{
		"basil", "parsley", "cilantro", "thyme", "rosemary", "oregano",
		"sage", "mint", "dill", "chive", "chives", "tarragon", "bay",
	}},
	{"spice", []string{
		"pepper", "paprika", "cumin", "cinnamon", "nutmeg", "turmeric",
		"ginger", "clove", "cardamom", "coriander", "chili", "cayenne",
		"saffron", "spice", "seasoning", "salt",
	}},
	{"condiment", []string{
		"sauce", "ketchup", "mustard", "mayonnaise", "vinegar", "soy",
		"salsa", "dressing", "syrup", "honey", "jam", "relish", "pesto",
	}},
	{"baking", []string{
		"sugar", "yeast", "baking", "vanilla", "cocoa", "chocolate",
		"cornstarch", "gelatin", "shortening", "molasses",
	}},
	{"beverage", []string{
		"juice", "coffee", "tea", "wine", "beer", "soda", "cider",
		"broth", "stock",
	}},
	{"oil", []string{
		"oil", "lard",
	}},
	{"nut", []string{
		"almond", "walnut", "pecan", "cashew", "peanut", "pistachio",
		"hazelnut", "macadamia", "nut", "nuts", "seed", "seeds",
	}},
}

// InferCategory returns the first category whose keyword appears as a whole
// word in name plus description, or "" when nothing matches. Never errors.
func InferCategory(name, description string) string {
	text := strings.ToLower(name)
	if description != "" {
		text += " " + strings.ToLower(description)
	}
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	words := make(map[string]bool, len(fields))
	for _, w := range fields {
		words[w] = true
	}
	// Padded form for multi-word keywords like "bell pepper".
	padded := " " + strings.Join(fields, " ") + " "

	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.ContainsRune(kw, ' ') {
				if strings.Contains(padded, " "+kw+" ") {
					return rule.category
				}
			} else if words[kw] {
				return rule.category
			}
		}
	}
	return ""
}

// Categorize fills the category of records that lack one. Existing categories
// are never overwritten. Pure: returns a new slice, input untouched.
func Categorize(records []domain.ScrapedRecord) []domain.ScrapedRecord {
	out := make([]domain.ScrapedRecord, len(records))
	copy(out, records)
	for i := range out {
		if out[i].Category != "" {
			continue
		}
		out[i].Category = InferCategory(out[i].CanonicalName, out[i].Description)
	}
	return out
}
