package usecase

import (
	"regexp"
	"strings"
)

// Compiled regex patterns for normalization
var (
	// Matches parenthetical and bracketed content, e.g. "(diced)", "[about 2 cups]"
	parentheticalPattern = regexp.MustCompile(`\([^)]*\)|\[[^\]]*\]|\{[^}]*\}`)

	// Matches a leading quantity token: integer, decimal, or simple fraction ("2", "1.5", "1/2")
	leadingQuantityPattern = regexp.MustCompile(`^\d+(?:[./]\d+)?\s+`)

	// Anything that is not a letter, digit or whitespace
	punctuationPattern = regexp.MustCompile(`[^a-z0-9\s]`)

	// Multiple spaces cleanup
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// spellingVariants maps regional/alternate spellings onto the catalog's
// preferred form. Applied as whole-word substitutions before any stripping.
var spellingVariants = map[string]string{
	"aubergine":  "eggplant",
	"aubergines": "eggplants",
	"courgette":  "zucchini",
	"courgettes": "zucchinis",
	"rocket":     "arugula",
	"coriander":  "cilantro",
	"capsicum":   "bell pepper",
	"beetroot":   "beet",
	"beetroots":  "beets",
	"maize":      "corn",
	"prawn":      "shrimp",
	"prawns":     "shrimp",
	"mangetout":  "snow peas",
	"yoghurt":    "yogurt",
	"chilli":     "chili",
	"chillies":   "chili",
	"chilies":    "chili",
}

// qualifierWords are preparation, freshness, quality and fat-content
// descriptors stripped as whole words. They never change which real
// ingredient a name refers to.
var qualifierWords = []string{
	// Preparation state
	"raw", "cooked", "roasted", "grilled", "baked", "fried", "steamed",
	"boiled", "toasted", "diced", "chopped", "minced", "sliced", "grated",
	"shredded", "crushed", "peeled", "trimmed", "melted", "softened",
	"beaten", "whipped", "pitted", "halved", "quartered", "cubed",
	// Freshness
	"fresh", "frozen", "canned", "dried", "thawed", "refrigerated",
	// Quality / marketing
	"organic", "premium", "extra", "finely", "coarsely", "thinly", "ripe",
	"homemade", "store-bought",
	// Fat / seasoning content
	"low-fat", "lowfat", "nonfat", "fat-free", "reduced-fat", "full-fat",
	"unsalted", "salted", "unsweetened", "sweetened", "skinless", "boneless",
	"lean", "light", "lite",
}

// unitWords are measurement words recognized after a leading quantity token
// in free-text mentions. Only coarse token stripping; no structured amount
// parsing happens here.
var unitWords = map[string]bool{
	"cup": true, "cups": true,
	"tablespoon": true, "tablespoons": true, "tbsp": true,
	"teaspoon": true, "teaspoons": true, "tsp": true,
	"ounce": true, "ounces": true, "oz": true,
	"pound": true, "pounds": true, "lb": true, "lbs": true,
	"gram": true, "grams": true, "g": true,
	"kilogram": true, "kilograms": true, "kg": true,
	"milliliter": true, "milliliters": true, "ml": true,
	"liter": true, "liters": true, "l": true,
	"quart": true, "quarts": true, "pint": true, "pints": true,
	"gallon": true, "gallons": true,
	"pinch": true, "pinches": true, "dash": true, "dashes": true,
	"clove": true, "cloves": true, "can": true, "cans": true,
	"slice": true, "slices": true, "piece": true, "pieces": true,
	"bunch": true, "bunches": true, "sprig": true, "sprigs": true,
	"stick": true, "sticks": true, "stalk": true, "stalks": true,
	"head": true, "heads": true, "handful": true,
}

// singularExclusions are words that must never be singularized; stripping a
// trailing "s" would corrupt them.
var singularExclusions = map[string]bool{
	"hummus":    true,
	"couscous":  true,
	"asparagus": true,
	"molasses":  true,
	"pasta":     true,
	"tofu":      true,
	"citrus":    true,
	"octopus":   true,
	"swiss":     true,
	"grits":     true,
	"oats":      true,
}

// qualifierPattern is built once from qualifierWords for whole-word removal.
var qualifierPattern = buildWordPattern(qualifierWords)

func buildWordPattern(words []string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	// Word boundaries admit punctuation as well as whitespace, so
	// "tomatoes,diced" and "sun-dried" lose their qualifier in one pass and
	// the pipeline stays idempotent.
	return regexp.MustCompile(`(?:^|[\s[:punct:]])(?:` + strings.Join(quoted, "|") + `)(?:$|[\s[:punct:]])`)
}

// Normalize converts a catalog name into its canonical comparison key.
// Deterministic and idempotent: Normalize(Normalize(x)) == Normalize(x).
// Returns "" for input that leaves nothing usable (all punctuation, only
// qualifiers); callers must treat an empty key as "cannot normalize".
func Normalize(text string) string {
	return normalize(text, false)
}

// NormalizeMention converts a free-text ingredient mention into a comparison
// key. Same pipeline as Normalize plus stripping of a leading quantity token
// and a following unit word ("2 cups chicken broth" -> "chicken broth").
func NormalizeMention(text string) string {
	return normalize(text, true)
}

// The step order below is part of the contract; reordering changes the output.
func normalize(text string, stripQuantity bool) string {
	// Step 1: lowercase and trim
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return ""
	}

	// Step 2: spelling-variant substitution, whole words only
	s = applySpellingVariants(s)

	// Step 3: strip parenthetical/bracketed content
	s = parentheticalPattern.ReplaceAllString(s, " ")

	// Step 4: strip qualifier words as whole words. Repeated until stable so
	// adjacent qualifiers ("fresh diced tomatoes") all go.
	for {
		next := qualifierPattern.ReplaceAllString(s, " ")
		if next == s {
			break
		}
		s = next
	}

	// Steps 3-4 leave stray spaces behind; re-anchor so a leading quantity
	// token still sits at ^ for step 5.
	s = strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
	if s == "" {
		return ""
	}

	// Step 5: mentions only. Strip a leading quantity token and a following
	// unit word if present.
	if stripQuantity {
		if stripped := leadingQuantityPattern.ReplaceAllString(s, ""); stripped != s {
			s = stripped
			fields := strings.SplitN(s, " ", 2)
			if unitWords[strings.Trim(fields[0], ",.")] {
				if len(fields) == 2 {
					s = fields[1]
				} else {
					// Quantity plus bare unit names nothing.
					s = ""
				}
			}
		}
	}

	// Step 6: punctuation to spaces, collapse whitespace
	s = punctuationPattern.ReplaceAllString(s, " ")
	s = strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
	if s == "" {
		return ""
	}

	// Step 7: singularize the final word only
	words := strings.Split(s, " ")
	words[len(words)-1] = singularize(words[len(words)-1])
	return strings.Join(words, " ")
}

func applySpellingVariants(s string) string {
	words := strings.Fields(s)
	changed := false
	for i, w := range words {
		trimmed := strings.Trim(w, ",.;:!?()[]")
		if repl, ok := spellingVariants[trimmed]; ok {
			words[i] = strings.Replace(w, trimmed, repl, 1)
			changed = true
		}
	}
	if !changed {
		return s
	}
	return strings.Join(words, " ")
}

// singularize applies a small set of English plural rules to one word.
// Deliberately conservative: words in the exclusion set and short or
// already-singular-looking words pass through untouched.
func singularize(word string) string {
	if len(word) <= 3 || singularExclusions[word] {
		return word
	}
	switch {
	case strings.HasSuffix(word, "ies") && len(word) > 4:
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(word, "oes"),
		strings.HasSuffix(word, "xes"),
		strings.HasSuffix(word, "sses"),
		strings.HasSuffix(word, "ches"),
		strings.HasSuffix(word, "shes"):
		return word[:len(word)-2]
	case strings.HasSuffix(word, "ss"),
		strings.HasSuffix(word, "us"),
		strings.HasSuffix(word, "is"):
		return word
	case strings.HasSuffix(word, "s"):
		return word[:len(word)-1]
	}
	return word
}
