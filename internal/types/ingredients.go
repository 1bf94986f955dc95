package types

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// IngredientsKind identifies which wire encoding an ingredients field arrived
// in. Clients send the field as a JSON-encoded array, repeated form values,
// a single scalar, or indexed keys (ingredients[0], ingredients[1], ...).
type IngredientsKind int

const (
	IngredientsAbsent IngredientsKind = iota
	IngredientsJSON
	IngredientsList
	IngredientsScalar
	IngredientsIndexed
)

const ingredientsField = "ingredients"

// IngredientsInput is the tagged decoding of an ingredients form field.
type IngredientsInput struct {
	Kind   IngredientsKind
	Values []string
}

// DecodeIngredients inspects raw form values and classifies the ingredients
// encoding. Indexed keys win over a plain "ingredients" key; the indexed
// values are ordered by their numeric index.
func DecodeIngredients(form map[string][]string) IngredientsInput {
	if indexed, ok := decodeIndexed(form); ok {
		return IngredientsInput{Kind: IngredientsIndexed, Values: indexed}
	}

	vals, ok := form[ingredientsField]
	if !ok || len(vals) == 0 {
		return IngredientsInput{Kind: IngredientsAbsent}
	}

	if len(vals) > 1 {
		return IngredientsInput{Kind: IngredientsList, Values: vals}
	}

	single := vals[0]
	if strings.HasPrefix(strings.TrimSpace(single), "[") {
		var parsed []string
		if err := json.Unmarshal([]byte(single), &parsed); err == nil {
			return IngredientsInput{Kind: IngredientsJSON, Values: parsed}
		}
	}

	return IngredientsInput{Kind: IngredientsScalar, Values: []string{single}}
}

func decodeIndexed(form map[string][]string) ([]string, bool) {
	type entry struct {
		index int
		value string
	}
	var entries []entry

	prefix := ingredientsField + "["
	for key, vals := range form {
		if !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, "]") {
			continue
		}
		idx, err := strconv.Atoi(key[len(prefix) : len(key)-1])
		if err != nil || len(vals) == 0 {
			continue
		}
		entries = append(entries, entry{index: idx, value: vals[0]})
	}
	if len(entries) == 0 {
		return nil, false
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].index < entries[j].index })
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.value)
	}
	return out, true
}

// Normalize collapses any encoding into an ordered sequence of trimmed,
// non-blank strings. The second return value reports whether the field was
// present at all, which update handlers use for partial-update semantics.
func (in IngredientsInput) Normalize() ([]string, bool) {
	if in.Kind == IngredientsAbsent {
		return nil, false
	}

	out := make([]string, 0, len(in.Values))
	for _, v := range in.Values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out, true
}
