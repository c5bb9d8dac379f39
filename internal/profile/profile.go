// Package profile validates demographic input and resolves the demographic rule tables
// (design directive, page title, palette) used to personalize a page.
package profile

import (
	"fmt"

	"healthpage/internal/core"
)

const (
	MinAge = 0
	MaxAge = 120
)

// Parse validates raw demographic input.
func Parse(age int, gender string) (core.Profile, error) {
	if age < MinAge || age > MaxAge {
		return core.Profile{}, fmt.Errorf("age %d out of range %d-%d", age, MinAge, MaxAge)
	}
	g, err := core.ParseGender(gender)
	if err != nil {
		return core.Profile{}, err
	}
	return core.Profile{Age: age, Gender: g}, nil
}

// Rule maps a predicate over a profile to a value.
type Rule[T any] struct {
	Name  string
	Match func(core.Profile) bool
	Value T
}

// Table is an ordered list of rules evaluated top to bottom with a fallback.
type Table[T any] struct {
	Rules    []Rule[T]
	Fallback Rule[T]
}

// Resolve returns the first matching rule, or the fallback.
func (t Table[T]) Resolve(p core.Profile) Rule[T] {
	for _, r := range t.Rules {
		if r.Match(p) {
			return r
		}
	}
	return t.Fallback
}

// Value is shorthand for Resolve(p).Value.
func (t Table[T]) Value(p core.Profile) T {
	return t.Resolve(p).Value
}

func ageBelow(limit int) func(core.Profile) bool {
	return func(p core.Profile) bool { return p.Age < limit }
}

func ageBetween(lo, hi int) func(core.Profile) bool {
	return func(p core.Profile) bool { return p.Age >= lo && p.Age <= hi }
}

func genderAgeBelow(g core.Gender, limit int) func(core.Profile) bool {
	return func(p core.Profile) bool { return p.Gender == g && p.Age < limit }
}

// DesignDirectives selects the stylistic instruction given to the page generator.
var DesignDirectives = Table[string]{
	Rules: []Rule[string]{
		{
			Name:  "young-male",
			Match: genderAgeBelow(core.GenderMale, 30),
			Value: "Use a modern, minimalistic layout with bold fonts and strong contrast.",
		},
		{
			Name:  "young-female",
			Match: genderAgeBelow(core.GenderFemale, 30),
			Value: "Use an engaging layout with soft colors, rounded components, and clear structure.",
		},
		{
			Name:  "senior",
			Match: func(p core.Profile) bool { return p.Age >= 60 },
			Value: "Ensure accessibility with large fonts, high contrast, and simple layout.",
		},
	},
	Fallback: Rule[string]{
		Name:  "default",
		Value: "Use a clean, readable layout with balanced colors and structured spacing.",
	},
}

// PageTitles selects the page heading by age bracket.
var PageTitles = Table[string]{
	Rules: []Rule[string]{
		{Name: "child", Match: ageBelow(13), Value: "Health Suggestions for Children"},
		{Name: "teen", Match: ageBetween(13, 19), Value: "Health Tips for Teens"},
		{Name: "young-adult", Match: ageBetween(20, 40), Value: "Health Recommendations for Young Adults"},
		{Name: "adult", Match: ageBetween(41, 59), Value: "Health Guidance for Adults"},
	},
	Fallback: Rule[string]{Name: "senior", Value: "Health Tips for Seniors"},
}

// Palettes selects the theme's primary color.
var Palettes = Table[string]{
	Rules: []Rule[string]{
		{Name: "male", Match: func(p core.Profile) bool { return p.Gender == core.GenderMale }, Value: "#4a90e2"},
	},
	Fallback: Rule[string]{Name: "female", Value: "#e26aa5"},
}
