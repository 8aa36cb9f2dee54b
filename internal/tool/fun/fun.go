// Package fun serves jokes, facts, quotes and compliments.
package fun

import (
	"context"
	"math/rand/v2"

	"github.com/Cyclone1070/anu/internal/tool"
)

const SkillName = "fun"

var (
	jokes = []string{
		"Why don't scientists trust atoms? Because they make up everything!",
		"Why did the scarecrow win an award? He was outstanding in his field!",
		"What do you call a bear with no teeth? A gummy bear!",
		"What do you call a fake noodle? An impasta!",
		"Why did the bicycle fall over? Because it was two-tired!",
		"Why don't skeletons fight each other? They don't have the guts!",
	}
	facts = []string{
		"Honey never spoils. Edible honey has been found in ancient Egyptian tombs.",
		"Octopuses have three hearts and blue blood.",
		"Bananas are berries, but strawberries aren't.",
		"A group of flamingos is called a flamboyance.",
		"A day on Venus is longer than a year on Venus.",
		"Butterflies taste with their feet.",
	}
	quotes = []string{
		"Believe you can and you're halfway there!",
		"Don't watch the clock; do what it does. Keep going!",
		"You are stronger than you think!",
		"Every day is a new beginning!",
		"Dream big, work hard, stay focused!",
	}
	compliments = []string{
		"You're absolutely amazing!",
		"You have the best laugh!",
		"Your smile is contagious!",
		"You're incredibly smart!",
		"You make the world a better place!",
	}
)

// Picker returns an index in [0, n).
type Picker func(n int) int

// New builds the fun skill. A nil pick uses math/rand.
func New(pick Picker) *tool.Set {
	if pick == nil {
		pick = rand.IntN
	}
	entry := func(name, description, prefix string, pool []string) tool.Handler {
		return tool.Typed(tool.Declaration{
			Name:        name,
			Description: description,
			Parameters:  tool.Object(nil),
		}, func(context.Context, struct{}) (tool.Result, error) {
			return tool.OK("%s %s", prefix, pool[pick(len(pool))]), nil
		})
	}
	return tool.NewSet(SkillName,
		entry("tell_joke", "Tell a funny joke", "😄", jokes),
		entry("fun_fact", "Share an interesting fun fact", "🤓", facts),
		entry("motivate", "Share a motivational quote", "💪", quotes),
		entry("compliment", "Give a nice compliment", "✨", compliments),
	)
}
