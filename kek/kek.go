// Package kek scores messages by their kek reactions.
package kek

import (
	"regexp"
	"strings"
)

var prefix = regexp.MustCompile(`(?i)^kek`)

type EmojiKind int

const (
	// EmojiPlain is a unicode emoji identified by its character.
	EmojiPlain EmojiKind = iota
	// EmojiNamed is a custom guild emoji identified by its name.
	EmojiNamed
)

// Emoji is either a named custom emoji or a plain unicode character.
type Emoji struct {
	Kind  EmojiKind
	Value string
}

func Named(name string) Emoji {
	return Emoji{Kind: EmojiNamed, Value: name}
}

func Plain(char string) Emoji {
	return Emoji{Kind: EmojiPlain, Value: char}
}

// Name returns the lower-cased comparison string for the emoji.
func (e Emoji) Name() string {
	return strings.ToLower(e.Value)
}

// Reaction is the tally of one emoji on one message.
type Reaction struct {
	Emoji Emoji
	Count int
}

// Matches reports whether the emoji belongs to the kek family.
func Matches(e Emoji) bool {
	return prefix.MatchString(e.Name())
}

// Score sums the counts of every kek reaction.
func Score(reactions []Reaction) int {
	score := 0
	for _, r := range reactions {
		if r.Count <= 0 || !Matches(r.Emoji) {
			continue
		}

		score += r.Count
	}

	return score
}
