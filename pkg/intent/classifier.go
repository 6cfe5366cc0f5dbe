package intent

import (
	"fmt"
	"regexp"
)

type Kind int

const (
	Default Kind = iota
	IdentityClaim
	CharacterSwitch
	OutOfCharacter
	PastConversationQuery
)

func (k Kind) String() string {
	switch k {
	case IdentityClaim:
		return "identity_claim"
	case CharacterSwitch:
		return "character_switch"
	case OutOfCharacter:
		return "out_of_character"
	case PastConversationQuery:
		return "past_conversation_query"
	default:
		return "default"
	}
}

// Intent is the classification of one user message. Name is set for every
// kind that refers to a character.
type Intent struct {
	Kind Kind
	Name string
}

const (
	identityPrefix = `(?:I am|I'm|call me|my name is)`
	switchPrefix   = `(?:speak to|talk to|switch to|see|bring me to)`
	pastPrefix     = `(?:what did i talk about with|what did we talk about with|tell me about my conversation with)`
)

var outOfCharacterPatterns = []string{
	`break character`,
	`ignore previous instructions`,
	`just be yourself`,
	`you are not really`,
	`drop the act`,
	`speak as (?:ChatGPT|an AI|a bot)`,
}

type rule struct {
	kind    Kind
	name    string
	pattern *regexp.Regexp
}

// Classifier matches messages against an ordered rule list. It holds no
// mutable state and is safe for concurrent use.
type Classifier struct {
	rules []rule
}

// NewClassifier compiles the rules for the given character names. Rules are
// evaluated identity, switch, out-of-character, past-conversation; within a
// kind names are tried in the given order.
func NewClassifier(names []string) *Classifier {
	c := &Classifier{}
	c.addNamed(IdentityClaim, identityPrefix, names)
	c.addNamed(CharacterSwitch, switchPrefix, names)
	for _, p := range outOfCharacterPatterns {
		c.rules = append(c.rules, rule{
			kind:    OutOfCharacter,
			pattern: regexp.MustCompile(`(?i)\b` + p + `\b`),
		})
	}
	c.addNamed(PastConversationQuery, pastPrefix, names)
	return c
}

func (c *Classifier) addNamed(kind Kind, prefix string, names []string) {
	for _, name := range names {
		expr := fmt.Sprintf(`(?i)\b%s\s+%s\b`, prefix, regexp.QuoteMeta(name))
		c.rules = append(c.rules, rule{kind: kind, name: name, pattern: regexp.MustCompile(expr)})
	}
}

// Classify returns the first matching rule's intent, or Default.
func (c *Classifier) Classify(message string) Intent {
	for _, r := range c.rules {
		if r.pattern.MatchString(message) {
			return Intent{Kind: r.kind, Name: r.name}
		}
	}
	return Intent{Kind: Default}
}

// DetectSwitch reports the first character the message asks to switch to,
// regardless of what other rules would match.
func (c *Classifier) DetectSwitch(message string) (string, bool) {
	for _, r := range c.rules {
		if r.kind == CharacterSwitch && r.pattern.MatchString(message) {
			return r.name, true
		}
	}
	return "", false
}

// ClassifyTurn resolves a message sent while active is the current character.
// A switch to another character wins over every other rule. A switch to the
// active character is not a switch and the remaining rules apply.
func (c *Classifier) ClassifyTurn(message, active string) Intent {
	if name, ok := c.DetectSwitch(message); ok && name != active {
		return Intent{Kind: CharacterSwitch, Name: name}
	}
	for _, r := range c.rules {
		if r.kind == CharacterSwitch {
			continue
		}
		if r.pattern.MatchString(message) {
			return Intent{Kind: r.kind, Name: r.name}
		}
	}
	return Intent{Kind: Default}
}
