package catalog

import (
	"fmt"
	"strings"
	"unicode"
)

// Kind distinguishes the two question shapes.
type Kind int

const (
	// PairedChoice shows two images; the player picks the authentic one.
	PairedChoice Kind = iota + 1
	// BooleanChoice shows one image; the player says whether it is real.
	BooleanChoice
)

func (k Kind) String() string {
	switch k {
	case PairedChoice:
		return "paired"
	case BooleanChoice:
		return "boolean"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind converts "paired" or "boolean" into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "paired", "pairedchoice", "paired_choice":
		return PairedChoice, nil
	case "boolean", "booleanchoice", "boolean_choice", "bool":
		return BooleanChoice, nil
	}
	return 0, fmt.Errorf("unknown kind %q", s)
}

// Choice is an answer value. A and B belong to PairedChoice, True and False
// to BooleanChoice.
type Choice string

const (
	ChoiceA     Choice = "A"
	ChoiceB     Choice = "B"
	ChoiceTrue  Choice = "True"
	ChoiceFalse Choice = "False"
)

// Domain returns the valid choices for a kind in display order.
func (k Kind) Domain() []Choice {
	switch k {
	case PairedChoice:
		return []Choice{ChoiceA, ChoiceB}
	case BooleanChoice:
		return []Choice{ChoiceTrue, ChoiceFalse}
	}
	return nil
}

// Accepts reports whether c is in the kind's domain.
func (k Kind) Accepts(c Choice) bool {
	for _, d := range k.Domain() {
		if d == c {
			return true
		}
	}
	return false
}

// ParseChoice normalises user input into a Choice. Numeric input maps onto
// the paired options.
func ParseChoice(s string) (Choice, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a", "1", "option 1", "option1":
		return ChoiceA, nil
	case "b", "2", "option 2", "option2":
		return ChoiceB, nil
	case "true", "t", "yes", "y":
		return ChoiceTrue, nil
	case "false", "f", "no", "n":
		return ChoiceFalse, nil
	}
	return "", fmt.Errorf("unrecognised choice %q", s)
}

// Label is the player-facing name of a choice.
func (c Choice) Label() string {
	switch c {
	case ChoiceA:
		return "Option 1"
	case ChoiceB:
		return "Option 2"
	}
	return string(c)
}

// Item is a single quiz question.
type Item struct {
	ID          string
	Kind        Kind
	AssetA      string
	AssetB      string // empty for BooleanChoice
	Correct     Choice
	Explanation string
}

// Domain returns the choices the item accepts.
func (it Item) Domain() []Choice { return it.Kind.Domain() }

// Accepts reports whether c is a legal answer for the item.
func (it Item) Accepts(c Choice) bool { return it.Kind.Accepts(c) }

// IsCorrect reports whether c matches the authentic answer.
func (it Item) IsCorrect(c Choice) bool { return c == it.Correct }

// Title turns the id into a heading: "coca_cola_logo" becomes "Coca Cola Logo".
func (it Item) Title() string {
	words := strings.Fields(strings.ReplaceAll(it.ID, "_", " "))
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// Assets lists the asset refs shown with the item.
func (it Item) Assets() []string {
	if it.Kind == PairedChoice {
		return []string{it.AssetA, it.AssetB}
	}
	return []string{it.AssetA}
}

// CorrectAsset is the image that depicts the authentic version. Boolean
// items only have one.
func (it Item) CorrectAsset() string {
	if it.Kind == PairedChoice && it.Correct == ChoiceB {
		return it.AssetB
	}
	return it.AssetA
}

func (it Item) validate() error {
	if strings.TrimSpace(it.ID) == "" {
		return fmt.Errorf("item has empty id")
	}
	if it.Kind.Domain() == nil {
		return fmt.Errorf("item %q: unknown kind %v", it.ID, it.Kind)
	}
	if !it.Accepts(it.Correct) {
		return fmt.Errorf("item %q: correct answer %q not valid for %s item", it.ID, it.Correct, it.Kind)
	}
	if it.AssetA == "" {
		return fmt.Errorf("item %q: missing asset", it.ID)
	}
	if it.Kind == PairedChoice && it.AssetB == "" {
		return fmt.Errorf("item %q: paired item needs two assets", it.ID)
	}
	return nil
}
