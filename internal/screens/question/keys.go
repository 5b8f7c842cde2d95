package question

import (
	"charm.land/bubbles/v2/key"

	"github.com/abhisek/mandela/internal/catalog"
	"github.com/abhisek/mandela/internal/ui/layout"
)

type keyMap struct {
	Prev    key.Binding
	Next    key.Binding
	Submit  key.Binding
	OptionA key.Binding
	OptionB key.Binding
	True    key.Binding
	False   key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Prev:    key.NewBinding(key.WithKeys("left", "h", "shift+tab"), key.WithHelp("←→", "Select")),
	Next:    key.NewBinding(key.WithKeys("right", "l", "tab"), key.WithHelp("←→", "Select")),
	Submit:  key.NewBinding(key.WithKeys("enter", "space"), key.WithHelp("Enter", "Answer")),
	OptionA: key.NewBinding(key.WithKeys("1", "a"), key.WithHelp("1/2", "Option")),
	OptionB: key.NewBinding(key.WithKeys("2", "b"), key.WithHelp("1/2", "Option")),
	True:    key.NewBinding(key.WithKeys("t"), key.WithHelp("T/F", "True/False")),
	False:   key.NewBinding(key.WithKeys("f"), key.WithHelp("T/F", "True/False")),
	Quit:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "Quit")),
}

// hotkeys maps each choice to the binding that submits it directly.
var hotkeys = []struct {
	binding key.Binding
	choice  catalog.Choice
}{
	{keys.OptionA, catalog.ChoiceA},
	{keys.OptionB, catalog.ChoiceB},
	{keys.True, catalog.ChoiceTrue},
	{keys.False, catalog.ChoiceFalse},
}

// hintsFor lists the footer hints relevant to item.
func hintsFor(item catalog.Item) []layout.KeyHint {
	bindings := []key.Binding{keys.Prev, keys.Submit, keys.OptionA, keys.Quit}
	if item.Kind == catalog.BooleanChoice {
		bindings[2] = keys.True
	}
	hints := make([]layout.KeyHint, len(bindings))
	for i, b := range bindings {
		h := b.Help()
		hints[i] = layout.KeyHint{Key: h.Key, Description: h.Desc}
	}
	return hints
}
