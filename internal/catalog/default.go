package catalog

var defaultItems = []Item{
	{
		ID:          "coca_cola_logo",
		Kind:        PairedChoice,
		AssetA:      "coca_cola_with_dash.jpg",
		AssetB:      "coca_cola_no_dash.jpg",
		Correct:     ChoiceA,
		Explanation: "The Coca-Cola logo never had a dash in between the words 'Coca' and 'Cola'.",
	},
	{
		ID:          "oreo_double_stuf",
		Kind:        PairedChoice,
		AssetA:      "oreo_double_stuff.jpg",
		AssetB:      "oreo_double_stuf.jpg",
		Correct:     ChoiceB,
		Explanation: "Oreo has always spelled it 'Double Stuf' without an extra 'f' at the end.",
	},
	{
		ID:          "peace_symbol",
		Kind:        PairedChoice,
		AssetA:      "peace_symbol_correct.jpg",
		AssetB:      "peace_symbol_incorrect.jpg",
		Correct:     ChoiceA,
		Explanation: "The peace symbol has a vertical line in the center, which has been part of its iconic design.",
	},
	{
		ID:          "seahorse_emoji",
		Kind:        BooleanChoice,
		AssetA:      "seahorse_emoji.jpg",
		Correct:     ChoiceFalse,
		Explanation: "No, the Seahorse emoji does not exist in the current Unicode standard.",
	},
}

var defaultCatalog = MustNew(defaultItems...)

// Default returns the built-in Mandela Effect catalog.
func Default() *Catalog {
	return defaultCatalog
}
