package bot

const (
	msgWelcome = "Welcome to the Mandela Effect quiz!\n\n" +
		"Each question shows a famous logo, brand or symbol. Pick the version you remember. " +
		"Many people remember these wrong.\n\nSend /quiz at any time to start over."
	msgHelp = "/quiz - start or restart the quiz\n" +
		"/score - show your progress\n" +
		"You can also reply with 1, 2, true or false."
	msgUnknownCommand = "Unknown command. Send /help for the list."
	msgNoSession      = "No quiz in progress. Send /quiz to start."
	msgNotUnderstood  = "Reply with 1, 2, true or false, or tap a button."
	msgSlowDown       = "Slow down a little."
	msgCorrect        = "✓ Correct!"
	msgWrong          = "✗ Wrong."
	msgInternalError  = "Something went wrong. Please try again."
)
