package oracle

import "fmt"

const (
	// DefaultSystemPrompt keeps every generation child-safe.
	DefaultSystemPrompt = "You are a friendly, educational robot speaking to children aged 7-8. " +
		"Keep your language fun, safe, simple, and never use any inappropriate or scary content."

	// DefaultLearnerProfile is appended to prompts whose output is spoken to
	// the child.
	DefaultLearnerProfile = "Use simple and clear language that a 12-year-old native Dutch speaker " +
		"learning English as a second language can understand. Approach them like a friend."
)

func yesNoPrompt(text string) string {
	return fmt.Sprintf("The user has said the following: '%s'. Your task is to determine whether "+
		"they said 'yes' or 'no'. Respond with only 'yes' or 'no' based on the input. "+
		"If unclear, return the most likely option.", text)
}

func questionOrGuessPrompt(text, secretWord string) string {
	return fmt.Sprintf("The user has said: '%s'. Determine if this is a yes/no question about the secret word "+
		"or a guess of the secret word: %s. A guess could start with 'I think...', 'The word is...' "+
		"A question usually starts with a verb. Respond with only 'question' or 'guess'.", text, secretWord)
}

func correctPrompt(secretWord, guess string) string {
	return fmt.Sprintf("The user guessed: '%s'. The correct secret word is: '%s'. "+
		"Respond with only 'correct' or 'incorrect'.", guess, secretWord)
}

func answerPrompt(secretWord, question string) string {
	return fmt.Sprintf("The user has asked the following question: '%s' about the secret word: '%s'. "+
		"Answer to their question with a short response. "+
		"Do not mention the secret word, including any abbreviations or parts of the word. "+
		"Your explanation should help the user understand more about the secret word without telling them what it is. "+
		"Generate max 15 words.", question, secretWord)
}

func hintPrompt(secretWord, focus string) string {
	if focus != "" {
		return fmt.Sprintf("The user is struggling to guess the secret word, which is %s. "+
			"Generate a helpful hint about this property of the word: %s. "+
			"Do not reveal the secret word, including abbreviations or any part of the word. "+
			"Keep the hint to one or two sentences and in English.", secretWord, focus)
	}
	return fmt.Sprintf("The user is struggling to guess the secret word, which is %s. "+
		"Generate a helpful hint without revealing the secret word, "+
		"including abbreviations or any part of the word. "+
		"Keep the hint to one or two sentences and in English.", secretWord)
}

func explanationPrompt(secretWord string) string {
	return fmt.Sprintf("Explain the word '%s' in one short sentence.", secretWord)
}

func quitIntentPrompt(text string) string {
	return fmt.Sprintf("The user said: '%s'. Determine if they want to stop playing the game "+
		"by recognizing goodbyes, 'stop', 'stoppen', 'quit', 'doei', et cetera. "+
		"Respond with only 'yes' or 'no'.", text)
}

func hintIntentPrompt(text string) string {
	return fmt.Sprintf("The user said: '%s'. Determine if they are asking for a hint "+
		"by recognizing 'hint', 'help', et cetera. Respond with only 'yes' or 'no'.", text)
}

func rephrasePrompt(text string) string {
	return fmt.Sprintf("Rephrase the non-English words in this text %s so that a correct English text is formed, "+
		"keeping the already English words as much as possible intact, and keeping the language simple. "+
		"Only return the improved text.", text)
}

func avoidSuffix(words string) string {
	return fmt.Sprintf(" Do not use the word(s): '%s'.", words)
}
