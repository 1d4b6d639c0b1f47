package game

// Fixed host phrases. Everything the host says that is not generated by the
// oracle lives here.
const (
	msgRoundStart     = "I have thought of a word. Try to guess it."
	msgAskOrGuess     = "Ask me a question or guess the word."
	msgUseTheHint     = "Try to guess the word using the hint I gave you."
	msgGiveHint       = "I will give you a hint!"
	msgOfferHint      = "Would you like a hint?"
	msgOfferHintRetry = "Would you like a hint? Respond with only 'yes' or 'no'."
	msgOfferReveal    = "Do you want me to tell you the secret word?"
	msgOfferRevealRe  = "Do you want me to tell you the secret word? Say 'yes' or 'no'."
	msgCorrect        = "You got it! Well done!"
	msgNotQuite       = "Not quite! Keep guessing."
	msgKeepTrying     = "Okay, let's keep trying! You can do it."
	msgRevealFmt      = "The secret word is %s. %s Let's play again."
	msgTimeUpFmt      = "Time is up! The secret word was %s. %s"
	msgConfirmQuit    = "Do you want to stop playing?"
	msgConfirmQuitRe  = "Do you want to stop playing? Say 'yes' or 'no'."
	msgGoodbye        = "Okay, thank you for playing! Goodbye!"
	msgSorry          = "Oops, something went wrong. Let's play again another time!"

	msgRepeatFmt      = "Now, try saying: '%s'."
	msgRepeatRetryFmt = "I couldn't hear you. Please try saying: '%s'."

	msgStillThere = "Hallo, ben je er nog?"
	msgStillHere  = "Oh leuk, je bent er nog!"
	msgGone       = "Ik zal ervanuitgaan dat je er niet meer bent. Ik zal het spel beëindigen. Ik vond het leuk om met je te spelen, tot de volgende keer!"
)

// Oracle prompts for the coach.
const (
	praisePrompt = "The child attempted to speak English. " +
		"The child is a 7-8-year-old Dutch speaker learning English. " +
		"Since they are doing well, provide a short, positive praise message in English. " +
		"Generate only one sentence."
	encouragePrompt = "The child attempted to speak English, but there's room for improvement. " +
		"They are a 7-8-year-old Dutch speaker learning English. " +
		"Encourage them, let them know they can improve, and mention you will help them. " +
		"Keep your response short, simple, and supportive, in English. " +
		"Generate only one sentence."
)

// Oracle prompts for the session narration.
const (
	welcomePrompt = "Je bent een vriendelijke robot die een raadspelletje gaat spelen met een kind van 7 of 8 jaar. " +
		"Heet het kind welkom in één korte, vrolijke zin in het Nederlands."
	explainPrompt = "Leg in twee korte, eenvoudige zinnen in het Nederlands uit hoe het spel werkt: " +
		"jij denkt aan een Engels woord, het kind mag in het Engels vragen stellen waarop jij ja of nee antwoordt, " +
		"en het kind mag raden welk woord het is."
	outroPrompt = "Bedank het kind in één korte, vrolijke zin in het Nederlands voor het spelen en zeg gedag."
	topicPrompt = "Think of one simple English noun a 7-8-year-old child knows from the topic '%s'. " +
		"Answer with only that word."
	topicAvoidFmt = " Do not choose any of these words: %s."
)
