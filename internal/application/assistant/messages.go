package assistant

// Canned conversational messages. These are part of the external contract
// and must not be reworded casually.
const (
	MessageUnclear = "Could you please provide more details about what heritage materials you're looking for? For example, you could specify a type (batik, crafts, architecture), location, or time period."

	MessageUnrelated = "I can only help you search for heritage archive materials such as traditional crafts, cultural artifacts, historical documents, and cultural media. How can I assist you with heritage materials today?"

	MessageGreeting = "Hello! I'm here to help you search our heritage archive. What cultural materials or historical items would you like to explore?"

	MessageExhausted = "I couldn't find relevant heritage materials matching your query. Try describing what you're looking for in different words, or browse our collection for inspiration."
)

// MessageForIntent maps a non-search intent to its canned reply.
func MessageForIntent(intent Intent) string {
	switch intent {
	case IntentUnrelated:
		return MessageUnrelated
	case IntentGreeting:
		return MessageGreeting
	default:
		return MessageUnclear
	}
}
