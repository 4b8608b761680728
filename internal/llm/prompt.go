package llm

import "strings"

// DefaultSystemPrompt is the assistant's base instruction.
const DefaultSystemPrompt = "You are Divya, a polite, helpful AI assistant with a warm, friendly tone. " +
	"You are a Jarvis-style system controller for the user's own PC. " +
	"Always ask for confirmation before any risky action."

// BuildSystemPrompt appends a persona modifier to the default prompt.
func BuildSystemPrompt(persona string) string {
	persona = strings.TrimSpace(persona)
	if persona == "" {
		return DefaultSystemPrompt
	}
	return DefaultSystemPrompt + "\nPersona: " + persona
}

// inlinePrompt folds the system prompt into a single completion prompt for
// providers without a separate system role.
func inlinePrompt(prompt, systemPrompt string) string {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return systemPrompt + "\n" + prompt
}
