package services

import "fmt"

const healthAssistantPrompt = `
You are a caring AI medical assistant helping users with basic health tips.

Your job:
- Provide helpful, clear responses in 4-5 bullet points for common health issues like fever, cold, headache, migraine, etc.
- Avoid repeating warnings unless necessary.
- If the query is unclear or serious, briefly advise seeing a doctor.

User's message: %s
`

// BuildPrompt embeds an already trimmed user message into the assistant framing.
func BuildPrompt(message string) string {
	return fmt.Sprintf(healthAssistantPrompt, message)
}

func previewPrompt(prompt string) string {
	const max = 100
	runes := []rune(prompt)
	if len(runes) <= max {
		return prompt
	}
	return string(runes[:max]) + "..."
}
