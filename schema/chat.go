package schema

// Input represents the input schema for chat agents
type Input struct {
	Base
	// ChatMessage The input message to the agent
	ChatMessage string `json:"chat_message" jsonschema:"title=chat_message,description=The message sent by the user to the assistant." validate:"required"`
}

// NewInput returns a new chat Input
func NewInput(msg string) *Input {
	return &Input{
		ChatMessage: msg,
	}
}

// Output represents the response schema of chat agents
type Output struct {
	Base
	// ChatMessage The markdown enabled response from the agent
	ChatMessage string `json:"chat_message" jsonschema:"title=chat_message,description=The response message from the assistant." validate:"required"`
}

// NewOutput returns a new chat Output
func NewOutput(msg string) *Output {
	return &Output{
		ChatMessage: msg,
	}
}
