package types

// CommandInfo describes one enabled command.
type CommandInfo struct {
	// Command name as invoked by users.
	// example: alpaca
	Name string `json:"name" example:"alpaca"`
	// Human-friendly description.
	// example: Responds to the provided instruction.
	Description string `json:"description" example:"Responds to the provided instruction."`
	// Prompt template; {{PROMPT}} marks where the user's prompt goes.
	Template string `json:"template"`
}
