package openai

import "time"

const (
	// DefaultModel is used when Config.Model is empty.
	DefaultModel = "gpt-4o"

	// DefaultBaseURL targets the OpenAI API. DeepSeek and Qwen expose the same
	// surface under their own base URLs.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultTimeout is the transport-level timeout for one request.
	DefaultTimeout = 25 * time.Second
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
