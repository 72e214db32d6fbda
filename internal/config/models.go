package config

import "strings"

type AI string

const (
	AIGemini AI = "gemini"
	AIOpenAI AI = "openai"
)

type Model string

const (
	ModelGeminiV25Pro       Model = "gemini-2.5-pro"
	ModelGeminiV25Flash     Model = "gemini-2.5-flash"
	ModelGeminiV25FlashLite Model = "gemini-2.5-flash-lite"

	ModelGPTV4o     Model = "gpt-4o"
	ModelGPTV4oMini Model = "gpt-4o-mini"
	ModelGPTV41     Model = "gpt-4.1"
)

// defaultContextWindow applies to models missing from contextWindows.
const defaultContextWindow = 32000

var contextWindows = map[Model]int{
	ModelGeminiV25Pro:       1048576,
	ModelGeminiV25Flash:     1048576,
	ModelGeminiV25FlashLite: 1048576,
	ModelGPTV4o:             128000,
	ModelGPTV4oMini:         128000,
	ModelGPTV41:             1047576,
}

func SupportedAIs() []AI {
	return []AI{
		AIGemini,
		AIOpenAI,
	}
}

// SplitModel separates an explicit "provider/model" id. Ids without a known
// provider prefix are returned unchanged with an empty provider.
func SplitModel(id string) (AI, string) {
	if provider, name, ok := strings.Cut(id, "/"); ok {
		for _, ai := range SupportedAIs() {
			if string(ai) == provider {
				return ai, name
			}
		}
	}
	return "", id
}

// ContextWindow returns the input token window for a model id, capped by
// maxTokens when it is positive.
func ContextWindow(id string, maxTokens int) int {
	_, name := SplitModel(id)
	window, ok := contextWindows[Model(name)]
	if !ok {
		window = defaultContextWindow
	}
	if maxTokens > 0 && maxTokens < window {
		return maxTokens
	}
	return window
}
