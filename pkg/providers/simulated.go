package providers

import (
	"fmt"
	"time"
)

// Provider identifiers served by the dispatcher.
const (
	Perplexity = "perplexity"
	Gemini     = "gemini"
	ChatGPT    = "chatgpt"
)

// promptExcerptLength is how much of the prompt is echoed into a response.
const promptExcerptLength = 50

// simulatedProvider describes one canned provider.
type simulatedProvider struct {
	id     string
	model  string
	delay  DelayRange
	render func(excerpt string) string
}

func defaultProviders() []simulatedProvider {
	return []simulatedProvider{
		{
			id:    Perplexity,
			model: "pplx-70b-online",
			delay: DelayRange{Min: 100 * time.Millisecond, Spread: 200 * time.Millisecond},
			render: func(excerpt string) string {
				return fmt.Sprintf(`[Perplexity AI Response] Based on my search and analysis: %s... 
    
Here's what I found from various sources:
1. Relevant information addressing your query
2. Cross-referenced data from multiple sources
3. Evidence-based insights with citations

This response leverages real-time web search capabilities to provide current and accurate information.`, excerpt)
			},
		},
		{
			id:    Gemini,
			model: "gemini-pro",
			delay: DelayRange{Min: 150 * time.Millisecond, Spread: 250 * time.Millisecond},
			render: func(excerpt string) string {
				return fmt.Sprintf(`[Gemini Pro Response] Analyzing your request: %s...

As Google's advanced AI model, I can provide:
• Comprehensive multi-modal understanding
• Deep contextual analysis
• Nuanced reasoning capabilities
• Integration with Google's knowledge base

Response: [Detailed analysis based on your query with structured insights and recommendations]`, excerpt)
			},
		},
		{
			id:    ChatGPT,
			model: "gpt-4-turbo",
			delay: DelayRange{Min: 120 * time.Millisecond, Spread: 220 * time.Millisecond},
			render: func(excerpt string) string {
				return fmt.Sprintf(`[ChatGPT-4 Response] I understand you're asking about: %s...

Let me provide a comprehensive response:

**Analysis:**
- Key point 1 addressing your query
- Relevant context and background information
- Practical implications and applications

**Recommendations:**
- Actionable insights based on your needs
- Best practices and considerations
- Next steps you might consider

I'm here to help with any follow-up questions you might have.`, excerpt)
			},
		},
	}
}

// excerpt returns the first n runes of s.
func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
