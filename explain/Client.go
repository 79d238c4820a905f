package explain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.3-70b-versatile"

	// Unavailable is returned whenever the completion API cannot be reached,
	// so the feature degrades instead of failing a request.
	Unavailable = "AI Analysis unavailable (Check API Key)."
)

const promptTemplate = `You are a senior security engineer. Analyze this python code snippet.
The automated scanner flagged it as: "%s".

Code:
%s

Task:
1. Is this a FALSE POSITIVE or a REAL RISK?
2. Explain why in 1 sentence.
3. If real, suggest a 1-line fix.

Format output as:
Risk: [Real/False Positive]
Reason: [Explanation]
Fix: [Fix code or 'N/A']`

type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to an OpenAI-compatible chat completions endpoint to turn a
// finding plus its code snippet into a short natural-language assessment.
type Client struct {
	BaseURL    string
	Model      string
	APIKey     string
	HTTPClient HttpClient
}

func NewClient(apiKey string) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		Model:      DefaultModel,
		APIKey:     apiKey,
		HTTPClient: http.DefaultClient,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Explain asks the model whether the flagged snippet is a real risk. It never
// returns an error; every failure mode collapses to the Unavailable text.
func (c *Client) Explain(code string, issue string) string {
	if c.APIKey == "" {
		return Unavailable
	}

	prompt := fmt.Sprintf(promptTemplate, issue, code)
	payload, err := json.Marshal(chatRequest{
		Model:    c.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		log.Printf("Failed to marshal explanation request: %v", err)
		return Unavailable
	}

	url := fmt.Sprintf("%s/chat/completions", c.BaseURL)
	req, err := http.NewRequest("POST", url, bytes.NewReader(payload))
	if err != nil {
		log.Printf("Failed to create explanation request: %v", err)
		return Unavailable
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Printf("Explanation request failed: %v", err)
		return Unavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Explanation request returned status %d", resp.StatusCode)
		return Unavailable
	}

	var completion chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		log.Printf("Failed to decode explanation response: %v", err)
		return Unavailable
	}
	if len(completion.Choices) == 0 {
		return Unavailable
	}

	return completion.Choices[0].Message.Content
}
