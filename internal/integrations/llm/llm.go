// Package llm produces an optional prose digest of a finished analysis
// report, used for the Slack post. It summarizes findings for reviewers;
// it never decides which phrases to delete or rewrite.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

var externalHTTPClient = &http.Client{
	Timeout: 90 * time.Second,
}

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"
const defaultOpenAIModel = "gpt-4o-mini"

// maxReportChars bounds how much of the report goes into the prompt.
const maxReportChars = 12000

type Usage struct {
	InputTokens              int64
	OutputTokens             int64
	CacheCreationInputTokens int64
	CacheReadInputTokens     int64
}

func (u Usage) TotalTokens() int64 {
	return u.InputTokens + u.OutputTokens
}

func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheCreationInputTokens += other.CacheCreationInputTokens
	u.CacheReadInputTokens += other.CacheReadInputTokens
}

// Client selects the provider and credentials for digest calls.
type Client struct {
	Provider        string
	Model           string
	AnthropicAPIKey string
	OpenAIAPIKey    string
}

const digestSystemPrompt = `You summarize phrase-deduplication reports for a content review team.
Write a short digest (3-6 sentences, plain text, no markdown) covering:
- how much of the corpus is redundant (the reduction estimate)
- the worst exact-duplicate offenders and which files they span
- whether near-duplicate pairs cluster in particular files
Do not recommend deleting or rewriting specific phrases; reviewers decide that.`

// DigestReport asks the configured provider for a prose digest of the
// rendered markdown report.
func (c Client) DigestReport(ctx context.Context, report string) (string, Usage, error) {
	userPrompt := "Summarize this report:\n\n" + truncateReport(report, maxReportChars)

	switch c.Provider {
	case "openai":
		model := c.Model
		if model == "" {
			model = defaultOpenAIModel
		}
		log.Printf("llm digest provider=openai model=%s report_chars=%d", model, len(report))
		text, usage, err := callOpenAI(ctx, c.OpenAIAPIKey, model, digestSystemPrompt, userPrompt)
		return strings.TrimSpace(text), usage, err
	default:
		model := c.Model
		if model == "" {
			model = defaultAnthropicModel
		}
		log.Printf("llm digest provider=anthropic model=%s report_chars=%d", model, len(report))
		text, usage, err := callAnthropic(ctx, c.AnthropicAPIKey, model, digestSystemPrompt, userPrompt)
		return strings.TrimSpace(text), usage, err
	}
}

func truncateReport(report string, limit int) string {
	if len(report) <= limit {
		return report
	}
	return report[:limit] + "\n...(truncated)"
}

// --- Anthropic ---

func callAnthropic(ctx context.Context, apiKey, model, systemPrompt, userPrompt string) (string, Usage, error) {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt, CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		log.Printf("llm anthropic error: %v", err)
		return "", Usage{}, fmt.Errorf("Anthropic API error: %w", err)
	}
	usage := Usage{
		InputTokens:              message.Usage.InputTokens,
		OutputTokens:             message.Usage.OutputTokens,
		CacheCreationInputTokens: message.Usage.CacheCreationInputTokens,
		CacheReadInputTokens:     message.Usage.CacheReadInputTokens,
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			log.Printf("llm anthropic response size=%d tokens_in=%d tokens_out=%d", len(block.Text), usage.InputTokens, usage.OutputTokens)
			return block.Text, usage, nil
		}
	}
	return "", usage, fmt.Errorf("no text content in Anthropic response")
}

// --- OpenAI ---

type openAIRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func callOpenAI(ctx context.Context, apiKey, model, systemPrompt, userPrompt string) (string, Usage, error) {
	reqBody := openAIRequest{
		Model: model,
		Messages: []openAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", Usage{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", "https://api.openai.com/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", Usage{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := externalHTTPClient.Do(req)
	if err != nil {
		log.Printf("llm openai error: %v", err)
		return "", Usage{}, fmt.Errorf("OpenAI API error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", Usage{}, fmt.Errorf("reading response: %w", err)
	}

	var openAIResp openAIResponse
	if err := json.Unmarshal(respBody, &openAIResp); err != nil {
		return "", Usage{}, fmt.Errorf("parsing OpenAI response: %w", err)
	}

	if openAIResp.Error != nil {
		log.Printf("llm openai api error: %s", openAIResp.Error.Message)
		return "", Usage{}, fmt.Errorf("OpenAI API error: %s", openAIResp.Error.Message)
	}

	if len(openAIResp.Choices) == 0 {
		return "", Usage{}, fmt.Errorf("no choices in OpenAI response")
	}
	usage := Usage{}
	if openAIResp.Usage != nil {
		usage.InputTokens = openAIResp.Usage.PromptTokens
		usage.OutputTokens = openAIResp.Usage.CompletionTokens
	}

	log.Printf("llm openai response size=%d tokens_in=%d tokens_out=%d", len(openAIResp.Choices[0].Message.Content), usage.InputTokens, usage.OutputTokens)
	return openAIResp.Choices[0].Message.Content, usage, nil
}
