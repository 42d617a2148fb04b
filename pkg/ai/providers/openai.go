package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"chatbox/pkg/ai"
	"chatbox/pkg/config"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	openAIDefaultAPIURL  = "https://api.openai.com/v1"
	openAIDefaultModel   = "gpt-4o-mini"
	openAIDefaultTimeout = 30
)

func init() {
	ai.RegisterProvider(ai.ProviderInfo{
		Type:        ai.ProviderOpenAI,
		Name:        "OpenAI",
		Description: "OpenAI chat completions with function calling",
		KeyEnv:      "OPENAI_API_KEY",
	}, NewOpenAIProvider)
}

// OpenAIProvider implements the Provider interface using the OpenAI API directly.
type OpenAIProvider struct {
	client             openai.Client
	defaultModel       string
	defaultTemperature float64
	defaultMaxTokens   int
}

// NewOpenAIProvider creates a new OpenAI provider from config.
func NewOpenAIProvider(cfg ai.ProviderConfig) (ai.Provider, error) {
	providerCfg := cfg.Config.Providers.OpenAI

	timeout := providerCfg.APITimeoutSeconds
	if timeout <= 0 {
		timeout = openAIDefaultTimeout
	}

	return newOpenAIProviderWithHTTPClient(providerCfg, &http.Client{Timeout: time.Duration(timeout) * time.Second})
}

func newOpenAIProviderWithHTTPClient(providerCfg config.OpenAIConfig, httpClient *http.Client) (*OpenAIProvider, error) {
	apiKey := strings.TrimSpace(providerCfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("openai api_key is required (set in config or OPENAI_API_KEY)")
	}

	apiURL := providerCfg.APIURL
	if apiURL == "" {
		apiURL = openAIDefaultAPIURL
	}

	model := providerCfg.Model
	if model == "" {
		model = openAIDefaultModel
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(apiURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIProvider{
		client:             client,
		defaultModel:       model,
		defaultTemperature: providerCfg.Temperature,
		defaultMaxTokens:   providerCfg.MaxTokens,
	}, nil
}

// CreateChatCompletion sends a chat completion request. When tools are
// supplied the model may answer with tool calls instead of content.
func (p *OpenAIProvider) CreateChatCompletion(ctx context.Context, req ai.ChatRequest) (ai.ChatResponse, error) {
	params, err := p.buildChatParams(req)
	if err != nil {
		return ai.ChatResponse{}, err
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return ai.ChatResponse{}, err
	}

	out := ai.ChatResponse{Model: resp.Model}
	if len(resp.Choices) == 0 {
		return out, nil
	}

	msg := resp.Choices[0].Message
	out.Content = msg.Content
	for _, call := range msg.ToolCalls {
		if call.Function.Name == "" {
			continue
		}
		out.ToolCalls = append(out.ToolCalls, ai.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	return out, nil
}

func (p *OpenAIProvider) buildChatParams(req ai.ChatRequest) (openai.ChatCompletionNewParams, error) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = p.defaultModel
	}
	if strings.TrimSpace(model) == "" {
		return openai.ChatCompletionNewParams{}, fmt.Errorf("model is required")
	}
	if len(req.Messages) == 0 {
		return openai.ChatCompletionNewParams{}, fmt.Errorf("messages are required")
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, msg := range req.Messages {
		param, err := toChatMessageParam(msg)
		if err != nil {
			return openai.ChatCompletionNewParams{}, err
		}
		messages = append(messages, param)
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: messages,
	}

	for _, tool := range req.Tools {
		params.Tools = append(params.Tools, toToolParam(tool))
	}

	temperature := p.defaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	if temperature > 0 {
		params.Temperature = openai.Float(temperature)
	}

	maxTokens := p.defaultMaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}

	return params, nil
}

func toChatMessageParam(msg ai.Message) (openai.ChatCompletionMessageParamUnion, error) {
	role := strings.ToLower(strings.TrimSpace(msg.Role))
	switch role {
	case "system":
		return openai.SystemMessage(msg.Content), nil
	case "user":
		return openai.UserMessage(msg.Content), nil
	case "assistant":
		return openai.AssistantMessage(msg.Content), nil
	default:
		return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf("unsupported role: %s", msg.Role)
	}
}

func toToolParam(tool ai.Tool) openai.ChatCompletionToolUnionParam {
	def := openai.FunctionDefinitionParam{
		Name:       tool.Name,
		Parameters: openai.FunctionParameters(tool.Parameters),
	}
	if tool.Description != "" {
		def.Description = openai.String(tool.Description)
	}
	return openai.ChatCompletionFunctionTool(def)
}

// Ensure interface compliance
var _ ai.Provider = (*OpenAIProvider)(nil)
