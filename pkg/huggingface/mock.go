package huggingface

import (
	"context"
	"sync"

	"github.com/phonewise/phonewise-be/pkg/llm"
)

// MockClient implements the llm.Client interface for testing
type MockClient struct {
	mu sync.Mutex

	// GenerateFunc allows customizing the single-prompt behavior
	GenerateFunc func(context.Context, string, int, float64) (string, error)

	// ChatFunc allows customizing the chat completion behavior
	ChatFunc func(context.Context, llm.ChatRequest) (*llm.ChatResponse, error)

	// Tracking for assertions
	GenerateCalls []GenerateCall
	ChatCalls     []llm.ChatRequest
}

// GenerateCall records the arguments of one Generate invocation
type GenerateCall struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Ensure MockClient implements llm.Client
var _ llm.Client = (*MockClient)(nil)

// NewMockClient creates a new mock client with default behavior
func NewMockClient() *MockClient {
	return &MockClient{
		GenerateCalls: make([]GenerateCall, 0),
		ChatCalls:     make([]llm.ChatRequest, 0),
	}
}

// Generate implements llm.Client.Generate
func (m *MockClient) Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	m.mu.Lock()
	m.GenerateCalls = append(m.GenerateCalls, GenerateCall{Prompt: prompt, MaxTokens: maxTokens, Temperature: temperature})
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, maxTokens, temperature)
	}

	return "This is a mock response.", nil
}

// ChatCompletion implements llm.Client.ChatCompletion
func (m *MockClient) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	m.mu.Lock()
	m.ChatCalls = append(m.ChatCalls, req)
	m.mu.Unlock()

	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, req)
	}

	resp := &llm.ChatResponse{
		ID:      "mock-response-1",
		Object:  "chat.completion",
		Created: 1234567890,
		Model:   req.Model,
	}
	resp.Choices = make([]struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	}, 1)
	resp.Choices[0].Message.Role = "assistant"
	resp.Choices[0].Message.Content = "This is a mock response."
	resp.Choices[0].FinishReason = "stop"
	resp.Usage.PromptTokens = 10
	resp.Usage.CompletionTokens = 5
	resp.Usage.TotalTokens = 15
	return resp, nil
}

// Reset clears the call history
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GenerateCalls = make([]GenerateCall, 0)
	m.ChatCalls = make([]llm.ChatRequest, 0)
}

// GetGenerateCallCount returns the number of Generate calls made
func (m *MockClient) GetGenerateCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.GenerateCalls)
}

// GetChatCallCount returns the number of chat calls made
func (m *MockClient) GetChatCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ChatCalls)
}
