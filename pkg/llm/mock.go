package llm

import "context"

// MockClient is a scripted ChatClient for tests.
type MockClient struct {
	Response string
	Err      error

	// LastSystem and LastMessages capture the most recent request.
	LastSystem   string
	LastMessages []Message
}

var _ ChatClient = (*MockClient)(nil)

func (m *MockClient) Model() string { return "mock" }

func (m *MockClient) StreamChat(ctx context.Context, system string, messages []Message, onDelta func(string)) (string, error) {
	m.LastSystem = system
	m.LastMessages = messages
	if m.Err != nil {
		return "", m.Err
	}
	if onDelta != nil && m.Response != "" {
		onDelta(m.Response)
	}
	return m.Response, nil
}
