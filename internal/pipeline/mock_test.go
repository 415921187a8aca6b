package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/chrt-labs/crm-sync-cli/internal/model"
	"github.com/chrt-labs/crm-sync-cli/pkg/anthropic"
	"github.com/chrt-labs/crm-sync-cli/pkg/hubspot"
	"github.com/chrt-labs/crm-sync-cli/pkg/mastersheet"
	"github.com/chrt-labs/crm-sync-cli/pkg/phantombuster"
)

// --- HubSpot Mock ---

type mockHubSpot struct {
	mock.Mock
}

func (m *mockHubSpot) ListAll(ctx context.Context, objectType string, properties []string) ([]model.Record, error) {
	args := m.Called(ctx, objectType, properties)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Record), args.Error(1)
}

func (m *mockHubSpot) Get(ctx context.Context, objectType, id string, properties []string) (*model.Record, error) {
	args := m.Called(ctx, objectType, id, properties)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Record), args.Error(1)
}

func (m *mockHubSpot) Create(ctx context.Context, objectType string, properties map[string]string) (*model.Record, error) {
	args := m.Called(ctx, objectType, properties)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Record), args.Error(1)
}

func (m *mockHubSpot) Update(ctx context.Context, objectType, id string, properties map[string]string) error {
	args := m.Called(ctx, objectType, id, properties)
	return args.Error(0)
}

func (m *mockHubSpot) Delete(ctx context.Context, objectType, id string) error {
	args := m.Called(ctx, objectType, id)
	return args.Error(0)
}

func (m *mockHubSpot) Search(ctx context.Context, objectType string, query hubspot.SearchQuery) ([]model.Record, error) {
	args := m.Called(ctx, objectType, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Record), args.Error(1)
}

func (m *mockHubSpot) Associations(ctx context.Context, fromType, fromID, toType string) ([]string, error) {
	args := m.Called(ctx, fromType, fromID, toType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockHubSpot) Associate(ctx context.Context, fromType, fromID, toType, toID, label string) error {
	args := m.Called(ctx, fromType, fromID, toType, toID, label)
	return args.Error(0)
}

// --- Claude Mock ---

// mockClaude replays canned response texts in call order.
type mockClaude struct {
	responses []string
	requests  []anthropic.MessageRequest
	err       error
}

func (m *mockClaude) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	text := "{}"
	if len(m.responses) > 0 {
		text = m.responses[0]
		m.responses = m.responses[1:]
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
	}, nil
}

// --- Master Sheet Mock ---

type mockMasterSheet struct {
	mock.Mock
}

func (m *mockMasterSheet) FetchProfiles(ctx context.Context) (*mastersheet.ProfileSets, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mastersheet.ProfileSets), args.Error(1)
}

func (m *mockMasterSheet) LookupConnections(ctx context.Context, urls []string) (map[string][]string, error) {
	args := m.Called(ctx, urls)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]string), args.Error(1)
}

func (m *mockMasterSheet) WriteHoldingURLs(ctx context.Context, urls []string) (int, error) {
	args := m.Called(ctx, urls)
	return args.Int(0), args.Error(1)
}

// --- PhantomBuster Mock ---

type mockPhantomBuster struct {
	mock.Mock
}

func (m *mockPhantomBuster) Launch(ctx context.Context, agentID string, launchArgs phantombuster.LaunchArgs) (string, error) {
	args := m.Called(ctx, agentID, launchArgs)
	return args.String(0), args.Error(1)
}

func (m *mockPhantomBuster) AgentStatus(ctx context.Context, agentID string) (string, error) {
	args := m.Called(ctx, agentID)
	return args.String(0), args.Error(1)
}

// contact builds a test record.
func contact(id string, props map[string]string) model.Record {
	return model.Record{ID: id, Properties: props}
}
