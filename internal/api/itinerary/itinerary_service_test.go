package itinerary

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	generativeAI "github.com/FACorreiaa/go-culture-routes/internal/api/generative_ai"
	"github.com/FACorreiaa/go-culture-routes/internal/types"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) Complete(ctx context.Context, req generativeAI.CompletionRequest) (*generativeAI.CompletionResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*generativeAI.CompletionResult), args.Error(1)
}

func (m *MockClient) Provider() string { return generativeAI.ProviderDeepSeek }

func (m *MockClient) Model() string { return "deepseek-chat" }

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Record(ctx context.Context, interaction types.LlmInteraction) {
	m.Called(ctx, interaction)
}

var configuredProvider = generativeAI.ProviderConfig{
	Name:   generativeAI.ProviderDeepSeek,
	APIKey: "sk-test",
	Model:  "deepseek-chat",
}

func setupServiceTest(provider generativeAI.ProviderConfig) (*ServiceImpl, *MockClient, *MockRecorder) {
	client := new(MockClient)
	recorder := new(MockRecorder)
	svc := NewServiceImpl(provider, client, recorder, GenerationOptions{}, slog.New(slog.DiscardHandler))
	return svc, client, recorder
}

func withStatus(status types.InteractionStatus) any {
	return mock.MatchedBy(func(i types.LlmInteraction) bool {
		return i.Status == status && i.Operation == "itinerary" && i.Prompt != ""
	})
}

func TestServiceImpl_SynthesizeItinerary(t *testing.T) {
	ctx := context.Background()
	prefs := types.TripPreferences{StartLocation: "Urumqi", EndLocation: "Kashgar", Duration: 3}

	t.Run("missing credentials use the built-in plan", func(t *testing.T) {
		for _, key := range []string{"", "  ", "your-deepseek-api-key"} {
			provider := configuredProvider
			provider.APIKey = key
			svc, client, recorder := setupServiceTest(provider)

			plan, err := svc.SynthesizeItinerary(ctx, prefs)
			require.NoError(t, err)
			require.Len(t, plan.Itinerary, 3)
			assert.Contains(t, plan.Itinerary[0].Title, "Urumqi")
			assert.Contains(t, plan.Itinerary[2].Title, "Kashgar")
			client.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
			recorder.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
		}
	})

	t.Run("nil client uses the built-in plan", func(t *testing.T) {
		svc := NewServiceImpl(configuredProvider, nil, nil, GenerationOptions{}, slog.New(slog.DiscardHandler))
		plan, err := svc.SynthesizeItinerary(ctx, prefs)
		require.NoError(t, err)
		assert.Len(t, plan.Itinerary, 3)
	})

	t.Run("success", func(t *testing.T) {
		svc, client, recorder := setupServiceTest(configuredProvider)
		content := "```json\n{\"title\": \"null\", \"itinerary\": [{\"day\": 1, \"title\": \"抵达乌鲁木齐\"}], \"tips\": [\"带好证件\"]}\n```"
		client.On("Complete", mock.Anything, mock.MatchedBy(func(req generativeAI.CompletionRequest) bool {
			return req.Model == "deepseek-chat" && req.Temperature == DefaultTemperature &&
				req.MaxTokens == DefaultMaxTokens && req.Prompt != ""
		})).Return(&generativeAI.CompletionResult{Content: content, Model: "deepseek-chat"}, nil).Once()
		recorder.On("Record", mock.Anything, withStatus(types.InteractionSuccess)).Once()

		plan, err := svc.SynthesizeItinerary(ctx, prefs)
		require.NoError(t, err)
		assert.Equal(t, "从Urumqi到Kashgar的路线", plan.Title)
		require.Len(t, plan.Itinerary, 1)
		assert.Equal(t, "抵达乌鲁木齐", plan.Itinerary[0].Title)
		assert.Equal(t, []string{"带好证件"}, plan.Tips)
		client.AssertExpectations(t)
		recorder.AssertExpectations(t)
	})

	t.Run("provider error is returned without fallback", func(t *testing.T) {
		svc, client, recorder := setupServiceTest(configuredProvider)
		perr := generativeAI.ParseProviderError(generativeAI.ProviderDeepSeek, http.StatusPaymentRequired,
			[]byte(`{"error":{"message":"Insufficient Balance"}}`))
		client.On("Complete", mock.Anything, mock.Anything).Return(nil, perr).Once()
		recorder.On("Record", mock.Anything, withStatus(types.InteractionError)).Once()

		plan, err := svc.SynthesizeItinerary(ctx, prefs)
		require.Error(t, err)
		assert.Nil(t, plan)
		var got *generativeAI.ProviderHTTPError
		require.True(t, errors.As(err, &got))
		assert.Equal(t, generativeAI.KindInsufficientBalance, got.Kind)
		client.AssertExpectations(t)
		recorder.AssertExpectations(t)
	})

	t.Run("timeout is returned as network error", func(t *testing.T) {
		svc, client, recorder := setupServiceTest(configuredProvider)
		client.On("Complete", mock.Anything, mock.Anything).
			Return(nil, &generativeAI.NetworkError{Provider: "deepseek", Timeout: true, Err: context.DeadlineExceeded}).Once()
		recorder.On("Record", mock.Anything, withStatus(types.InteractionError)).Once()

		_, err := svc.SynthesizeItinerary(ctx, prefs)
		var nerr *generativeAI.NetworkError
		require.True(t, errors.As(err, &nerr))
		assert.True(t, nerr.Timeout)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("unparseable content is a format error", func(t *testing.T) {
		svc, client, recorder := setupServiceTest(configuredProvider)
		client.On("Complete", mock.Anything, mock.Anything).
			Return(&generativeAI.CompletionResult{Content: "抱歉，我无法生成行程。"}, nil).Once()
		recorder.On("Record", mock.Anything, withStatus(types.InteractionError)).Once()

		plan, err := svc.SynthesizeItinerary(ctx, prefs)
		assert.Nil(t, plan)
		var ferr *ResponseFormatError
		require.True(t, errors.As(err, &ferr))
		recorder.AssertExpectations(t)
	})

	t.Run("custom generation options", func(t *testing.T) {
		client := new(MockClient)
		svc := NewServiceImpl(configuredProvider, client, nil, GenerationOptions{Temperature: 0.2, MaxTokens: 4000},
			slog.New(slog.DiscardHandler))
		client.On("Complete", mock.Anything, mock.MatchedBy(func(req generativeAI.CompletionRequest) bool {
			return req.Temperature == 0.2 && req.MaxTokens == 4000
		})).Return(&generativeAI.CompletionResult{Content: `{"title": "Urumqi到Kashgar"}`}, nil).Once()

		plan, err := svc.SynthesizeItinerary(ctx, prefs)
		require.NoError(t, err)
		assert.Equal(t, "Urumqi到Kashgar", plan.Title)
		client.AssertExpectations(t)
	})
}
