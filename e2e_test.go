package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/FACorreiaa/go-culture-routes/internal/api/explain"
	generativeAI "github.com/FACorreiaa/go-culture-routes/internal/api/generative_ai"
	"github.com/FACorreiaa/go-culture-routes/internal/api/itinerary"
	llmInteraction "github.com/FACorreiaa/go-culture-routes/internal/api/llm_interaction"
	"github.com/FACorreiaa/go-culture-routes/internal/api/poi"
	"github.com/FACorreiaa/go-culture-routes/internal/router"
	"github.com/FACorreiaa/go-culture-routes/internal/types"
)

// memoryInteractions keeps recorded completions in memory.
type memoryInteractions struct {
	mu    sync.Mutex
	items []types.LlmInteraction
}

func (m *memoryInteractions) SaveInteraction(_ context.Context, it types.LlmInteraction) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	it.CreatedAt = time.Now()
	m.items = append(m.items, it)
	return it.ID, nil
}

func (m *memoryInteractions) ListRecent(_ context.Context, operation string, limit int) ([]types.LlmInteraction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.LlmInteraction
	for _, it := range slices.Backward(m.items) {
		if operation == "" || it.Operation == operation {
			out = append(out, it)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

type staticStore []types.ContentRecord

func (s staticStore) FindAllGeotagged(context.Context) ([]types.ContentRecord, error) {
	return s, nil
}

func coord(v float64) *float64 { return &v }

const fakeItinerary = "```json\n{“title”: “南疆文化之旅”, \"description\": \"从乌鲁木齐到喀什\", \"itinerary\": [" +
	"{\"day\": 1, \"title\": \"抵达乌鲁木齐\", \"locations\": [{\"name\": \"新疆博物馆\", \"lat\": \"43.82\", \"lng\": 87.61}], \"timeSchedule\": \"09:00-12:\"00}," +
	"{\"day\": 2, \"title\": \"喀什古城\", \"locations\": [{\"name\": \"喀什古城\"}]}" +
	"], \"tips\": [\"注意防晒\"]\n```"

const fakeExplanation = `好的，以下是讲解：{"title":"坎儿井","summary":"古老的地下水利工程","highlights":["暗渠","竖井"]}`

// E2ETestSuite drives the full HTTP stack against a fake completion provider.
type E2ETestSuite struct {
	suite.Suite
	aiServer     *httptest.Server
	server       *httptest.Server
	client       *http.Client
	interactions *memoryInteractions
	recorder     *llmInteraction.Recorder
	aiCalls      int
	mu           sync.Mutex
}

func (s *E2ETestSuite) SetupSuite() {
	logger := slog.New(slog.DiscardHandler)

	s.aiServer = httptest.NewServer(http.HandlerFunc(s.fakeCompletion))
	provider := generativeAI.ProviderConfig{
		Name:    generativeAI.ProviderDeepSeek,
		APIKey:  "sk-e2e",
		APIURL:  s.aiServer.URL,
		Model:   "deepseek-chat",
		Timeout: 5 * time.Second,
	}
	client := generativeAI.NewChatCompletionClient(provider, logger)

	s.interactions = &memoryInteractions{}
	recorder := llmInteraction.NewRecorder(s.interactions, logger)
	s.recorder = recorder

	store := staticStore{
		{ID: 1, Title: "新疆博物馆", Type: types.ContentTypeExhibit, Lat: coord(43.82), Lng: coord(87.61)},
		{ID: 2, Title: "红山公园", Type: types.ContentTypeArticle, Lat: coord(43.80), Lng: coord(87.60)},
		{ID: 3, Title: "喀什古城", Type: types.ContentTypeArticle, Lat: coord(39.47), Lng: coord(75.99)},
		{ID: 4, Title: "木卡姆非遗展演", Type: types.ContentTypeVideo, Lat: coord(39.46), Lng: coord(76.00)},
		{ID: 5, Title: "无坐标资源", Type: types.ContentTypeArticle},
	}

	app := router.SetupRouter(&router.Config{
		ItineraryHandler: itinerary.NewHandlerImpl(
			itinerary.NewServiceImpl(provider, client, recorder, itinerary.GenerationOptions{}, logger), logger),
		POIHandler: poi.NewHandlerImpl(poi.NewServiceImpl(store, logger), 500, logger),
		ExplainHandler: explain.NewHandlerImpl(
			explain.NewServiceImpl(provider, client, explain.NewMemoryCache(time.Minute, time.Minute), recorder, logger), logger),
		LlmInteractionHandler: llmInteraction.NewHandler(s.interactions, logger),
	})
	s.server = httptest.NewServer(newHTTPHandler(app, 30*time.Second, logger))
	s.client = &http.Client{Timeout: 10 * time.Second}
}

func (s *E2ETestSuite) TearDownSuite() {
	s.server.Close()
	s.aiServer.Close()
}

func (s *E2ETestSuite) fakeCompletion(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.aiCalls++
	s.mu.Unlock()

	var req struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || r.Header.Get("Authorization") != "Bearer sk-e2e" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	content := fakeItinerary
	if len(req.Messages) == 2 && req.Messages[0].Role == "system" {
		content = fakeExplanation
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"model":   "deepseek-chat",
		"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": content}}},
		"usage":   map[string]int{"prompt_tokens": 100, "completion_tokens": 200},
	})
}

func (s *E2ETestSuite) do(method, path string, body any) (*http.Response, []byte) {
	t := s.T()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func (s *E2ETestSuite) TestRouteGenerationWorkflow() {
	t := s.T()

	resp, body := s.do(http.MethodPost, "/api/v1/routes/generate", types.TripPreferences{
		Destinations: "乌鲁木齐,喀什",
		Duration:     2,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var plan types.ItineraryPlan
	require.NoError(t, json.Unmarshal(body, &plan))
	assert.Equal(t, "南疆文化之旅", plan.Title)
	require.Len(t, plan.Itinerary, 2)
	assert.Equal(t, "09:00-12:00", plan.Itinerary[0].TimeSchedule)
	require.Len(t, plan.Itinerary[0].Locations, 1)
	require.NotNil(t, plan.Itinerary[0].Locations[0].Lat)
	assert.InDelta(t, 43.82, *plan.Itinerary[0].Locations[0].Lat, 1e-9)
	assert.Nil(t, plan.Itinerary[1].Locations[0].Lat)
	assert.Contains(t, plan.Tips, "注意防晒")

	s.recorder.Wait()
	resp, body = s.do(http.MethodGet, "/api/v1/ai/interactions?operation=itinerary", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var logged []types.LlmInteraction
	require.NoError(t, json.Unmarshal(body, &logged))
	require.NotEmpty(t, logged)
	assert.Equal(t, types.InteractionSuccess, logged[0].Status)
	assert.Equal(t, "deepseek-chat", logged[0].ModelUsed)
	assert.Contains(t, logged[0].Prompt, "乌鲁木齐")
}

func (s *E2ETestSuite) TestRouteValidation() {
	resp, _ := s.do(http.MethodPost, "/api/v1/routes/generate", map[string]any{"duration": 45})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *E2ETestSuite) TestExplainIsCached() {
	t := s.T()
	req := types.CultureExplainRequest{Query: "坎儿井", Length: "short"}

	s.mu.Lock()
	before := s.aiCalls
	s.mu.Unlock()

	for range 2 {
		resp, body := s.do(http.MethodPost, "/api/v1/ai/explain", req)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var exp types.CultureExplanation
		require.NoError(t, json.Unmarshal(body, &exp))
		assert.Equal(t, "坎儿井", exp.Title)
		assert.Equal(t, []string{"暗渠", "竖井"}, exp.Highlights)
		assert.True(t, exp.Generated)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Equal(t, before+1, s.aiCalls)
}

func (s *E2ETestSuite) TestMapPois() {
	t := s.T()

	resp, body := s.do(http.MethodGet, "/api/v1/map/pois?cluster=true&zoom=5", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res types.PoiResult
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 4, res.Filtered)
	assert.True(t, res.Clustered)
	require.Len(t, res.Clusters, 2)
	assert.Empty(t, res.Pois)
	assert.Equal(t, 1, res.Stats["museum"])
	assert.Equal(t, 1, res.Stats["heritage"])

	resp, body = s.do(http.MethodGet, "/api/v1/map/pois?category=heritage&north=40", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, 4, res.Total)
	require.Len(t, res.Pois, 1)
	assert.True(t, strings.HasPrefix(res.Pois[0].Title, "木卡姆"))
}

func TestE2ETestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end suite in short mode")
	}
	suite.Run(t, new(E2ETestSuite))
}
