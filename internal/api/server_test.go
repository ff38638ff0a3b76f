package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ramonehamilton/genesys-companion/internal/facade"
	"github.com/ramonehamilton/genesys-companion/internal/genesys"
	"github.com/ramonehamilton/genesys-companion/internal/genesys/breakdown"
	"github.com/ramonehamilton/genesys-companion/internal/metrics"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/cards"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deck"
	"github.com/ramonehamilton/genesys-companion/internal/ygo/deckcode"
)

type stubLookup struct {
	table cards.Table
}

func (s *stubLookup) Lookup(_ context.Context, ids []deck.CardID) (cards.Table, error) {
	out := cards.Table{}
	for _, id := range ids {
		if m, ok := s.table.Get(id); ok {
			out[id] = m
		}
	}
	return out, nil
}

func (s *stubLookup) Search(_ context.Context, _ string) ([]*cards.Metadata, error) {
	var out []*cards.Metadata
	for _, m := range s.table {
		out = append(out, m)
	}
	return out, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	m := metrics.New()
	services := &facade.Services{
		Points: facade.NewStaticPoints(genesys.NewIndex(&genesys.PointList{
			Source: "test",
			Cards:  []genesys.Card{{Name: "Card A", Points: 5}},
		})),
		Cards: &stubLookup{table: cards.NewTable([]*cards.Metadata{
			{ID: 1, Name: "Card A", Type: "Effect Monster"},
		})},
		Options: breakdown.Options{PointCap: 8},
		Metrics: m,
		Logger:  zaptest.NewLogger(t),
	}

	return NewServer(&Config{Port: 9999, Logger: zaptest.NewLogger(t), Metrics: m}, &Facades{
		Deck:   facade.NewDeckFacade(services),
		Points: facade.NewPointsFacade(services),
		Card:   facade.NewCardFacade(services),
	})
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestNewServer_NilConfig(t *testing.T) {
	server := NewServer(nil, nil)

	require.NotNil(t, server)
	assert.Equal(t, 8080, server.Port())
	assert.NotNil(t, server.WebSocketHub())
	assert.NotNil(t, server.NewPointsObserver())
}

func TestExactOrigins(t *testing.T) {
	assert.Nil(t, exactOrigins([]string{"http://localhost:*", "https://deck.example"}))
	assert.Equal(t, []string{"https://deck.example"}, exactOrigins([]string{"https://deck.example"}))
}

func TestServer_Health(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["version"])
}

func TestServer_Metrics(t *testing.T) {
	s := newTestServer(t)
	code := deckcode.Encode(deck.Deck{Main: []deck.CardID{1}})
	require.Equal(t, http.StatusOK, do(t, s, http.MethodPost, "/api/v1/decks/breakdown", `{"code":"`+code+`"}`).Code)
	require.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/v1/decks/decode", `{"code":"nope"}`).Code)

	w := do(t, s, http.MethodGet, "/api/v1/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data metrics.Stats `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, uint64(2), body.Data.Requests)
	assert.Equal(t, uint64(0), body.Data.ServerErrors)
	assert.Equal(t, uint64(1), body.Data.Breakdowns)
	assert.Equal(t, 1, body.Data.LookupLatency.Count)
}

func TestServer_MetricsDisabled(t *testing.T) {
	w := do(t, NewServer(nil, nil), http.MethodGet, "/api/v1/metrics", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_Breakdown(t *testing.T) {
	s := newTestServer(t)
	code := deckcode.Encode(deck.Deck{Main: []deck.CardID{1, 1, 0}})

	w := do(t, s, http.MethodPost, "/api/v1/decks/breakdown", `{"code":"`+code+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Data struct {
			Result breakdown.Result `json:"result"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, 10, body.Data.Result.TotalPoints)
	assert.True(t, body.Data.Result.OverCap)
	assert.Equal(t, 1, body.Data.Result.MissingIDs)
}

func TestServer_DecodeInvalid(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodPost, "/api/v1/decks/decode", `{"code":"ydke://AAA"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_ShareRoundTrip(t *testing.T) {
	s := newTestServer(t)
	code := deckcode.Encode(deck.Deck{Main: []deck.CardID{1}, Extra: []deck.CardID{2}})

	w := do(t, s, http.MethodPost, "/api/v1/decks/share", `{"code":"`+code+`"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var shared struct {
		Data facade.SharedDeck `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&shared))

	w = do(t, s, http.MethodPost, "/api/v1/decks/unshare", `{"token":"`+shared.Data.Token+`"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var decoded struct {
		Data facade.DecodedDeck `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&decoded))
	assert.Equal(t, code, decoded.Data.Code)
}

func TestServer_Points(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/api/v1/points", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, s, http.MethodGet, "/api/v1/points/lookup?name=card+a", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"points":5`)
}

func TestServer_CardSearch(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodGet, "/api/v1/cards/search?q=card", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Card A")
}

func TestServer_ContentTypeEnforced(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/decks/decode", strings.NewReader(`{"code":""}`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	newTestServer(t).Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestServer_NotFound(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodGet, "/api/v1/matches", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_CORS(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/decks/decode", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()

	s := NewServer(&Config{AllowedOrigins: []string{"http://localhost:5173"}}, nil)
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}
