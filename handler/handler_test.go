package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tieubaoca/pitchdeck-be/config"
	"github.com/tieubaoca/pitchdeck-be/database"
	"github.com/tieubaoca/pitchdeck-be/repository"
	"github.com/tieubaoca/pitchdeck-be/service"
	"github.com/tieubaoca/pitchdeck-be/types"
	"go.uber.org/zap"
)

type testServer struct {
	router *gin.Engine
	decks  repository.DeckRepo
}

func newTestServer(t *testing.T) *testServer {
	gin.SetMode(gin.TestMode)

	db, err := database.Open(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "api.db"),
	})
	require.NoError(t, err)
	decks := repository.NewDeckRepo(db)
	startups := repository.NewStartupRepo(db)

	files, err := service.NewFileService(filepath.Join(t.TempDir(), "uploads"), 1<<20)
	require.NoError(t, err)
	hub := service.NewProgressHub()

	router := SetupRouter(Handlers{
		Cors:    NewCorsHandler(""),
		Startup: NewStartupHandler(service.NewStartupService(startups)),
		Deck: NewDeckHandler(
			service.NewDeckService(decks, startups, files),
			service.NewWebSocketService(hub, zap.NewNop()),
		),
	}, 1<<20)
	return &testServer{router: router, decks: decks}
}

func (s *testServer) do(req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	var body map[string]any
	json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func (s *testServer) createStartup(t *testing.T, name string) uint {
	req := httptest.NewRequest(http.MethodPost, "/api/startups", bytes.NewBufferString(fmt.Sprintf(`{"name": %q, "website": "https://acme.test"}`, name)))
	req.Header.Set("Content-Type", "application/json")
	w, body := s.do(req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := body["data"].(map[string]any)
	return uint(data["id"].(float64))
}

func uploadRequest(t *testing.T, startupID uint, filename string, content []byte) *http.Request {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	part.Write(content)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/decks?startup_id=%d", startupID), &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	w, body := s.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["status"])
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStartupEndpoints(t *testing.T) {
	s := newTestServer(t)
	id := s.createStartup(t, "Acme")

	w, body := s.do(httptest.NewRequest(http.MethodGet, "/api/startups", nil))
	require.Equal(t, http.StatusOK, w.Code)
	list := body["data"].([]any)
	require.Len(t, list, 1)
	item := list[0].(map[string]any)
	assert.Equal(t, "Acme", item["name"])
	assert.Equal(t, float64(0), item["number_of_decks"])
	assert.Nil(t, item["latest_deck_id"])

	w, body = s.do(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/startups/%d", id), nil))
	require.Equal(t, http.StatusOK, w.Code)
	detail := body["data"].(map[string]any)
	assert.Equal(t, "https://acme.test", detail["website"])
	assert.Empty(t, detail["decks"])

	w, body = s.do(httptest.NewRequest(http.MethodGet, "/api/startups/999", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, body["status"])

	w, _ = s.do(httptest.NewRequest(http.MethodGet, "/api/startups/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateStartupValidation(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/startups", bytes.NewBufferString(`{"website": "x"}`))
	req.Header.Set("Content-Type", "application/json")
	w, _ := s.do(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/startups", bytes.NewBufferString(`{"name": "   "}`))
	req.Header.Set("Content-Type", "application/json")
	w, _ = s.do(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeckUploadAndDetail(t *testing.T) {
	s := newTestServer(t)
	startupID := s.createStartup(t, "Acme")

	w, body := s.do(uploadRequest(t, startupID, "acme.pdf", []byte("%PDF-1.4")))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	deck := body["data"].(map[string]any)
	deckID := uint(deck["id"].(float64))
	assert.Equal(t, false, deck["processed"])
	assert.Equal(t, string(types.StageNew), deck["stage"])

	// Simulate a finished pipeline run.
	ctx := context.Background()
	stored, err := s.decks.GetDeck(ctx, deckID)
	require.NoError(t, err)
	require.NoError(t, s.decks.CreateClaims(ctx, []*types.Claim{{DeckID: deckID, Text: "90% waste reduction", Category: types.CategoryOther}}))
	summary := `{"team": "X"}`
	stored.SummaryJSON = &summary
	stored.Stage = types.StageComplete
	stored.Processed = true
	require.NoError(t, s.decks.AdvanceStage(ctx, stored, types.StageNew, "summary_json"))

	w, body = s.do(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/decks/%d", deckID), nil))
	require.Equal(t, http.StatusOK, w.Code)
	detail := body["data"].(map[string]any)
	assert.Equal(t, true, detail["processed"])
	assert.Equal(t, string(types.StageComplete), detail["stage"])
	assert.Equal(t, map[string]any{"team": "X"}, detail["summary"])
	assert.Len(t, detail["claims"], 1)
	assert.Equal(t, []any{}, detail["questions"])

	w, body = s.do(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/startups/%d", startupID), nil))
	require.Equal(t, http.StatusOK, w.Code)
	decks := body["data"].(map[string]any)["decks"].([]any)
	require.Len(t, decks, 1)
	assert.Equal(t, true, decks[0].(map[string]any)["processed"])
}

func TestDeckUploadErrors(t *testing.T) {
	s := newTestServer(t)
	startupID := s.createStartup(t, "Acme")

	w, _ := s.do(uploadRequest(t, startupID, "acme.docx", []byte("x")))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(uploadRequest(t, 999, "acme.pdf", []byte("%PDF")))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(uploadRequest(t, startupID, "huge.pdf", bytes.Repeat([]byte("a"), 2<<20)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/decks", nil)
	w, _ = s.do(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(httptest.NewRequest(http.MethodGet, "/api/decks/12345", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
