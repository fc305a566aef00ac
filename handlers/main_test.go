package handlers_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/pongarena/pongarena-backend/handlers"
	"github.com/pongarena/pongarena-backend/models"
	"github.com/pongarena/pongarena-backend/repository"
)

// fakeBackend stands in for the postgres/mongo collaborators.
type fakeBackend struct {
	mu       sync.Mutex
	saved    []models.Match
	known    map[string]bool
	archived []models.SessionRecord
}

func (f *fakeBackend) SaveMatch(player1, player2 string, score1, score2 int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, models.Match{Player1: player1, Player2: player2, Score1: score1, Score2: score2})
	return nil
}

func (f *fakeBackend) MatchesFor(username string) ([]models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Match
	for _, m := range f.saved {
		if m.Player1 == username || m.Player2 == username {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeBackend) PlayerExists(username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.known[username], nil
}

func (f *fakeBackend) Archive(_ context.Context, record models.SessionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.archived = append(f.archived, record)
	return nil
}

func (f *fakeBackend) savedMatches() []models.Match {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Match(nil), f.saved...)
}

type testEnv struct {
	server  *httptest.Server
	store   *repository.Store
	redis   *miniredis.Miniredis
	backend *fakeBackend
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := repository.NewStore(client)
	backend := &fakeBackend{known: map[string]bool{}}
	handlers.Setup(store, backend, backend, backend)

	server := httptest.NewServer(handlers.NewRouter())
	t.Cleanup(server.Close)

	return &testEnv{server: server, store: store, redis: mr, backend: backend}
}

func (e *testEnv) dial(t *testing.T, path, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.server.URL, "http") + path
	if token != "" {
		url += "?token=" + token
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func signToken(t *testing.T, username string) string {
	t.Helper()
	claims := models.CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		ID:       "1",
		Username: username,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

// readEnvelope decodes the next frame into a loose map.
func readEnvelope(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &envelope))
	return envelope
}

// readUntilType skips frames until one of the wanted type arrives.
func readUntilType(t *testing.T, conn *websocket.Conn, wanted string) map[string]interface{} {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		envelope := readEnvelope(t, conn)
		if envelope["type"] == wanted {
			return envelope
		}
	}
	t.Fatalf("no %q message received", wanted)
	return nil
}

// expectSilence asserts no frame arrives within the window.
func expectSilence(t *testing.T, conn *websocket.Conn, window time.Duration) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(window)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err, "expected no message, got one")
}

func sendJSON(t *testing.T, conn *websocket.Conn, v interface{}) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(v))
}
