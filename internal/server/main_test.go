package server

import (
	"bytes"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"moodmate/internal/config"
	"moodmate/internal/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func testConfig() *config.Config {
	return &config.Config{
		Port:                   "0",
		Env:                    "test",
		JWTSecret:              testSecret,
		JWTIssuer:              "moodmate-auth",
		JWTAudience:            "moodmate-client",
		FeatureFlags:           "image_mood=on",
		VibeMonthlyQuota:       5,
		GroqRPS:                100,
		GroqModel:              "llama-3.3-70b-versatile",
		UpstreamTimeoutSeconds: 5,
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

// testServer bundles a configured server with its app and Redis.
type testServer struct {
	*Server
	app   *fiber.App
	redis *miniredis.Miniredis
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) *testServer {
	t.Helper()
	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	s, err := NewServerWithDeps(cfg, newTestDB(t), rdb)
	require.NoError(t, err)
	return &testServer{Server: s, app: s.App(), redis: mr}
}

func (ts *testServer) token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	tok, err := ts.auth.IssueToken(userID, time.Hour)
	require.NoError(t, err)
	return tok
}

// do sends a request and returns the status and raw body. body is marshaled
// as JSON unless nil.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.app.Test(req, 5000)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

// doJSON is do plus decoding of the body into out.
func (ts *testServer) doJSON(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()
	status, raw := ts.do(t, method, path, token, body)
	if out != nil && len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, out), "body: %s", raw)
	}
	return status
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func shareBody(emotion string, links ...string) map[string]any {
	if len(links) == 0 {
		links = []string{"https://open.spotify.com/playlist/37i9dQZF1DXcBWIGoYBM5M"}
	}
	return map[string]any{"emotion": emotion, "links": links}
}
