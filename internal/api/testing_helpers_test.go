package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/hridaya/internal/db"
	"github.com/terraincognita07/hridaya/internal/i18n"
	"github.com/terraincognita07/hridaya/internal/llm"
	"github.com/terraincognita07/hridaya/internal/services"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecretKey = "test-secret-key-with-at-least-32-characters"
	testPassword  = "StrongPass1"
)

// testNow is noon on 2026-01-20, so handler.today() is 2026-01-20.
var testNow = time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)

type mockChatClient struct {
	request   llm.ChatRequest
	chunks    []string
	streamErr error
	err       error
}

func (client *mockChatClient) StreamChat(_ context.Context, req llm.ChatRequest) (llm.Stream, error) {
	client.request = req
	if client.err != nil {
		return nil, client.err
	}
	return &mockStream{chunks: append([]string{}, client.chunks...), err: client.streamErr}, nil
}

// mockStream yields its chunks, then err (or io.EOF when err is nil).
type mockStream struct {
	chunks []string
	err    error
	closed bool
}

func (stream *mockStream) Next() (string, error) {
	if len(stream.chunks) == 0 {
		if stream.err != nil {
			return "", stream.err
		}
		return "", io.EOF
	}
	chunk := stream.chunks[0]
	stream.chunks = stream.chunks[1:]
	return chunk, nil
}

func (stream *mockStream) Close() error {
	stream.closed = true
	return nil
}

type testApp struct {
	app     *fiber.App
	handler *Handler
	chat    *mockChatClient
}

func newTestApp(t *testing.T) testApp {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "hridaya-api-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	i18nManager, err := i18n.NewDefaultManager("en")
	if err != nil {
		t.Fatalf("init i18n: %v", err)
	}
	catalog, err := services.DefaultPracticeCatalog()
	if err != nil {
		t.Fatalf("load practice catalog: %v", err)
	}

	chat := &mockChatClient{}
	handler, err := NewHandler(database, testSecretKey, time.UTC, i18nManager, catalog, chat, false)
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}
	handler.now = func() time.Time { return testNow }
	handler.authService.WithHashCost(bcrypt.MinCost)

	app := fiber.New()
	app.Use(handler.LanguageMiddleware)
	RegisterRoutes(app, handler)
	return testApp{app: app, handler: handler, chat: chat}
}

func (env testApp) do(t *testing.T, method string, path string, body any, cookie string) *http.Response {
	t.Helper()

	var reader io.Reader
	switch value := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(value)
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, reader)
	if reader != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		request.Header.Set("Cookie", cookie)
	}

	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() {
		_ = response.Body.Close()
	})
	return response
}

// register creates an account and returns the auth cookie header value.
func (env testApp) register(t *testing.T, email string) string {
	t.Helper()

	response := env.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email":    email,
		"password": testPassword,
	}, "")
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("expected register status 201, got %d", response.StatusCode)
	}

	cookie := responseCookie(response.Cookies(), authCookieName)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("expected auth cookie after register")
	}
	return cookie.Name + "=" + cookie.Value
}

func (env testApp) createExperiment(t *testing.T, cookie string, startDate string) map[string]any {
	t.Helper()

	response := env.do(t, http.MethodPost, "/api/experiments", map[string]any{
		"title":         "Morning metta",
		"hypothesis":    "Metta before work steadies the day",
		"protocol":      "20 minutes of metta after waking",
		"duration_days": 7,
		"start_date":    startDate,
		"metrics": []map[string]any{
			{"name": "State", "scale": []int{1, 7}},
			{"name": "Mental Clarity", "scale": []int{0, 10}},
		},
	}, cookie)
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("expected create experiment status 201, got %d: %s", response.StatusCode, readAPIError(t, response.Body))
	}

	payload := struct {
		Experiment map[string]any `json:"experiment"`
	}{}
	decodeJSON(t, response.Body, &payload)
	return payload.Experiment
}

func responseCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func decodeJSON(t *testing.T, body io.Reader, target any) {
	t.Helper()

	raw, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		t.Fatalf("decode response body %q: %v", raw, err)
	}
}

func readAPIError(t *testing.T, body io.Reader) string {
	t.Helper()

	payload := map[string]any{}
	decodeJSON(t, body, &payload)
	message, _ := payload["error"].(string)
	return message
}
