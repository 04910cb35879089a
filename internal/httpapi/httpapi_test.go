package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"pixelplates.org/internal/auth"
	"pixelplates.org/internal/generate"
	"pixelplates.org/internal/script"
)

// memUsers is an in-memory auth.UserStore for handler tests.
type memUsers struct {
	mu     sync.Mutex
	seq    int
	byID   map[string]auth.User
	byName map[string]string
}

func newMemUsers() *memUsers {
	return &memUsers{
		byID:   make(map[string]auth.User),
		byName: make(map[string]string),
	}
}

func (m *memUsers) Create(_ context.Context, u *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byName[u.Username]; ok {
		return auth.ErrAlreadyExists
	}
	m.seq++
	u.ID = fmt.Sprintf("user-%d", m.seq)
	u.CreatedAt = time.Now().UTC()
	m.byID[u.ID] = *u
	m.byName[u.Username] = u.ID
	return nil
}

func (m *memUsers) Find(_ context.Context, id string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byName[username]
	if !ok {
		return nil, auth.ErrNotFound
	}
	u := m.byID[id]
	return &u, nil
}

// memScripts is an in-memory script.Store. createErr, when set, makes every
// Create fail, for exercising the best-effort persistence path.
type memScripts struct {
	mu        sync.Mutex
	seq       int
	items     []script.Script
	createErr error
}

func (m *memScripts) Create(_ context.Context, s *script.Script) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if s.OwnerID == "" {
		return script.ErrInvalidInput
	}
	m.seq++
	s.ID = fmt.Sprintf("script-%d", m.seq)
	s.CreatedAt = time.Now().UTC()
	m.items = append(m.items, *s)
	return nil
}

func (m *memScripts) ListByOwner(_ context.Context, ownerID string, limit int) ([]script.Script, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []script.Script{}
	for i := len(m.items) - 1; i >= 0 && len(out) < limit; i-- {
		if m.items[i].OwnerID == ownerID {
			out = append(out, m.items[i])
		}
	}
	return out, nil
}

func (m *memScripts) all() []script.Script {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]script.Script(nil), m.items...)
}

// stubGenerator satisfies generate.Service with a programmable response.
type stubGenerator struct {
	mu   sync.Mutex
	last generate.Request
	fn   func(generate.Request) (generate.Result, error)
}

func (g *stubGenerator) Generate(_ context.Context, req generate.Request) (generate.Result, error) {
	g.mu.Lock()
	g.last = req
	g.mu.Unlock()
	if g.fn != nil {
		return g.fn(req)
	}
	content := fmt.Sprintf(`{"title":%q,"scenes":["open on a kitchen"]}`, "Script for "+req.Prompt)
	return generate.Result{
		Title:   "Script for " + req.Prompt,
		Content: json.RawMessage(content),
	}, nil
}

func (g *stubGenerator) lastRequest() generate.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

type testEnv struct {
	handler http.Handler
	users   *memUsers
	scripts *memScripts
	gen     *stubGenerator
	now     *time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	promptsDir := t.TempDir()
	writeTemplate(t, promptsDir, "prompt.txt", "You are a content-script writer.")
	writeTemplate(t, promptsDir, "prompt_cocktails.txt", "You write cocktail scripts.")

	now := time.Now().UTC()
	env := &testEnv{
		users:   newMemUsers(),
		scripts: &memScripts{},
		gen:     &stubGenerator{},
		now:     &now,
	}

	tokens, err := auth.NewTokens("test-secret",
		auth.WithTTL(time.Hour),
		auth.WithClock(func() time.Time { return *env.now }),
	)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}

	api := New(Config{
		Auth:      auth.NewService(env.users, tokens),
		Scripts:   env.scripts,
		Generator: env.gen,
		Prompts:   generate.NewLibrary(promptsDir),
		Version:   "test",
	})
	env.handler = api.Handler()
	return env
}

func writeTemplate(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
		t.Fatalf("write template %s: %v", name, err)
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) postForm(path, token string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.do(req)
}

func (e *testEnv) get(path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.do(req)
}

func (e *testEnv) register(t *testing.T, username, password string) string {
	t.Helper()
	rec := e.postForm("/api/register", "", url.Values{
		"username": {username},
		"password": {password},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("register %s: status %d, body %s", username, rec.Code, rec.Body.String())
	}
	var resp registerResponse
	decodeBody(t, rec, &resp)
	return resp.ID
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := e.postForm("/api/login", "", url.Values{
		"username": {username},
		"password": {password},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d, body %s", username, rec.Code, rec.Body.String())
	}
	var resp loginResponse
	decodeBody(t, rec, &resp)
	if resp.AccessToken == "" {
		t.Fatalf("login %s: empty access token", username)
	}
	return resp.AccessToken
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}
