package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/01moynul/items-api/internal/auth"
	"github.com/01moynul/items-api/internal/database"
	"github.com/01moynul/items-api/internal/handlers"
	"github.com/01moynul/items-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// memDB is a minimal in-memory stand-in for both stores.
type memDB struct {
	mu    sync.Mutex
	items []models.Item
	users []models.User
}

func (m *memDB) Insert(_ context.Context, item *models.Item) (*models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := *models.NewItem(int64(len(m.items)+1), item.Name, item.IsDeleted, item.UID)
	m.items = append(m.items, row)
	return &row, nil
}

func (m *memDB) ListByOwner(_ context.Context, uid int64) ([]*models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Item{}
	for _, row := range m.items {
		if row.UID == uid && !row.IsDeleted {
			out = append(out, &row)
		}
	}
	return out, nil
}

func (m *memDB) FindByID(_ context.Context, id int64) (*models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id < 1 || id > int64(len(m.items)) || m.items[id-1].IsDeleted {
		return nil, nil
	}
	row := m.items[id-1]
	return &row, nil
}

func (m *memDB) UpdateOwned(_ context.Context, id, uid int64, name string) (*models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id < 1 || id > int64(len(m.items)) {
		return nil, nil
	}
	row := &m.items[id-1]
	if row.IsDeleted || row.UID != uid {
		return nil, nil
	}
	row.Name = name
	out := *row
	return &out, nil
}

func (m *memDB) SoftDeleteOwned(_ context.Context, id, uid int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id < 1 || id > int64(len(m.items)) {
		return false, nil
	}
	row := &m.items[id-1]
	if row.IsDeleted || row.UID != uid {
		return false, nil
	}
	row.IsDeleted = true
	return true, nil
}

type memUsers struct{ db *memDB }

func (u memUsers) Insert(_ context.Context, email, hash string) (*models.User, error) {
	u.db.mu.Lock()
	defer u.db.mu.Unlock()
	for _, existing := range u.db.users {
		if existing.Email == email {
			return nil, database.ErrDuplicateEmail
		}
	}
	user := models.User{ID: int64(len(u.db.users) + 1), Email: email, PasswordHash: hash}
	u.db.users = append(u.db.users, user)
	return &user, nil
}

func (u memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	u.db.mu.Lock()
	defer u.db.mu.Unlock()
	for _, existing := range u.db.users {
		if existing.Email == email {
			user := existing
			return &user, nil
		}
	}
	return nil, nil
}

func (m *memDB) PingContext(context.Context) error { return nil }

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logrus.New()
	log.SetOutput(io.Discard)

	db := &memDB{}
	issuer := auth.NewIssuer("test-secret", time.Hour)
	h := &handlers.Handlers{Items: db, Users: memUsers{db: db}, Tokens: issuer, DB: db}
	srv := httptest.NewServer(SetupRouter(h, Options{
		Log:            log,
		Tokens:         issuer,
		AllowedOrigins: []string{"http://localhost:5173"},
	}))
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path, token, body string) (int, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, string(b)
}

func register(t *testing.T, srv *httptest.Server, email string) string {
	t.Helper()
	status, body := call(t, srv, http.MethodPost, "/auth/register", "", `{"email":"`+email+`","password":"password123"}`)
	if status != http.StatusCreated {
		t.Fatalf("register %s = %d %s", email, status, body)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal([]byte(body), &out); err != nil || out.Token == "" {
		t.Fatalf("register body %q: %v", body, err)
	}
	return out.Token
}

func TestItemScenario(t *testing.T) {
	srv := newServer(t)
	token := register(t, srv, "owner@example.com")

	status, body := call(t, srv, http.MethodPost, "/items", token, `{"name":"test_item","is_deleted":false}`)
	if status != http.StatusCreated {
		t.Fatalf("POST /items = %d %s", status, body)
	}
	var created models.Item
	if err := json.Unmarshal([]byte(body), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == 0 || created.Name != "test_item" || created.IsDeleted {
		t.Fatalf("created = %+v", created)
	}
	path := "/items/" + strconv.FormatInt(created.ID, 10)

	if status, body = call(t, srv, http.MethodGet, path, "Bearer "+token, ""); status != http.StatusOK || !strings.Contains(body, `"name":"test_item"`) {
		t.Fatalf("GET = %d %s", status, body)
	}
	if status, body = call(t, srv, http.MethodPut, path, token, `{"name":"test_item_2","is_deleted":false}`); status != http.StatusOK || !strings.Contains(body, `"name":"test_item_2"`) {
		t.Fatalf("PUT = %d %s", status, body)
	}
	if status, body = call(t, srv, http.MethodGet, path, token, ""); status != http.StatusOK || !strings.Contains(body, `"name":"test_item_2"`) {
		t.Fatalf("GET after PUT = %d %s", status, body)
	}
	if status, _ = call(t, srv, http.MethodDelete, path, token, ""); status != http.StatusOK {
		t.Fatalf("DELETE = %d", status)
	}
	if status, _ = call(t, srv, http.MethodGet, path, token, ""); status != http.StatusBadRequest {
		t.Fatalf("GET after DELETE = %d, want 400", status)
	}
	if status, _ = call(t, srv, http.MethodDelete, path, token, ""); status != http.StatusBadRequest {
		t.Fatalf("second DELETE = %d, want 400", status)
	}
}

func TestOtherUsersItems(t *testing.T) {
	srv := newServer(t)
	owner := register(t, srv, "owner@example.com")
	other := register(t, srv, "other@example.com")

	call(t, srv, http.MethodPost, "/items", owner, `{"name":"private"}`)

	if status, body := call(t, srv, http.MethodGet, "/items", other, ""); status != http.StatusOK || strings.TrimSpace(body) != "[]" {
		t.Fatalf("other GET /items = %d %s, want 200 []", status, body)
	}
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		status, body := call(t, srv, method, "/items/1", other, `{"name":"mine now"}`)
		if status != http.StatusForbidden {
			t.Errorf("%s by other user = %d %s, want 403", method, status, body)
		}
	}
}

func TestPublicRoutes(t *testing.T) {
	srv := newServer(t)
	if status, _ := call(t, srv, http.MethodGet, "/ping", "", ""); status != http.StatusOK {
		t.Errorf("GET /ping = %d", status)
	}
	if status, _ := call(t, srv, http.MethodGet, "/health", "", ""); status != http.StatusOK {
		t.Errorf("GET /health = %d", status)
	}
	if status, _ := call(t, srv, http.MethodGet, "/items", "", ""); status != http.StatusUnauthorized {
		t.Errorf("GET /items without token = %d, want 401", status)
	}
	if status, _ := call(t, srv, http.MethodGet, "/items", "garbage", ""); status != http.StatusUnauthorized {
		t.Errorf("GET /items with bad token = %d, want 401", status)
	}
}
