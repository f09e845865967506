package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
	"github.com/shelfwise/shelfwise-core/internal/core/ports/driving"
)

// Mock services for testing

type mockAuthService struct {
	authenticateFn   func(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)
	validateTokenFn  func(ctx context.Context, token string) (*domain.AuthContext, error)
	refreshTokenFn   func(ctx context.Context, req domain.RefreshRequest) (*domain.LoginResponse, error)
	logoutFn         func(ctx context.Context, token string) error
	changePasswordFn func(ctx context.Context, userID string, req domain.ChangePasswordRequest) error
}

func (m *mockAuthService) Authenticate(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error) {
	if m.validateTokenFn != nil {
		return m.validateTokenFn(ctx, token)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) RefreshToken(ctx context.Context, req domain.RefreshRequest) (*domain.LoginResponse, error) {
	if m.refreshTokenFn != nil {
		return m.refreshTokenFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) Logout(ctx context.Context, token string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, token)
	}
	return nil
}

func (m *mockAuthService) LogoutAll(ctx context.Context, userID string) error {
	return nil
}

func (m *mockAuthService) ChangePassword(ctx context.Context, userID string, req domain.ChangePasswordRequest) error {
	if m.changePasswordFn != nil {
		return m.changePasswordFn(ctx, userID, req)
	}
	return nil
}

type mockUserService struct {
	registerFn func(ctx context.Context, req domain.RegisterRequest) (*domain.User, error)
	createFn   func(ctx context.Context, req driving.CreateUserRequest) (*domain.User, error)
	getFn      func(ctx context.Context, id string) (*domain.User, error)
	listFn     func(ctx context.Context) ([]*domain.User, error)
	updateFn   func(ctx context.Context, id string, req driving.UpdateUserRequest) (*domain.User, error)
	deleteFn   func(ctx context.Context, id string) error
}

func (m *mockUserService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserService) Create(ctx context.Context, req driving.CreateUserRequest) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserService) Get(ctx context.Context, id string) (*domain.User, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}

func (m *mockUserService) List(ctx context.Context) ([]*domain.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockUserService) Update(ctx context.Context, id string, req driving.UpdateUserRequest) (*domain.User, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockUserService) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockUserService) SetPassword(ctx context.Context, id string, password string) error {
	return nil
}

type mockBookService struct {
	titlesFn     func(ctx context.Context) ([]string, error)
	getFn        func(ctx context.Context, id int64) (*domain.Book, error)
	searchFn     func(ctx context.Context, filter domain.BookSearch) ([]*domain.BookSummary, error)
	priceRangeFn func(ctx context.Context, r domain.PriceRange) ([]*domain.BookSummary, error)
	topRatedFn   func(ctx context.Context, limit int) ([]*domain.BookSummary, error)
	categoriesFn func(ctx context.Context) ([]string, error)
}

func (m *mockBookService) Titles(ctx context.Context) ([]string, error) {
	if m.titlesFn != nil {
		return m.titlesFn(ctx)
	}
	return nil, nil
}

func (m *mockBookService) Get(ctx context.Context, id int64) (*domain.Book, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockBookService) Search(ctx context.Context, filter domain.BookSearch) ([]*domain.BookSummary, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockBookService) ByPriceRange(ctx context.Context, r domain.PriceRange) ([]*domain.BookSummary, error) {
	if m.priceRangeFn != nil {
		return m.priceRangeFn(ctx, r)
	}
	return nil, nil
}

func (m *mockBookService) TopRated(ctx context.Context, limit int) ([]*domain.BookSummary, error) {
	if m.topRatedFn != nil {
		return m.topRatedFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockBookService) Categories(ctx context.Context) ([]string, error) {
	if m.categoriesFn != nil {
		return m.categoriesFn(ctx)
	}
	return nil, nil
}

type mockStatsService struct {
	overviewFn   func(ctx context.Context) (*domain.StatsOverview, error)
	categoriesFn func(ctx context.Context) ([]domain.CategoryStats, error)
}

func (m *mockStatsService) Overview(ctx context.Context) (*domain.StatsOverview, error) {
	if m.overviewFn != nil {
		return m.overviewFn(ctx)
	}
	return nil, domain.ErrNotFound
}

func (m *mockStatsService) Categories(ctx context.Context) ([]domain.CategoryStats, error) {
	if m.categoriesFn != nil {
		return m.categoriesFn(ctx)
	}
	return nil, domain.ErrNotFound
}

type mockScrapeService struct {
	runFn func(ctx context.Context) (*domain.ScrapeResult, error)
}

func (m *mockScrapeService) Run(ctx context.Context) (*domain.ScrapeResult, error) {
	if m.runFn != nil {
		return m.runFn(ctx)
	}
	return nil, errors.New("not implemented")
}

type mockRecommendationService struct {
	trainFn   func(ctx context.Context) (*domain.TrainingResult, error)
	predictFn func(ctx context.Context, caller *domain.AuthContext, req domain.PredictRequest) ([]domain.Recommendation, error)
	historyFn func(ctx context.Context, caller *domain.AuthContext, userID string) ([]*domain.PreferenceView, error)
	statusFn  func(ctx context.Context) (*domain.ArtifactManifest, error)
}

func (m *mockRecommendationService) Train(ctx context.Context) (*domain.TrainingResult, error) {
	if m.trainFn != nil {
		return m.trainFn(ctx)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRecommendationService) Predict(ctx context.Context, caller *domain.AuthContext, req domain.PredictRequest) ([]domain.Recommendation, error) {
	if m.predictFn != nil {
		return m.predictFn(ctx, caller, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockRecommendationService) History(ctx context.Context, caller *domain.AuthContext, userID string) ([]*domain.PreferenceView, error) {
	if m.historyFn != nil {
		return m.historyFn(ctx, caller, userID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockRecommendationService) Status(ctx context.Context) (*domain.ArtifactManifest, error) {
	if m.statusFn != nil {
		return m.statusFn(ctx)
	}
	return nil, domain.ErrArtifactNotFound
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.err
}

type mockAccessLogStore struct {
	mu      sync.Mutex
	entries []*domain.AccessLogEntry
	err     error
}

func (m *mockAccessLogStore) Record(ctx context.Context, entry *domain.AccessLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAccessLogStore) recorded() []*domain.AccessLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.AccessLogEntry(nil), m.entries...)
}

// Test helpers

const (
	adminToken  = "admin-token"
	memberToken = "member-token"
)

var (
	adminAuth  = &domain.AuthContext{UserID: "admin-1", Username: "root", Role: domain.RoleAdmin, SessionID: "s-admin"}
	memberAuth = &domain.AuthContext{UserID: "user-1", Username: "reader", Role: domain.RoleMember, SessionID: "s-member"}
)

// tokenAuth accepts the two fixed test tokens
func tokenAuth() *mockAuthService {
	return &mockAuthService{
		validateTokenFn: func(ctx context.Context, token string) (*domain.AuthContext, error) {
			switch token {
			case adminToken:
				return adminAuth, nil
			case memberToken:
				return memberAuth, nil
			}
			return nil, domain.ErrTokenInvalid
		},
	}
}

type testServices struct {
	auth  *mockAuthService
	user  *mockUserService
	book  *mockBookService
	stats *mockStatsService
	scr   *mockScrapeService
	rec   *mockRecommendationService
}

func newTestServices() *testServices {
	return &testServices{
		auth:  tokenAuth(),
		user:  &mockUserService{},
		book:  &mockBookService{},
		stats: &mockStatsService{},
		scr:   &mockScrapeService{},
		rec:   &mockRecommendationService{},
	}
}

func (ts *testServices) server(infra Infra) *Server {
	return NewServer(DefaultConfig(), Services{
		Auth:           ts.auth,
		User:           ts.user,
		Book:           ts.book,
		Stats:          ts.stats,
		Scrape:         ts.scr,
		Recommendation: ts.rec,
	}, infra, nil)
}

func doRequest(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

// Health endpoints

func TestHandleHealth(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		redis      Pinger
		wantStatus int
	}{
		{name: "all healthy", db: &mockPinger{}, redis: &mockPinger{}, wantStatus: http.StatusOK},
		{name: "redis not configured", db: &mockPinger{}, wantStatus: http.StatusOK},
		{name: "database down", db: &mockPinger{err: errors.New("refused")}, wantStatus: http.StatusServiceUnavailable},
		{name: "redis down", db: &mockPinger{}, redis: &mockPinger{err: errors.New("refused")}, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			infra := Infra{DB: tt.db}
			if tt.redis != nil {
				infra.Redis = tt.redis
			}
			s := newTestServices().server(infra)

			rr := doRequest(t, s.Handler(), http.MethodGet, "/health", "", nil)
			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestHandleVersion(t *testing.T) {
	s := newTestServices().server(Infra{})

	rr := doRequest(t, s.Handler(), http.MethodGet, "/version", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	resp := decodeBody[VersionResponse](t, rr)
	if resp.Version != "dev" {
		t.Errorf("expected version dev, got %q", resp.Version)
	}
}

func TestHandleMetrics(t *testing.T) {
	s := newTestServices().server(Infra{})

	// One routed request so the API counters have a sample.
	doRequest(t, s.Handler(), http.MethodGet, "/version", "", nil)

	rr := doRequest(t, s.Handler(), http.MethodGet, "/metrics", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "shelfwise_api_requests_total") {
		t.Error("expected api request counter in metrics output")
	}
}

// Auth endpoints

func TestHandleRegister(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		body       any
		wantStatus int
	}{
		{name: "created", body: domain.RegisterRequest{Username: "reader", Password: "secret123"}, wantStatus: http.StatusCreated},
		{name: "invalid input", err: domain.ErrInvalidInput, body: domain.RegisterRequest{}, wantStatus: http.StatusBadRequest},
		{name: "username taken", err: domain.ErrAlreadyExists, body: domain.RegisterRequest{Username: "reader", Password: "secret123"}, wantStatus: http.StatusConflict},
		{name: "malformed body", body: "{not json", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServices()
			ts.user.registerFn = func(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				return &domain.User{ID: "user-1", Username: req.Username, Role: domain.RoleMember, Active: true}, nil
			}
			s := ts.server(Infra{})

			rr := doRequest(t, s.Handler(), http.MethodPost, "/api/v1/auth/register", "", tt.body)
			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
			if tt.wantStatus == http.StatusCreated && strings.Contains(rr.Body.String(), "password") {
				t.Error("response must not expose password data")
			}
		})
	}
}

func TestHandleLogin(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "success", wantStatus: http.StatusOK},
		{name: "bad credentials", err: domain.ErrInvalidCredentials, wantStatus: http.StatusUnauthorized},
		{name: "disabled account", err: domain.ErrUnauthorized, wantStatus: http.StatusUnauthorized},
		{name: "missing fields", err: domain.ErrInvalidInput, wantStatus: http.StatusBadRequest},
		{name: "store failure", err: errors.New("db down"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServices()
			ts.auth.authenticateFn = func(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				return &domain.LoginResponse{Token: "jwt", RefreshToken: "refresh"}, nil
			}
			s := ts.server(Infra{})

			rr := doRequest(t, s.Handler(), http.MethodPost, "/api/v1/auth/login", "",
				domain.LoginRequest{Username: "reader", Password: "secret123"})
			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
		})
	}
}

func TestHandleChangePassword(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "changed", wantStatus: http.StatusOK},
		{name: "weak password", err: domain.ErrInvalidInput, wantStatus: http.StatusBadRequest},
		{name: "wrong current password", err: domain.ErrInvalidCredentials, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServices()
			var gotUser string
			ts.auth.changePasswordFn = func(ctx context.Context, userID string, req domain.ChangePasswordRequest) error {
				gotUser = userID
				return tt.err
			}
			s := ts.server(Infra{})

			rr := doRequest(t, s.Handler(), http.MethodPut, "/api/v1/me/password", memberToken,
				domain.ChangePasswordRequest{CurrentPassword: "old", NewPassword: "new-secret"})
			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
			if gotUser != memberAuth.UserID {
				t.Errorf("expected password change for %s, got %q", memberAuth.UserID, gotUser)
			}
		})
	}
}

func TestHandleLogout(t *testing.T) {
	ts := newTestServices()
	var revoked string
	ts.auth.logoutFn = func(ctx context.Context, token string) error {
		revoked = token
		return nil
	}
	s := ts.server(Infra{})

	rr := doRequest(t, s.Handler(), http.MethodPost, "/api/v1/auth/logout", memberToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if revoked != memberToken {
		t.Errorf("expected token %q revoked, got %q", memberToken, revoked)
	}
}

// User management

func TestUserRoutes_RequireAdmin(t *testing.T) {
	s := newTestServices().server(Infra{})

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{name: "anonymous", wantStatus: http.StatusUnauthorized},
		{name: "member", token: memberToken, wantStatus: http.StatusForbidden},
		{name: "admin", token: adminToken, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, s.Handler(), http.MethodGet, "/api/v1/users", tt.token, nil)
			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
		})
	}
}

func TestHandleDeleteUser(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		err        error
		wantStatus int
	}{
		{name: "deleted", id: "user-1", wantStatus: http.StatusNoContent},
		{name: "self delete", id: adminAuth.UserID, wantStatus: http.StatusBadRequest},
		{name: "unknown user", id: "user-9", err: domain.ErrNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServices()
			ts.user.deleteFn = func(ctx context.Context, id string) error { return tt.err }
			s := ts.server(Infra{})

			rr := doRequest(t, s.Handler(), http.MethodDelete, "/api/v1/users/"+tt.id, adminToken, nil)
			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
		})
	}
}

// Catalog endpoints

func TestHandleGetBook(t *testing.T) {
	ts := newTestServices()
	ts.book.getFn = func(ctx context.Context, id int64) (*domain.Book, error) {
		if id == 7 {
			return &domain.Book{ID: 7, Title: "Sharp Objects", Genre: "Mystery", Price: 47.82}, nil
		}
		return nil, fmt.Errorf("book %d: %w", id, domain.ErrNotFound)
	}
	s := ts.server(Infra{})

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "found", path: "/api/v1/books/7", wantStatus: http.StatusOK},
		{name: "missing", path: "/api/v1/books/8", wantStatus: http.StatusNotFound},
		{name: "not a number", path: "/api/v1/books/abc", wantStatus: http.StatusBadRequest},
		{name: "non-positive", path: "/api/v1/books/0", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, s.Handler(), http.MethodGet, tt.path, memberToken, nil)
			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
		})
	}

	t.Run("requires authentication", func(t *testing.T) {
		rr := doRequest(t, s.Handler(), http.MethodGet, "/api/v1/books/7", "", nil)
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rr.Code)
		}
	})
}

func TestHandleSearchBooks(t *testing.T) {
	ts := newTestServices()
	var got domain.BookSearch
	ts.book.searchFn = func(ctx context.Context, filter domain.BookSearch) ([]*domain.BookSummary, error) {
		got = filter
		return nil, nil
	}
	s := ts.server(Infra{})

	rr := doRequest(t, s.Handler(), http.MethodGet, "/api/v1/books/search?title=light&genre=Poetry", memberToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if got.Title != "light" || got.Category != "Poetry" {
		t.Errorf("unexpected filter: %+v", got)
	}
	if body := strings.TrimSpace(rr.Body.String()); body != "[]" {
		t.Errorf("expected empty list, got %s", body)
	}
}

func TestHandlePriceRange(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		err        error
		wantStatus int
	}{
		{name: "valid", query: "?min=10&max=20", wantStatus: http.StatusOK},
		{name: "missing max", query: "?min=10", wantStatus: http.StatusBadRequest},
		{name: "not numbers", query: "?min=a&max=b", wantStatus: http.StatusBadRequest},
		{name: "inverted", query: "?min=20&max=10", err: domain.ErrInvalidInput, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServices()
			ts.book.priceRangeFn = func(ctx context.Context, r domain.PriceRange) ([]*domain.BookSummary, error) {
				return []*domain.BookSummary{{ID: 1, Price: 15}}, tt.err
			}
			s := ts.server(Infra{})

			rr := doRequest(t, s.Handler(), http.MethodGet, "/api/v1/books/price-range"+tt.query, memberToken, nil)
			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
		})
	}
}

func TestHandleTopRated(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantStatus int
	}{
		{name: "default limit", wantLimit: domain.DefaultTopRatedLimit, wantStatus: http.StatusOK},
		{name: "explicit limit", query: "?limit=3", wantLimit: 3, wantStatus: http.StatusOK},
		{name: "zero limit", query: "?limit=0", wantStatus: http.StatusBadRequest},
		{name: "garbage limit", query: "?limit=many", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServices()
			gotLimit := 0
			ts.book.topRatedFn = func(ctx context.Context, limit int) ([]*domain.BookSummary, error) {
				gotLimit = limit
				return nil, nil
			}
			s := ts.server(Infra{})

			rr := doRequest(t, s.Handler(), http.MethodGet, "/api/v1/books/top-rated"+tt.query, memberToken, nil)
			if rr.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
			if gotLimit != tt.wantLimit {
				t.Errorf("expected limit %d, got %d", tt.wantLimit, gotLimit)
			}
		})
	}
}

func TestHandleStats_EmptyCatalog(t *testing.T) {
	s := newTestServices().server(Infra{})

	for _, path := range []string{"/api/v1/stats/overview", "/api/v1/stats/categories"} {
		t.Run(path, func(t *testing.T) {
			rr := doRequest(t, s.Handler(), http.MethodGet, path, memberToken, nil)
			if rr.Code != http.StatusNotFound {
				t.Fatalf("expected status 404, got %d", rr.Code)
			}
			if resp := decodeBody[MessageResponse](t, rr); resp.Message == "" {
				t.Error("expected a message in the body")
			}
		})
	}
}

func TestHandleScrape(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		err        error
		wantStatus int
	}{
		{name: "member forbidden", token: memberToken, wantStatus: http.StatusForbidden},
		{name: "admin success", token: adminToken, wantStatus: http.StatusOK},
		{name: "already running", token: adminToken, err: domain.ErrServiceUnavailable, wantStatus: http.StatusConflict},
		{name: "site unreachable", token: adminToken, err: errors.New("dial tcp: refused"), wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServices()
			ts.scr.runFn = func(ctx context.Context) (*domain.ScrapeResult, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				return &domain.ScrapeResult{}, nil
			}
			s := ts.server(Infra{})

			rr := doRequest(t, s.Handler(), http.MethodPost, "/api/v1/scrape", tt.token, nil)
			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
		})
	}
}

// Recommender endpoints

func TestHandleTrain(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		result     *domain.TrainingResult
		err        error
		wantStatus int
	}{
		{name: "member forbidden", token: memberToken, wantStatus: http.StatusForbidden},
		{
			name:       "trained",
			token:      adminToken,
			result:     &domain.TrainingResult{Message: "ready", TotalRecords: 2, Generation: "01HZX"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "no data is still a success",
			token:      adminToken,
			result:     &domain.TrainingResult{Message: "no data"},
			wantStatus: http.StatusOK,
		},
		{name: "in progress", token: adminToken, err: domain.ErrTrainingInProgress, wantStatus: http.StatusConflict},
		{name: "store failure", token: adminToken, err: errors.New("disk full"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServices()
			ts.rec.trainFn = func(ctx context.Context) (*domain.TrainingResult, error) {
				return tt.result, tt.err
			}
			s := ts.server(Infra{})

			rr := doRequest(t, s.Handler(), http.MethodPost, "/api/v1/ml/training-data", tt.token, nil)
			if rr.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
			if tt.result != nil {
				resp := decodeBody[domain.TrainingResult](t, rr)
				if resp.TotalRecords != tt.result.TotalRecords {
					t.Errorf("expected %d records, got %d", tt.result.TotalRecords, resp.TotalRecords)
				}
			}
		})
	}
}

func TestHandlePredict(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		recs       []domain.Recommendation
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "recommendations",
			body:       domain.PredictRequest{Title: "Alpha"},
			recs:       []domain.Recommendation{{ID: 2, Title: "Beta", SimilarityScore: 0.93}},
			wantStatus: http.StatusOK,
		},
		{name: "no neighbours", body: domain.PredictRequest{Title: "Alpha"}, wantStatus: http.StatusOK},
		{name: "blank title", body: domain.PredictRequest{}, err: domain.ErrInvalidInput, wantStatus: http.StatusBadRequest},
		{name: "malformed body", body: "{", wantStatus: http.StatusBadRequest},
		{
			name:       "unknown title",
			body:       domain.PredictRequest{Title: "Nope"},
			err:        fmt.Errorf("%q: %w", "Nope", domain.ErrTitleNotFound),
			wantStatus: http.StatusBadRequest,
			wantError:  "title not found",
		},
		{
			name:       "untrained",
			body:       domain.PredictRequest{Title: "Alpha"},
			err:        domain.ErrArtifactNotFound,
			wantStatus: http.StatusInternalServerError,
			wantError:  "artifacts not found",
		},
		{
			name:       "stale artifacts",
			body:       domain.PredictRequest{Title: "Alpha"},
			err:        domain.ErrArtifactMismatch,
			wantStatus: http.StatusConflict,
			wantError:  "artifacts do not match corpus",
		},
		{
			name:       "history failure",
			body:       domain.PredictRequest{Title: "Alpha"},
			err:        fmt.Errorf("%w: record history: boom", domain.ErrInternal),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServices()
			var caller *domain.AuthContext
			ts.rec.predictFn = func(ctx context.Context, c *domain.AuthContext, req domain.PredictRequest) ([]domain.Recommendation, error) {
				caller = c
				return tt.recs, tt.err
			}
			s := ts.server(Infra{})

			rr := doRequest(t, s.Handler(), http.MethodPost, "/api/v1/ml/predictions", memberToken, tt.body)
			if rr.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, rr.Code, rr.Body.String())
			}
			if tt.wantError != "" {
				if resp := decodeBody[ErrorResponse](t, rr); resp.Error != tt.wantError {
					t.Errorf("expected error %q, got %q", tt.wantError, resp.Error)
				}
			}
			if tt.wantStatus == http.StatusOK {
				if caller == nil || caller.UserID != memberAuth.UserID {
					t.Errorf("expected caller %s, got %+v", memberAuth.UserID, caller)
				}
				recs := decodeBody[[]domain.Recommendation](t, rr)
				if len(recs) != len(tt.recs) {
					t.Errorf("expected %d recommendations, got %d", len(tt.recs), len(recs))
				}
			}
		})
	}
}

func TestHandleUserPreferences(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "own history", wantStatus: http.StatusOK},
		{name: "someone else's", err: domain.ErrForbidden, wantStatus: http.StatusForbidden},
		{name: "empty history", err: domain.ErrNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServices()
			var gotUser string
			ts.rec.historyFn = func(ctx context.Context, caller *domain.AuthContext, userID string) ([]*domain.PreferenceView, error) {
				gotUser = userID
				if tt.err != nil {
					return nil, tt.err
				}
				return []*domain.PreferenceView{{ID: 2, Title: "Beta", SimilarityScore: 0.9}}, nil
			}
			s := ts.server(Infra{})

			rr := doRequest(t, s.Handler(), http.MethodGet, "/api/v1/ml/user-preferences/user-1", memberToken, nil)
			if rr.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rr.Code)
			}
			if gotUser != "user-1" {
				t.Errorf("expected user-1, got %q", gotUser)
			}
		})
	}
}

func TestHandleModelStatus(t *testing.T) {
	ts := newTestServices()
	s := ts.server(Infra{})

	rr := doRequest(t, s.Handler(), http.MethodGet, "/api/v1/ml/status", memberToken, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 before training, got %d", rr.Code)
	}

	ts.rec.statusFn = func(ctx context.Context) (*domain.ArtifactManifest, error) {
		return &domain.ArtifactManifest{Generation: "01HZX", Rows: 4, Terms: 12}, nil
	}
	rr = doRequest(t, s.Handler(), http.MethodGet, "/api/v1/ml/status", memberToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if m := decodeBody[domain.ArtifactManifest](t, rr); m.Generation != "01HZX" || m.Rows != 4 {
		t.Errorf("unexpected manifest: %+v", m)
	}
}
