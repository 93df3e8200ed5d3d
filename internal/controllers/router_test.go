package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"redirly/internal/authclient"
	"redirly/internal/entities"
	"redirly/internal/jwt"
	"redirly/internal/middleware"
	"redirly/internal/models"
	"redirly/internal/service"

	"github.com/gin-gonic/gin"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/time/rate"
)

const (
	testSecret = "test-secret"
	testUserID = "8d7c5b7e-2f0a-4bde-9c1a-7b0f5f3d1e11"
	testLinkID = "0b6f0c1e-9a54-4c1b-8f7e-2d3c4b5a6978"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeAuthService answers like a provider with a single account a@b.com/secret
type fakeAuthService struct {
	lastToken string
}

func (f *fakeAuthService) SignIn(_ context.Context, cr models.UserCredentials) models.AuthResult {
	if cr.Email == "a@b.com" && cr.Password == "secret" {
		return models.AuthResult{
			User:    &models.User{ID: testUserID, Email: cr.Email},
			Session: &models.Session{AccessToken: "access"},
		}
	}
	return models.AuthResult{Error: &models.AuthError{Message: "Invalid login credentials", Status: 400}}
}

func (f *fakeAuthService) SignUp(_ context.Context, cr models.UserCredentials) models.AuthResult {
	if cr.Email == "a@b.com" {
		return models.AuthResult{Error: &models.AuthError{Message: "User already registered", Status: 422}}
	}
	return models.AuthResult{User: &models.User{ID: testUserID, Email: cr.Email}}
}

func (f *fakeAuthService) OAuthLogin(ctx context.Context, p models.Provider) models.StatusResult {
	return models.StatusResult{Error: f.OAuthRedirect(ctx, p).Error}
}

func (f *fakeAuthService) OAuthRedirect(_ context.Context, p models.Provider) models.RedirectResult {
	if p != models.ProviderGitHub {
		return models.RedirectResult{Error: &models.AuthError{Message: "Unsupported provider", Status: 400}}
	}
	return models.RedirectResult{URL: "https://github.com/login/oauth/authorize?client_id=x"}
}

func (f *fakeAuthService) PasswordReset(_ context.Context, cr models.UserCredentials) models.StatusResult {
	return models.StatusResult{}
}

func (f *fakeAuthService) UpdateUser(ctx context.Context, _ models.UserCredentials) models.StatusResult {
	return f.session(ctx)
}

func (f *fakeAuthService) SignOut(ctx context.Context) models.StatusResult {
	return f.session(ctx)
}

func (f *fakeAuthService) session(ctx context.Context) models.StatusResult {
	token, ok := authclient.AccessTokenFromContext(ctx)
	if !ok {
		return models.StatusResult{Error: &models.AuthError{Message: "not signed in", Status: 401}}
	}
	f.lastToken = token
	return models.StatusResult{}
}

// fakeLinkService serves a single link with slug "docs"
type fakeLinkService struct {
	created *models.LinkRequest
}

func (f *fakeLinkService) link() *entities.Link {
	return &entities.Link{
		ID:     testLinkID,
		UserID: testUserID,
		URL:    "https://example.com/docs",
		Slug:   "docs",
		Meta:   &entities.LinkMeta{AndroidURL: "https://play.example.com/docs"},
	}
}

func (f *fakeLinkService) Create(_ context.Context, userID string, req *models.LinkRequest) (*models.LinkResponse, error) {
	if req.Slug != nil && *req.Slug == "docs" {
		return nil, service.ErrSlugTaken
	}
	if req.Slug != nil && *req.Slug == "x" {
		return nil, &service.ValidationError{Field: "slug", Message: "too short"}
	}
	f.created = req
	link := f.link()
	link.UserID = userID
	return &models.LinkResponse{Link: link, ShortURL: "https://rd.ly/docs"}, nil
}

func (f *fakeLinkService) Get(_ context.Context, id, userID string) (*models.LinkResponse, error) {
	if id != testLinkID || userID != testUserID {
		return nil, service.ErrLinkNotFound
	}
	return &models.LinkResponse{Link: f.link(), ShortURL: "https://rd.ly/docs"}, nil
}

func (f *fakeLinkService) List(_ context.Context, userID string) ([]*models.LinkResponse, error) {
	if userID != testUserID {
		return []*models.LinkResponse{}, nil
	}
	return []*models.LinkResponse{{Link: f.link(), ShortURL: "https://rd.ly/docs"}}, nil
}

func (f *fakeLinkService) Update(ctx context.Context, id, userID string, _ *models.LinkRequest) (*models.LinkResponse, error) {
	return f.Get(ctx, id, userID)
}

func (f *fakeLinkService) Delete(_ context.Context, id, userID string) error {
	if id != testLinkID || userID != testUserID {
		return service.ErrLinkNotFound
	}
	return nil
}

func (f *fakeLinkService) Status(_ context.Context, slug string, _ time.Time) (*models.LinkStatusResponse, error) {
	switch slug {
	case "docs":
		return &models.LinkStatusResponse{Slug: slug, Active: true}, nil
	case "broken":
		return nil, fmt.Errorf("connection reset")
	}
	return nil, service.ErrLinkNotFound
}

func (f *fakeLinkService) Resolve(_ context.Context, slug, userAgent string, _ time.Time) (*models.Destination, error) {
	switch slug {
	case "docs":
		if strings.Contains(userAgent, "Android") {
			return &models.Destination{URL: "https://play.example.com/docs", Platform: "android"}, nil
		}
		return &models.Destination{URL: "https://example.com/docs", Platform: "default"}, nil
	case "expired":
		return nil, service.ErrLinkInactive
	}
	return nil, service.ErrLinkNotFound
}

type testServer struct {
	router *gin.Engine
	auth   *fakeAuthService
	links  *fakeLinkService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	limiter := func() *middleware.RateLimiter {
		return middleware.NewRateLimiter(ctx, rate.Inf, 1)
	}
	auth := &fakeAuthService{}
	links := &fakeLinkService{}

	router := NewRouter(RouterConfig{
		Auth:            NewAuthController(auth),
		Links:           NewLinkController(links),
		QRCode:          NewQRCodeController("https://rd.ly"),
		JWT:             jwt.NewJWTService(testSecret, ""),
		Metrics:         http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { io.WriteString(w, "metrics") }),
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		GeneralLimiter:  limiter(),
		AuthLimiter:     limiter(),
		RedirectLimiter: limiter(),
	})
	return &testServer{router: router, auth: auth, links: links}
}

func (s *testServer) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func bearer(t *testing.T, sub string) map[string]string {
	t.Helper()
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwt.Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("invalid JSON %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("health = %d %s", rec.Code, rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "metrics" {
		t.Errorf("metrics = %d %s", rec.Code, rec.Body.String())
	}
}

func TestSignIn(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/auth/signin", `{"email":"a@b.com","password":"secret"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	ok := decode[map[string]any](t, rec)
	if ok["error"] != nil || ok["user"] == nil {
		t.Errorf("body = %v", ok)
	}

	rec = s.do(t, http.MethodPost, "/api/v1/auth/signin", `{"email":"a@b.com","password":"wrong"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	failed := decode[models.AuthResult](t, rec)
	if failed.User != nil || failed.Error == nil || failed.Error.Message != "Invalid login credentials" {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestSignIn_InvalidBody(t *testing.T) {
	s := newTestServer(t)
	for _, body := range []string{`{`, `{"email":"nope","password":"x"}`, `{"email":"a@b.com"}`} {
		rec := s.do(t, http.MethodPost, "/api/v1/auth/signin", body, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
}

func TestSignUp(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/auth/signup", `{"email":"new@user.com","password":"secret"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	result := decode[models.AuthResult](t, rec)
	if result.Error != nil || result.User == nil || result.User.Email != "new@user.com" {
		t.Errorf("body = %s", rec.Body.String())
	}

	rec = s.do(t, http.MethodPost, "/api/v1/auth/signup", `{"email":"a@b.com","password":"secret"}`, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("duplicate status = %d, want 422", rec.Code)
	}

	rec = s.do(t, http.MethodPost, "/api/v1/auth/signup", `{"email":"new@user.com","password":"123"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("short password status = %d, want 400", rec.Code)
	}
}

func TestOAuthLogin(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/auth/oauth/github", "", nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "https://github.com/") {
		t.Errorf("Location = %q", loc)
	}

	rec = s.do(t, http.MethodGet, "/api/v1/auth/oauth/myspace", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unsupported provider status = %d, want 400", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	if _, hasUser := body["user"]; hasUser || body["error"] == nil {
		t.Errorf("body = %v, want only error", body)
	}

	rec = s.do(t, http.MethodGet, "/api/v1/auth/oauth/Bad%20Provider", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed provider status = %d, want 400", rec.Code)
	}
}

func TestPasswordReset(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/auth/password-reset", `{"email":"a@b.com"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != `{"error":null}` {
		t.Errorf("body = %s, want {\"error\":null}", body)
	}
}

func TestUpdateUserAndSignOut_ForwardToken(t *testing.T) {
	s := newTestServer(t)
	auth := map[string]string{"Authorization": "Bearer session-token"}

	rec := s.do(t, http.MethodPut, "/api/v1/auth/user", `{"password":"new-secret"}`, auth)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if s.auth.lastToken != "session-token" {
		t.Errorf("token forwarded = %q", s.auth.lastToken)
	}

	rec = s.do(t, http.MethodPut, "/api/v1/auth/user", `{}`, auth)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty update status = %d, want 400", rec.Code)
	}

	for i := 0; i < 2; i++ {
		rec = s.do(t, http.MethodPost, "/api/v1/auth/signout", "", auth)
		if rec.Code != http.StatusOK {
			t.Errorf("signout #%d status = %d", i+1, rec.Code)
		}
	}

	rec = s.do(t, http.MethodPost, "/api/v1/auth/signout", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("signout without token status = %d, want 401", rec.Code)
	}
}

func TestLinks_RequireAuth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/v1/links", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestLinks_CRUD(t *testing.T) {
	s := newTestServer(t)
	auth := bearer(t, testUserID)

	rec := s.do(t, http.MethodPost, "/api/v1/links", `{"url":"https://example.com/docs","slug":"new-docs"}`, auth)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	created := decode[map[string]any](t, rec)
	if created["short_url"] != "https://rd.ly/docs" || created["user_id"] != testUserID {
		t.Errorf("created = %v", created)
	}

	rec = s.do(t, http.MethodPost, "/api/v1/links", `{"url":"https://example.com","slug":"docs"}`, auth)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate slug status = %d, want 409", rec.Code)
	}

	rec = s.do(t, http.MethodPost, "/api/v1/links", `{"url":"https://example.com","slug":"x"}`, auth)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid slug status = %d, want 400", rec.Code)
	}

	rec = s.do(t, http.MethodPost, "/api/v1/links", `{"slug":"nourl"}`, auth)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing url status = %d, want 400", rec.Code)
	}

	rec = s.do(t, http.MethodGet, "/api/v1/links", "", auth)
	if rec.Code != http.StatusOK || len(decode[[]map[string]any](t, rec)) != 1 {
		t.Errorf("list = %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/api/v1/links/"+testLinkID, "", auth)
	if rec.Code != http.StatusOK {
		t.Errorf("get status = %d", rec.Code)
	}

	rec = s.do(t, http.MethodGet, "/api/v1/links/not-a-uuid", "", auth)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get malformed id status = %d, want 404", rec.Code)
	}

	rec = s.do(t, http.MethodPut, "/api/v1/links/"+testLinkID, `{"url":"https://example.org"}`, auth)
	if rec.Code != http.StatusOK {
		t.Errorf("update status = %d", rec.Code)
	}

	other := bearer(t, "5f0c1a2b-3c4d-4e5f-8a9b-0c1d2e3f4a5b")
	rec = s.do(t, http.MethodDelete, "/api/v1/links/"+testLinkID, "", other)
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete by other status = %d, want 404", rec.Code)
	}

	rec = s.do(t, http.MethodDelete, "/api/v1/links/"+testLinkID, "", auth)
	if rec.Code != http.StatusOK {
		t.Errorf("delete status = %d", rec.Code)
	}
}

func TestRedirect(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/docs", "", nil)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "https://example.com/docs" {
		t.Errorf("redirect = %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = s.do(t, http.MethodGet, "/docs", "", map[string]string{"User-Agent": "Mozilla/5.0 (Linux; Android 14)"})
	if rec.Header().Get("Location") != "https://play.example.com/docs" {
		t.Errorf("android redirect = %q", rec.Header().Get("Location"))
	}

	if rec = s.do(t, http.MethodGet, "/expired", "", nil); rec.Code != http.StatusGone {
		t.Errorf("inactive status = %d, want 410", rec.Code)
	}
	if rec = s.do(t, http.MethodGet, "/missing", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing status = %d, want 404", rec.Code)
	}
}

func TestLinkStatus(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/status/docs", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"active":true`) {
		t.Errorf("status = %d %s", rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, "/api/v1/status/broken", "", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("broken status = %d, want 500", rec.Code)
	}
}

func TestQRCode(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/qrcode/docs?size=128", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("response is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 128 {
		t.Errorf("width = %d, want 128", img.Bounds().Dx())
	}

	if rec = s.do(t, http.MethodGet, "/api/v1/qrcode/docs?size=5000", "", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("oversized status = %d, want 400", rec.Code)
	}
}
