package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/companyhub/internal/common"
	"github.com/dmitrijs2005/companyhub/internal/logging"
	"github.com/dmitrijs2005/companyhub/internal/server/config"
	"github.com/dmitrijs2005/companyhub/internal/server/models"
	"github.com/dmitrijs2005/companyhub/internal/server/services"
)

type fakeUsers struct {
	registerFn func(ctx context.Context, name, email, password string) (*models.User, *services.AccessToken, error)
	loginFn    func(ctx context.Context, email, password string) (*services.AccessToken, error)
	logoutFn   func(ctx context.Context, id services.Identity) error
	authFn     func(ctx context.Context, token string) (*services.Identity, error)
	meFn       func(ctx context.Context, userID string) (*models.User, error)
}

func (f *fakeUsers) Register(ctx context.Context, name, email, password string) (*models.User, *services.AccessToken, error) {
	return f.registerFn(ctx, name, email, password)
}

func (f *fakeUsers) Login(ctx context.Context, email, password string) (*services.AccessToken, error) {
	return f.loginFn(ctx, email, password)
}

func (f *fakeUsers) Logout(ctx context.Context, id services.Identity) error {
	if f.logoutFn == nil {
		return nil
	}
	return f.logoutFn(ctx, id)
}

func (f *fakeUsers) Authenticate(ctx context.Context, token string) (*services.Identity, error) {
	if f.authFn != nil {
		return f.authFn(ctx, token)
	}
	switch token {
	case "good":
		return &services.Identity{UserID: "u1", TokenID: "jti-1", ExpiresAt: time.Now().Add(time.Hour)}, nil
	case "bob":
		return &services.Identity{UserID: "u2", TokenID: "jti-2", ExpiresAt: time.Now().Add(time.Hour)}, nil
	case "expired":
		return nil, common.ErrTokenExpired
	case "revoked":
		return nil, common.ErrTokenRevoked
	case "boom":
		return nil, errors.New("db down")
	default:
		return nil, common.ErrInvalidToken
	}
}

func (f *fakeUsers) Me(ctx context.Context, userID string) (*models.User, error) {
	return f.meFn(ctx, userID)
}

type fakeCompanies struct {
	listFn      func(ctx context.Context, userID string) ([]*models.Company, error)
	createFn    func(ctx context.Context, userID string, in services.CompanyInput) (*models.Company, error)
	getFn       func(ctx context.Context, userID, id string) (*models.Company, error)
	updateFn    func(ctx context.Context, userID, id string, p models.CompanyPatch) (*models.Company, error)
	deleteFn    func(ctx context.Context, userID, id string) error
	setActiveFn func(ctx context.Context, userID, id string) (*models.Company, error)
	currentFn   func(ctx context.Context, userID string) (*models.Company, error)
}

func (f *fakeCompanies) List(ctx context.Context, userID string) ([]*models.Company, error) {
	return f.listFn(ctx, userID)
}

func (f *fakeCompanies) Create(ctx context.Context, userID string, in services.CompanyInput) (*models.Company, error) {
	return f.createFn(ctx, userID, in)
}

func (f *fakeCompanies) Get(ctx context.Context, userID, id string) (*models.Company, error) {
	return f.getFn(ctx, userID, id)
}

func (f *fakeCompanies) Update(ctx context.Context, userID, id string, p models.CompanyPatch) (*models.Company, error) {
	return f.updateFn(ctx, userID, id, p)
}

func (f *fakeCompanies) Delete(ctx context.Context, userID, id string) error {
	return f.deleteFn(ctx, userID, id)
}

func (f *fakeCompanies) SetActive(ctx context.Context, userID, id string) (*models.Company, error) {
	return f.setActiveFn(ctx, userID, id)
}

func (f *fakeCompanies) Current(ctx context.Context, userID string) (*models.Company, error) {
	return f.currentFn(ctx, userID)
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

func testConfig() *config.Config {
	return &config.Config{
		HTTPAddr:        "127.0.0.1:0",
		MaxBodyBytes:    1 << 20,
		ShutdownTimeout: time.Second,
	}
}

func newTestServer(us *fakeUsers, cs *fakeCompanies) *Server {
	if us == nil {
		us = &fakeUsers{}
	}
	if cs == nil {
		cs = &fakeCompanies{}
	}
	return NewServer(testConfig(), logging.Nop(), us, cs, fakePinger{})
}

func do(t *testing.T, s *Server, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return m
}

func strptr(s string) *string { return &s }

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}
