package services

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/companyhub/internal/common"
	"github.com/dmitrijs2005/companyhub/internal/dbx"
	"github.com/dmitrijs2005/companyhub/internal/server/config"
	"github.com/dmitrijs2005/companyhub/internal/server/models"
	"github.com/dmitrijs2005/companyhub/internal/server/repositories/companies"
	"github.com/dmitrijs2005/companyhub/internal/server/repositories/revokedtokens"
	"github.com/dmitrijs2005/companyhub/internal/server/repositories/users"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

// --- helpers ---

// newTxDB returns a real database handle so dbx.WithTx can begin and commit;
// the fake repositories below ignore it.
func newTxDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("sql.Open error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                   "k",
		AccessTokenValidityDuration: time.Hour,
		BcryptCost:                  bcrypt.MinCost,
	}
}

// store is an in-memory stand-in for the database shared by the fake repositories.
type store struct {
	mu        sync.Mutex
	users     map[string]*models.User
	companies map[string]*models.Company
	seq       map[string]int
	nextSeq   int
	revoked   map[string]*models.RevokedToken
	fail      map[string]error
	calls     []string
}

func newStore() *store {
	return &store{
		users:     map[string]*models.User{},
		companies: map[string]*models.Company{},
		seq:       map[string]int{},
		revoked:   map[string]*models.RevokedToken{},
		fail:      map[string]error{},
	}
}

func (s *store) enter(method string) error {
	s.calls = append(s.calls, method)
	return s.fail[method]
}

func (s *store) addUser(name, email string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &models.User{ID: uuid.NewString(), Name: name, Email: email}
	s.users[u.ID] = u
	return u
}

func (s *store) activeOf(userID string) *string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.users[userID].ActiveCompanyID; p != nil {
		v := *p
		return &v
	}
	return nil
}

type fakeUsers struct{ s *store }

func (f *fakeUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.enter("Users.Create"); err != nil {
		return nil, err
	}
	for _, existing := range f.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return nil, common.ErrAlreadyExists
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	f.s.users[u.ID] = &cp
	return u, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.enter("Users.GetByEmail"); err != nil {
		return nil, err
	}
	for _, u := range f.s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.enter("Users.GetByID"); err != nil {
		return nil, err
	}
	u, ok := f.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) SetActiveCompanyIfNone(ctx context.Context, userID, companyID string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.enter("Users.SetActiveCompanyIfNone"); err != nil {
		return err
	}
	if u, ok := f.s.users[userID]; ok && u.ActiveCompanyID == nil {
		u.ActiveCompanyID = &companyID
	}
	return nil
}

func (f *fakeUsers) SetActiveCompany(ctx context.Context, userID, companyID string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.enter("Users.SetActiveCompany"); err != nil {
		return err
	}
	if u, ok := f.s.users[userID]; ok {
		u.ActiveCompanyID = &companyID
	}
	return nil
}

func (f *fakeUsers) ClearActiveCompanyIf(ctx context.Context, userID, companyID string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.enter("Users.ClearActiveCompanyIf"); err != nil {
		return err
	}
	if u, ok := f.s.users[userID]; ok && u.ActiveCompanyID != nil && *u.ActiveCompanyID == companyID {
		u.ActiveCompanyID = nil
	}
	return nil
}

type fakeCompanies struct{ s *store }

func (f *fakeCompanies) Create(ctx context.Context, c *models.Company) (*models.Company, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.enter("Companies.Create"); err != nil {
		return nil, err
	}
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	f.s.companies[c.ID] = &cp
	f.s.nextSeq++
	f.s.seq[c.ID] = f.s.nextSeq
	return c, nil
}

func (f *fakeCompanies) ListByOwner(ctx context.Context, userID string) ([]*models.Company, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.enter("Companies.ListByOwner"); err != nil {
		return nil, err
	}
	out := make([]*models.Company, 0)
	for _, c := range f.s.companies {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return f.s.seq[out[i].ID] < f.s.seq[out[j].ID] })
	return out, nil
}

func (f *fakeCompanies) GetOwned(ctx context.Context, userID, id string) (*models.Company, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.enter("Companies.GetOwned"); err != nil {
		return nil, err
	}
	c, ok := f.s.companies[id]
	if !ok || c.UserID != userID {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCompanies) Update(ctx context.Context, userID, id string, p models.CompanyPatch) (*models.Company, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.enter("Companies.Update"); err != nil {
		return nil, err
	}
	c, ok := f.s.companies[id]
	if !ok || c.UserID != userID {
		return nil, common.ErrorNotFound
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.SetAddress {
		c.Address = p.Address
	}
	if p.SetIndustry {
		c.Industry = p.Industry
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCompanies) DeleteOwned(ctx context.Context, userID, id string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.enter("Companies.DeleteOwned"); err != nil {
		return err
	}
	c, ok := f.s.companies[id]
	if !ok || c.UserID != userID {
		return common.ErrorNotFound
	}
	delete(f.s.companies, id)
	return nil
}

func (f *fakeCompanies) GetActive(ctx context.Context, userID string) (*models.Company, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.enter("Companies.GetActive"); err != nil {
		return nil, err
	}
	u, ok := f.s.users[userID]
	if !ok || u.ActiveCompanyID == nil {
		return nil, common.ErrNoActiveCompany
	}
	c, ok := f.s.companies[*u.ActiveCompanyID]
	if !ok || c.UserID != userID {
		return nil, common.ErrNoActiveCompany
	}
	cp := *c
	return &cp, nil
}

type fakeRevoked struct{ s *store }

func (f *fakeRevoked) Create(ctx context.Context, t *models.RevokedToken) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.enter("RevokedTokens.Create"); err != nil {
		return err
	}
	if _, ok := f.s.revoked[t.JTI]; !ok {
		cp := *t
		f.s.revoked[t.JTI] = &cp
	}
	return nil
}

func (f *fakeRevoked) Exists(ctx context.Context, jti string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.enter("RevokedTokens.Exists"); err != nil {
		return false, err
	}
	_, ok := f.s.revoked[jti]
	return ok, nil
}

func (f *fakeRevoked) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.enter("RevokedTokens.DeleteExpired"); err != nil {
		return 0, err
	}
	var n int64
	for k, v := range f.s.revoked {
		if !v.ExpiresAt.After(now) {
			delete(f.s.revoked, k)
			n++
		}
	}
	return n, nil
}

type fakeRepoManager struct{ s *store }

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository          { return &fakeUsers{m.s} }
func (m *fakeRepoManager) Companies(db dbx.DBTX) companies.Repository  { return &fakeCompanies{m.s} }
func (m *fakeRepoManager) RevokedTokens(db dbx.DBTX) revokedtokens.Repository {
	return &fakeRevoked{m.s}
}
