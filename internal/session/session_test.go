package session

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"marquee/internal/apperr"
	"marquee/internal/store"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

type AccountsTestSuite struct {
	suite.Suite

	ctx      context.Context
	accounts *Accounts
	now      time.Time
}

func (s *AccountsTestSuite) SetupTest() {
	s.ctx = context.Background()
	db, err := store.OpenMemory(zap.NewNop())
	s.Require().NoError(err)
	s.T().Cleanup(func() { db.Close() })

	s.accounts, err = NewAccounts(db, testSecret, time.Hour, zap.NewNop())
	s.Require().NoError(err)
	s.now = time.Now()
	s.accounts.now = func() time.Time { return s.now }
}

func (s *AccountsTestSuite) TestSignUpAndSignIn() {
	id, err := s.accounts.SignUp(s.ctx, "  Neo@Example.com ", "followthewhiterabbit")
	s.Require().NoError(err)
	s.Equal("neo@example.com", id.Email)
	s.NotEmpty(id.UserID)

	tok, err := s.accounts.SignIn(s.ctx, "neo@example.com", "followthewhiterabbit")
	s.Require().NoError(err)
	s.Equal("Bearer", tok.TokenType)
	s.Equal(id.UserID, tok.UserID)

	verified, err := s.accounts.Verify(s.ctx, tok.AccessToken)
	s.Require().NoError(err)
	s.Equal(id.UserID, verified.UserID)
	s.Equal("neo@example.com", verified.Email)
}

func (s *AccountsTestSuite) TestSignUpDuplicateEmail() {
	_, err := s.accounts.SignUp(s.ctx, "trinity@example.com", "password1")
	s.Require().NoError(err)

	_, err = s.accounts.SignUp(s.ctx, "TRINITY@example.com", "password2")
	s.True(apperr.IsConflict(err), "got %v", err)
}

func (s *AccountsTestSuite) TestSignUpValidation() {
	_, err := s.accounts.SignUp(s.ctx, "not-an-email", "password1")
	s.Equal(apperr.KindBadRequest, apperr.KindOf(err))

	_, err = s.accounts.SignUp(s.ctx, "morpheus@example.com", "short")
	s.Equal(apperr.KindBadRequest, apperr.KindOf(err))
}

func (s *AccountsTestSuite) TestSignInWrongPassword() {
	_, err := s.accounts.SignUp(s.ctx, "smith@example.com", "password1")
	s.Require().NoError(err)

	_, err = s.accounts.SignIn(s.ctx, "smith@example.com", "password2")
	s.ErrorIs(err, apperr.ErrNotAuthenticated)

	_, err = s.accounts.SignIn(s.ctx, "nobody@example.com", "password1")
	s.ErrorIs(err, apperr.ErrNotAuthenticated)
}

func (s *AccountsTestSuite) TestVerifyExpiredToken() {
	_, err := s.accounts.SignUp(s.ctx, "oracle@example.com", "cookies!")
	s.Require().NoError(err)
	tok, err := s.accounts.SignIn(s.ctx, "oracle@example.com", "cookies!")
	s.Require().NoError(err)

	s.now = s.now.Add(2 * time.Hour)
	_, err = s.accounts.Verify(s.ctx, tok.AccessToken)
	s.ErrorIs(err, apperr.ErrNotAuthenticated)
}

func (s *AccountsTestSuite) TestVerifyRejectsForeignSecret() {
	_, err := s.accounts.SignUp(s.ctx, "cypher@example.com", "steak123")
	s.Require().NoError(err)
	tok, err := s.accounts.SignIn(s.ctx, "cypher@example.com", "steak123")
	s.Require().NoError(err)

	other, err := NewAccounts(s.accounts.db, []byte("ffffffffffffffffffffffffffffffff"), time.Hour, nil)
	s.Require().NoError(err)
	_, err = other.Verify(s.ctx, tok.AccessToken)
	s.ErrorIs(err, apperr.ErrNotAuthenticated)

	_, err = s.accounts.Verify(s.ctx, "garbage")
	s.ErrorIs(err, apperr.ErrNotAuthenticated)
}

func TestAccountsSuite(t *testing.T) {
	suite.Run(t, new(AccountsTestSuite))
}

func TestNewAccountsRejectsShortSecret(t *testing.T) {
	_, err := NewAccounts(nil, []byte("short"), time.Hour, nil)
	assert.Error(t, err)
}

type stubVerifier struct {
	identity *Identity
	err      error
	tokens   []string
}

func (v *stubVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	v.tokens = append(v.tokens, token)
	return v.identity, v.err
}

func TestFileProviderLifecycle(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	verifier := &stubVerifier{identity: &Identity{UserID: "u1", Email: "neo@example.com"}}
	p := NewFileProvider(fs, "/data/marquee/session.json", verifier)

	_, err := p.Current(ctx)
	assert.ErrorIs(t, err, apperr.ErrNotAuthenticated)
	assert.False(t, IsAuthenticated(ctx, p))

	require.NoError(t, p.Save(&Token{AccessToken: "tok-1", UserID: "u1", Email: "neo@example.com"}))

	id, err := p.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", id.UserID)
	assert.Equal(t, []string{"tok-1"}, verifier.tokens)
	assert.True(t, IsAuthenticated(ctx, p))

	info, err := fs.Stat("/data/marquee/session.json")
	require.NoError(t, err)
	assert.Equal(t, "-rw-------", info.Mode().Perm().String())

	require.NoError(t, p.SignOut())
	require.NoError(t, p.SignOut())
	assert.False(t, IsAuthenticated(ctx, p))
}

func TestFileProviderCorruptFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/s.json", []byte("{nope"), 0600))

	p := NewFileProvider(fs, "/s.json", &stubVerifier{})
	_, err := p.Current(context.Background())
	assert.ErrorIs(t, err, apperr.ErrNotAuthenticated)
}

func TestStaticAndContextProviders(t *testing.T) {
	ctx := context.Background()

	_, err := Static{}.Current(ctx)
	assert.ErrorIs(t, err, apperr.ErrNotAuthenticated)

	id := &Identity{UserID: "u1"}
	got, err := Static{Identity: id}.Current(ctx)
	require.NoError(t, err)
	assert.Same(t, id, got)

	_, err = ContextProvider{}.Current(ctx)
	assert.ErrorIs(t, err, apperr.ErrNotAuthenticated)

	got, err = ContextProvider{}.Current(WithIdentity(ctx, id))
	require.NoError(t, err)
	assert.Same(t, id, got)
}

func TestLoadOrCreateSecret(t *testing.T) {
	fs := afero.NewMemMapFs()

	first, err := LoadOrCreateSecret(fs, "/data/marquee/secret")
	require.NoError(t, err)
	assert.Len(t, first, 64)

	second, err := LoadOrCreateSecret(fs, "/data/marquee/secret")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
