package impl_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"pacta/config"
	"pacta/internal/domain/entity"
	domainerrors "pacta/internal/domain/errors"
	"pacta/internal/domain/repository"
	"pacta/internal/domain/service"
	"pacta/internal/security/lockout"
	"pacta/internal/security/store"
	"pacta/internal/usecase"
	"pacta/internal/usecase/impl"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[string]*entity.User
	findErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entity.User)}
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findErr != nil {
		return nil, r.findErr
	}
	user, ok := r.users[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *user

	return &clone, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repository.ErrDuplicateIdentity
		}
	}
	user.ID = uuid.New()
	clone := *user
	r.users[user.Username] = &clone

	return nil
}

// fakeHasher uses a reversible marker instead of bcrypt to keep the tests
// fast; strength checking only enforces a minimum length.
type fakeHasher struct{}

func (fakeHasher) ValidateStrength(password string) error {
	if len(password) < 8 {
		return domainerrors.ErrPasswordStrength.WithDetails("Password must be at least 8 characters long")
	}

	return nil
}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Check(password, hash string) bool {
	return hash == "hashed:"+password
}

type fakeTokenService struct {
	mu     sync.Mutex
	issued map[string]*service.Claims
}

func newFakeTokenService() *fakeTokenService {
	return &fakeTokenService{issued: make(map[string]*service.Claims)}
}

func (s *fakeTokenService) issue(userID uuid.UUID, username, tokenType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := tokenType + "-" + username + "-" + uuid.NewString()
	s.issued[token] = &service.Claims{
		UserID:    userID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: username,
		},
	}

	return token, nil
}

func (s *fakeTokenService) IssueAccess(userID uuid.UUID, username string) (string, error) {
	return s.issue(userID, username, service.TokenTypeAccess)
}

func (s *fakeTokenService) IssueRefresh(userID uuid.UUID, username string) (string, error) {
	return s.issue(userID, username, service.TokenTypeRefresh)
}

func (s *fakeTokenService) Verify(token, expectedType string) (*service.Claims, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	claims, ok := s.issued[token]
	if !ok {
		return nil, domainerrors.ErrTokenInvalid
	}
	if claims.TokenType != expectedType {
		return nil, domainerrors.ErrTokenInvalid.WithDetails("unexpected token type")
	}

	return claims, nil
}

func (s *fakeTokenService) AccessTokenDuration() time.Duration  { return time.Hour }
func (s *fakeTokenService) RefreshTokenDuration() time.Duration { return 7 * 24 * time.Hour }

type authFixture struct {
	service usecase.AuthUsecase
	repo    *fakeUserRepo
	tokens  *fakeTokenService
	redis   *miniredis.Miniredis
}

func newAuthFixture(t *testing.T, guardStore store.GuardStore) *authFixture {
	t.Helper()

	repo := newFakeUserRepo()
	tokens := newFakeTokenService()
	cfg := &config.Config{Lockout: &config.LockoutConfig{Threshold: 5, Cooldown: 30 * time.Minute}}

	if guardStore == nil {
		guardStore = store.NewMemory()
	}

	srv := impl.NewAuthService(impl.AuthServiceParams{
		UserRepo:     repo,
		Hasher:       fakeHasher{},
		TokenService: tokens,
		Lockouts:     lockout.NewTracker(guardStore, cfg),
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return &authFixture{service: srv, repo: repo, tokens: tokens}
}

// newRedisAuthFixture backs the lockout tracker with miniredis so tests can
// fast-forward through the cooldown.
func newRedisAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	fixture := newAuthFixture(t, store.NewRedis(client))
	fixture.redis = mr

	return fixture
}

func (f *authFixture) addUser(t *testing.T, username, email, password string, active bool) *entity.User {
	t.Helper()

	user := &entity.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: "hashed:" + password,
		IsActive:     active,
	}
	f.repo.users[username] = user

	return user
}

func TestAuthServiceLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("successful login returns tokens and snapshot", func(t *testing.T) {
		fixture := newAuthFixture(t, nil)
		user := fixture.addUser(t, "alice", "alice@example.com", "Sup3r#Secret", true)

		result, err := fixture.service.Login(ctx, &usecase.LoginInput{
			Username: "alice",
			Password: "Sup3r#Secret",
			ClientID: "203.0.113.7",
		})
		require.NoError(t, err)
		assert.Equal(t, "Login successful", result.Message)
		assert.Equal(t, user.ID, result.User.ID)
		assert.Equal(t, "alice", result.User.Username)
		assert.True(t, strings.HasPrefix(result.Tokens.AccessToken, service.TokenTypeAccess+"-alice"))
		assert.True(t, strings.HasPrefix(result.Tokens.RefreshToken, service.TokenTypeRefresh+"-alice"))
	})

	t.Run("empty credentials rejected before any lookup", func(t *testing.T) {
		fixture := newAuthFixture(t, nil)
		fixture.repo.findErr = domainerrors.ErrStoreUnavailable // would surface if the lookup ran

		_, err := fixture.service.Login(ctx, &usecase.LoginInput{Username: "alice", ClientID: "c1"})
		require.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	})

	t.Run("unknown username matches wrong password wording", func(t *testing.T) {
		fixture := newAuthFixture(t, nil)
		fixture.addUser(t, "alice", "alice@example.com", "Sup3r#Secret", true)

		_, unknownErr := fixture.service.Login(ctx, &usecase.LoginInput{
			Username: "nobody", Password: "whatever", ClientID: "c1",
		})
		_, wrongErr := fixture.service.Login(ctx, &usecase.LoginInput{
			Username: "alice", Password: "not-the-password", ClientID: "c2",
		})
		require.ErrorIs(t, unknownErr, domainerrors.ErrInvalidCredentials)
		require.ErrorIs(t, wrongErr, domainerrors.ErrInvalidCredentials)

		var unknownApp, wrongApp domainerrors.AppError
		require.ErrorAs(t, unknownErr, &unknownApp)
		require.ErrorAs(t, wrongErr, &wrongApp)
		assert.Equal(t, wrongApp.Message(), unknownApp.Message())
	})

	t.Run("failure message carries remaining attempts", func(t *testing.T) {
		fixture := newAuthFixture(t, nil)
		fixture.addUser(t, "alice", "alice@example.com", "Sup3r#Secret", true)

		_, err := fixture.service.Login(ctx, &usecase.LoginInput{
			Username: "alice", Password: "wrong", ClientID: "c1",
		})
		var appErr domainerrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Contains(t, appErr.Message(), "4 attempts remaining")
	})

	t.Run("disabled account rejected despite correct password", func(t *testing.T) {
		fixture := newAuthFixture(t, nil)
		fixture.addUser(t, "bob", "bob@example.com", "Sup3r#Secret", false)

		_, err := fixture.service.Login(ctx, &usecase.LoginInput{
			Username: "bob", Password: "Sup3r#Secret", ClientID: "c1",
		})
		require.ErrorIs(t, err, domainerrors.ErrAccountDisabled)
	})

	t.Run("fifth failure locks even a subsequently correct password", func(t *testing.T) {
		fixture := newAuthFixture(t, nil)
		fixture.addUser(t, "alice", "alice@example.com", "Sup3r#Secret", true)

		for i := 0; i < 4; i++ {
			_, err := fixture.service.Login(ctx, &usecase.LoginInput{
				Username: "alice", Password: "wrong", ClientID: "c1",
			})
			require.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
		}

		_, err := fixture.service.Login(ctx, &usecase.LoginInput{
			Username: "alice", Password: "wrong", ClientID: "c1",
		})
		require.ErrorIs(t, err, domainerrors.ErrAccountLocked)

		_, err = fixture.service.Login(ctx, &usecase.LoginInput{
			Username: "alice", Password: "Sup3r#Secret", ClientID: "c1",
		})
		require.ErrorIs(t, err, domainerrors.ErrAccountLocked)
	})

	t.Run("lockout is per client", func(t *testing.T) {
		fixture := newAuthFixture(t, nil)
		fixture.addUser(t, "alice", "alice@example.com", "Sup3r#Secret", true)

		for i := 0; i < 5; i++ {
			_, _ = fixture.service.Login(ctx, &usecase.LoginInput{
				Username: "alice", Password: "wrong", ClientID: "locked-client",
			})
		}

		_, err := fixture.service.Login(ctx, &usecase.LoginInput{
			Username: "alice", Password: "Sup3r#Secret", ClientID: "other-client",
		})
		require.NoError(t, err)
	})

	t.Run("successful login resets the failure counter", func(t *testing.T) {
		fixture := newAuthFixture(t, nil)
		fixture.addUser(t, "alice", "alice@example.com", "Sup3r#Secret", true)

		for i := 0; i < 4; i++ {
			_, _ = fixture.service.Login(ctx, &usecase.LoginInput{
				Username: "alice", Password: "wrong", ClientID: "c1",
			})
		}
		_, err := fixture.service.Login(ctx, &usecase.LoginInput{
			Username: "alice", Password: "Sup3r#Secret", ClientID: "c1",
		})
		require.NoError(t, err)

		// The budget is fresh again after the reset.
		_, err = fixture.service.Login(ctx, &usecase.LoginInput{
			Username: "alice", Password: "wrong", ClientID: "c1",
		})
		var appErr domainerrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Contains(t, appErr.Message(), "4 attempts remaining")
	})

	t.Run("cooldown expiry unlocks the client", func(t *testing.T) {
		fixture := newRedisAuthFixture(t)
		fixture.addUser(t, "alice", "alice@example.com", "Sup3r#Secret", true)

		for i := 0; i < 5; i++ {
			_, _ = fixture.service.Login(ctx, &usecase.LoginInput{
				Username: "alice", Password: "wrong", ClientID: "c1",
			})
		}
		_, err := fixture.service.Login(ctx, &usecase.LoginInput{
			Username: "alice", Password: "Sup3r#Secret", ClientID: "c1",
		})
		require.ErrorIs(t, err, domainerrors.ErrAccountLocked)

		fixture.redis.FastForward(31 * time.Minute)

		result, err := fixture.service.Login(ctx, &usecase.LoginInput{
			Username: "alice", Password: "Sup3r#Secret", ClientID: "c1",
		})
		require.NoError(t, err)
		assert.Equal(t, "alice", result.User.Username)
	})
}

func TestAuthServiceRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("successful registration creates an active user and logs in", func(t *testing.T) {
		fixture := newAuthFixture(t, nil)

		result, err := fixture.service.Register(ctx, &usecase.RegisterInput{
			Username: "carol",
			Email:    "carol@example.com",
			Password: "Sup3r#Secret",
			ClientID: "c1",
		})
		require.NoError(t, err)
		assert.Equal(t, "Registration successful", result.Message)
		assert.NotEmpty(t, result.Tokens.AccessToken)
		assert.NotEmpty(t, result.Tokens.RefreshToken)

		stored, err := fixture.repo.FindByUsername(ctx, "carol")
		require.NoError(t, err)
		assert.True(t, stored.IsActive)
		assert.Equal(t, "hashed:Sup3r#Secret", stored.PasswordHash)
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		fixture := newAuthFixture(t, nil)

		_, err := fixture.service.Register(ctx, &usecase.RegisterInput{
			Username: "carol", Email: "carol@example.com",
		})
		require.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	})

	t.Run("malformed email rejected", func(t *testing.T) {
		fixture := newAuthFixture(t, nil)

		_, err := fixture.service.Register(ctx, &usecase.RegisterInput{
			Username: "carol", Email: "not-an-email", Password: "Sup3r#Secret",
		})
		require.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	})

	t.Run("weak password rejected before hashing", func(t *testing.T) {
		fixture := newAuthFixture(t, nil)

		_, err := fixture.service.Register(ctx, &usecase.RegisterInput{
			Username: "carol", Email: "carol@example.com", Password: "short",
		})
		require.ErrorIs(t, err, domainerrors.ErrPasswordStrength)
	})

	t.Run("duplicate identity maps to a single combined message", func(t *testing.T) {
		fixture := newAuthFixture(t, nil)
		fixture.addUser(t, "carol", "carol@example.com", "Sup3r#Secret", true)

		_, err := fixture.service.Register(ctx, &usecase.RegisterInput{
			Username: "carol", Email: "other@example.com", Password: "Sup3r#Secret",
		})
		require.ErrorIs(t, err, domainerrors.ErrDuplicateIdentity)

		_, err = fixture.service.Register(ctx, &usecase.RegisterInput{
			Username: "other", Email: "carol@example.com", Password: "Sup3r#Secret",
		})
		require.ErrorIs(t, err, domainerrors.ErrDuplicateIdentity)
	})
}

func TestAuthServiceRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("valid refresh token yields a new access token only", func(t *testing.T) {
		fixture := newAuthFixture(t, nil)
		user := fixture.addUser(t, "alice", "alice@example.com", "Sup3r#Secret", true)
		refreshToken, err := fixture.tokens.IssueRefresh(user.ID, user.Username)
		require.NoError(t, err)

		result, err := fixture.service.Refresh(ctx, refreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, result.Tokens.AccessToken)
		assert.Empty(t, result.Tokens.RefreshToken)

		_, err = fixture.tokens.Verify(result.Tokens.AccessToken, service.TokenTypeAccess)
		require.NoError(t, err)
	})

	t.Run("access token is not accepted as a refresh token", func(t *testing.T) {
		fixture := newAuthFixture(t, nil)
		user := fixture.addUser(t, "alice", "alice@example.com", "Sup3r#Secret", true)
		accessToken, err := fixture.tokens.IssueAccess(user.ID, user.Username)
		require.NoError(t, err)

		_, err = fixture.service.Refresh(ctx, accessToken)
		require.ErrorIs(t, err, domainerrors.ErrTokenInvalid)
	})

	t.Run("disabled user cannot refresh", func(t *testing.T) {
		fixture := newAuthFixture(t, nil)
		user := fixture.addUser(t, "bob", "bob@example.com", "Sup3r#Secret", true)
		refreshToken, err := fixture.tokens.IssueRefresh(user.ID, user.Username)
		require.NoError(t, err)

		fixture.repo.users["bob"].IsActive = false

		_, err = fixture.service.Refresh(ctx, refreshToken)
		require.ErrorIs(t, err, domainerrors.ErrAccountDisabled)
	})

	t.Run("refresh for a deleted subject fails", func(t *testing.T) {
		fixture := newAuthFixture(t, nil)
		user := fixture.addUser(t, "bob", "bob@example.com", "Sup3r#Secret", true)
		refreshToken, err := fixture.tokens.IssueRefresh(user.ID, user.Username)
		require.NoError(t, err)

		delete(fixture.repo.users, "bob")

		_, err = fixture.service.Refresh(ctx, refreshToken)
		require.ErrorIs(t, err, domainerrors.ErrTokenInvalid)
	})
}

func TestAuthServiceLoadSession(t *testing.T) {
	ctx := context.Background()

	t.Run("valid access token hydrates the session", func(t *testing.T) {
		fixture := newAuthFixture(t, nil)
		user := fixture.addUser(t, "alice", "alice@example.com", "Sup3r#Secret", true)
		accessToken, err := fixture.tokens.IssueAccess(user.ID, user.Username)
		require.NoError(t, err)

		session := fixture.service.LoadSession(ctx, accessToken)
		assert.True(t, session.Authenticated)
		assert.Equal(t, "alice", session.Username)
		assert.Equal(t, user.ID, session.UserID)
	})

	t.Run("missing cookie degrades to anonymous", func(t *testing.T) {
		fixture := newAuthFixture(t, nil)

		session := fixture.service.LoadSession(ctx, "")
		assert.False(t, session.Authenticated)
		assert.Empty(t, session.Username)
	})

	t.Run("garbage and wrong-type tokens degrade to anonymous", func(t *testing.T) {
		fixture := newAuthFixture(t, nil)
		user := fixture.addUser(t, "alice", "alice@example.com", "Sup3r#Secret", true)
		refreshToken, err := fixture.tokens.IssueRefresh(user.ID, user.Username)
		require.NoError(t, err)

		assert.False(t, fixture.service.LoadSession(ctx, "not-a-token").Authenticated)
		assert.False(t, fixture.service.LoadSession(ctx, refreshToken).Authenticated)
	})
}
