package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rmarchetti/stockroom-backend/internal/users"
	pkgauth "github.com/rmarchetti/stockroom-backend/pkg/auth"
	"github.com/rmarchetti/stockroom-backend/pkg/config"
	"github.com/rmarchetti/stockroom-backend/pkg/db/models"
	"github.com/rmarchetti/stockroom-backend/pkg/enums"
	pkgerrors "github.com/rmarchetti/stockroom-backend/pkg/errors"
	"github.com/rmarchetti/stockroom-backend/pkg/security"
	"gorm.io/gorm"
)

var (
	testJWTCfg = config.JWTConfig{
		Secret:                 "test-secret",
		Issuer:                 "stockroom-test",
		ExpirationMinutes:      15,
		RefreshTokenTTLMinutes: 60,
	}
	testPWCfg = config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
)

type fakeUserStore struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byEmail: map[string]*models.User{},
		byID:    map[uuid.UUID]*models.User{},
	}
}

func (f *fakeUserStore) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	user.ID = uuid.New()
	f.byEmail[user.Email] = user
	f.byID[user.ID] = user
	return user, nil
}

func (f *fakeUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := f.byEmail[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := f.byID[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeSessions struct {
	byAccessID map[string]string
	revoked    []string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{byAccessID: map[string]string{}}
}

func (f *fakeSessions) Generate(ctx context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	f.byAccessID[accessID] = token
	return token, nil
}

func (f *fakeSessions) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := f.byAccessID[oldAccessID]
	if !ok || stored != provided {
		return "", "", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
	}
	delete(f.byAccessID, oldAccessID)
	newID := uuid.NewString()
	token := "refresh-" + newID
	f.byAccessID[newID] = token
	return newID, token, nil
}

func (f *fakeSessions) Revoke(ctx context.Context, accessID string) error {
	delete(f.byAccessID, accessID)
	f.revoked = append(f.revoked, accessID)
	return nil
}

func newTestService(t *testing.T) (Service, *fakeUserStore, *fakeSessions) {
	t.Helper()
	store := newFakeUserStore()
	sessions := newFakeSessions()
	svc, err := NewService(store, sessions, testJWTCfg, testPWCfg)
	if err != nil {
		t.Fatal(err)
	}
	return svc, store, sessions
}

func TestRegisterAssignsDefaultRoleAndHashesPassword(t *testing.T) {
	svc, store, _ := newTestService(t)

	pair, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Dana",
		Email:    "  Dana@Example.COM ",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatal(err)
	}
	if pair.User.Role != enums.RoleUser {
		t.Fatalf("expected default user role, got %s", pair.User.Role)
	}
	if pair.User.Email != "dana@example.com" {
		t.Fatalf("expected normalized email, got %s", pair.User.Email)
	}

	stored := store.byEmail["dana@example.com"]
	if stored == nil {
		t.Fatal("user not persisted")
	}
	if !strings.HasPrefix(stored.PasswordHash, "$argon2id$") {
		t.Fatalf("password not hashed: %q", stored.PasswordHash)
	}
	if ok, _ := security.VerifyPassword("hunter2hunter2", stored.PasswordHash); !ok {
		t.Fatal("stored hash must verify the original password")
	}
}

func TestRegisterRejectsShortPasswordAndDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), RegisterInput{
		Name: "Dana", Email: "dana@example.com", Password: "short",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := svc.Register(context.Background(), RegisterInput{
		Name: "Dana", Email: "dana@example.com", Password: "hunter2hunter2",
	}); err != nil {
		t.Fatal(err)
	}
	_, err = svc.Register(context.Background(), RegisterInput{
		Name: "Other", Email: "DANA@example.com", Password: "hunter2hunter2",
	})
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLoginReturnsValidTokenPair(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.Register(context.Background(), RegisterInput{
		Name: "Dana", Email: "dana@example.com", Password: "hunter2hunter2",
	}); err != nil {
		t.Fatal(err)
	}

	pair, err := svc.Login(context.Background(), LoginInput{
		Email: "dana@example.com", Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatal(err)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTCfg, pair.AccessToken)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != pair.User.ID {
		t.Fatal("token subject must match the logged-in user")
	}
	if claims.Role != enums.RoleUser {
		t.Fatalf("unexpected role claim %s", claims.Role)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.Register(context.Background(), RegisterInput{
		Name: "Dana", Email: "dana@example.com", Password: "hunter2hunter2",
	}); err != nil {
		t.Fatal(err)
	}

	_, wrongPassword := svc.Login(context.Background(), LoginInput{
		Email: "dana@example.com", Password: "wrong-password",
	})
	_, unknownEmail := svc.Login(context.Background(), LoginInput{
		Email: "ghost@example.com", Password: "hunter2hunter2",
	})

	for _, err := range []error{wrongPassword, unknownEmail} {
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("expected unauthorized, got %v", err)
		}
		if typed.Message() != "invalid email or password" {
			t.Fatalf("credential errors must not leak which part failed: %q", typed.Message())
		}
	}
}

func TestRefreshRotatesSessionAndInvalidatesOldToken(t *testing.T) {
	svc, _, sessions := newTestService(t)
	pair, err := svc.Register(context.Background(), RegisterInput{
		Name: "Dana", Email: "dana@example.com", Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatal(err)
	}

	refreshed, err := svc.Refresh(context.Background(), pair.AccessToken, pair.RefreshToken)
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.AccessToken == pair.AccessToken {
		t.Fatal("expected a new access token")
	}
	if refreshed.RefreshToken == pair.RefreshToken {
		t.Fatal("expected a new refresh token")
	}

	// The old pair is now dead.
	if _, err := svc.Refresh(context.Background(), pair.AccessToken, pair.RefreshToken); err == nil {
		t.Fatal("old refresh token must be rejected after rotation")
	}
	if len(sessions.byAccessID) != 1 {
		t.Fatalf("expected exactly one live session, got %d", len(sessions.byAccessID))
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _, sessions := newTestService(t)
	pair, err := svc.Register(context.Background(), RegisterInput{
		Name: "Dana", Email: "dana@example.com", Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatal(err)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTCfg, pair.AccessToken)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Logout(context.Background(), claims.ID); err != nil {
		t.Fatal(err)
	}
	if len(sessions.byAccessID) != 0 {
		t.Fatal("session must be gone after logout")
	}

	// Refresh with the revoked session fails.
	if _, err := svc.Refresh(context.Background(), pair.AccessToken, pair.RefreshToken); err == nil {
		t.Fatal("refresh after logout must fail")
	}
}

func TestExpiredAccessTokenStillRefreshable(t *testing.T) {
	store := newFakeUserStore()
	sessions := newFakeSessions()
	svc, err := NewService(store, sessions, testJWTCfg, testPWCfg)
	if err != nil {
		t.Fatal(err)
	}

	// Mint in the past so the access token is already expired.
	impl := svc.(*service)
	impl.now = func() time.Time { return time.Now().Add(-time.Hour) }
	pair, err := svc.Register(context.Background(), RegisterInput{
		Name: "Dana", Email: "dana@example.com", Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatal(err)
	}
	impl.now = time.Now

	if _, err := pkgauth.ParseAccessToken(testJWTCfg, pair.AccessToken); err == nil {
		t.Fatal("precondition failed: token should be expired")
	}
	refreshed, err := svc.Refresh(context.Background(), pair.AccessToken, pair.RefreshToken)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := pkgauth.ParseAccessToken(testJWTCfg, refreshed.AccessToken); err != nil {
		t.Fatalf("refreshed token must validate: %v", err)
	}
}
