package service

import (
	"context"
	"errors"
	"testing"
	"time"

	commonerrors "blogspace/internal/common/errors"
	"blogspace/internal/common/jwtverify"
	"blogspace/internal/common/logger"
	userdomain "blogspace/internal/user/domain"
	userrepo "blogspace/internal/user/repository"
)

const testJWTSecret = "test-secret-key-0123456789abcdef"

type mockUserRepo struct {
	createFunc      func(ctx context.Context, user userdomain.User) error
	findByEmailFunc func(ctx context.Context, email string) (userdomain.User, error)
	findByIDFunc    func(ctx context.Context, id userdomain.ID) (userdomain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user userdomain.User) error {
	return m.createFunc(ctx, user)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (userdomain.User, error) {
	return m.findByEmailFunc(ctx, email)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id userdomain.ID) (userdomain.User, error) {
	return m.findByIDFunc(ctx, id)
}

type mockHasher struct {
	hashFunc    func(password string) (string, error)
	compareFunc func(hash, password string) error
}

func (m *mockHasher) Hash(password string) (string, error) {
	return m.hashFunc(password)
}

func (m *mockHasher) Compare(hash string, password string) error {
	return m.compareFunc(hash, password)
}

type mockIDGenerator struct {
	newIDFunc func() (string, error)
}

func (m *mockIDGenerator) NewID() (string, error) {
	return m.newIDFunc()
}

func setupAuthService(t *testing.T) (*AuthService, *mockUserRepo, *mockHasher, *mockIDGenerator) {
	_ = t
	repo := &mockUserRepo{}
	hasher := &mockHasher{
		hashFunc:    func(password string) (string, error) { return "hashed:" + password, nil },
		compareFunc: func(hash, password string) error { return nil },
	}
	idGen := &mockIDGenerator{
		newIDFunc: func() (string, error) { return "id-1", nil },
	}

	log, _ := logger.New("", "test", "info")

	svc := NewAuthService(repo, hasher, idGen, testJWTSecret, time.Hour, log)
	svc.now = func() time.Time {
		return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	}

	return svc, repo, hasher, idGen
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, repo, _, _ := setupAuthService(t)
	svc.now = time.Now

	var created userdomain.User
	repo.createFunc = func(ctx context.Context, user userdomain.User) error {
		created = user
		return nil
	}

	result, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "correct horse",
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created.Username != "alice" || created.Email != "alice@example.com" {
		t.Errorf("expected stored user fields, got %+v", created)
	}
	if created.PasswordHash != "hashed:correct horse" {
		t.Errorf("expected hashed password stored, got %q", created.PasswordHash)
	}
	if result.User.ID != "id-1" {
		t.Errorf("expected user id id-1, got %s", result.User.ID)
	}
	if result.Token == "" {
		t.Fatal("expected a token to be issued")
	}

	claims, err := jwtverify.ParseToken(result.Token, []byte(testJWTSecret))
	if err != nil {
		t.Fatalf("expected issued token to verify, got %v", err)
	}
	if claims.UserID != "id-1" || claims.Username != "alice" {
		t.Errorf("expected token claims for alice, got %+v", claims)
	}
}

func TestAuthService_Register_UsernameTaken(t *testing.T) {
	svc, repo, _, _ := setupAuthService(t)

	repo.createFunc = func(ctx context.Context, user userdomain.User) error {
		return userrepo.ErrUsernameAlreadyExists
	}

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "pw",
	})

	if !errors.Is(err, commonerrors.ErrUsernameTaken) {
		t.Fatalf("expected username taken error, got %v", err)
	}
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	svc, repo, _, _ := setupAuthService(t)

	repo.createFunc = func(ctx context.Context, user userdomain.User) error {
		return userrepo.ErrEmailAlreadyExists
	}

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: "pw",
	})

	if !errors.Is(err, commonerrors.ErrEmailTaken) {
		t.Fatalf("expected email taken error, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, repo, hasher, _ := setupAuthService(t)
	svc.now = time.Now

	repo.findByEmailFunc = func(ctx context.Context, email string) (userdomain.User, error) {
		return userdomain.User{
			ID:           "user-7",
			Username:     "bob",
			Email:        email,
			PasswordHash: "stored-hash",
		}, nil
	}

	var comparedHash, comparedPassword string
	hasher.compareFunc = func(hash, password string) error {
		comparedHash, comparedPassword = hash, password
		return nil
	}

	result, err := svc.Login(context.Background(), LoginInput{
		Email:    "bob@example.com",
		Password: "secret",
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if comparedHash != "stored-hash" || comparedPassword != "secret" {
		t.Errorf("expected stored hash compared against the given password")
	}
	if result.User.Username != "bob" {
		t.Errorf("expected bob, got %s", result.User.Username)
	}

	claims, err := jwtverify.ParseToken(result.Token, []byte(testJWTSecret))
	if err != nil {
		t.Fatalf("expected issued token to verify, got %v", err)
	}
	if claims.UserID != "user-7" {
		t.Errorf("expected token subject user-7, got %s", claims.UserID)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc, repo, _, _ := setupAuthService(t)

	repo.findByEmailFunc = func(ctx context.Context, email string) (userdomain.User, error) {
		return userdomain.User{}, userrepo.ErrUserNotFound
	}

	_, err := svc.Login(context.Background(), LoginInput{
		Email:    "nobody@example.com",
		Password: "pw",
	})

	if !errors.Is(err, commonerrors.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, repo, hasher, _ := setupAuthService(t)

	repo.findByEmailFunc = func(ctx context.Context, email string) (userdomain.User, error) {
		return userdomain.User{ID: "user-7", PasswordHash: "stored-hash"}, nil
	}
	hasher.compareFunc = func(hash, password string) error {
		return errors.New("hash mismatch")
	}

	_, err := svc.Login(context.Background(), LoginInput{
		Email:    "bob@example.com",
		Password: "wrong",
	})

	if !errors.Is(err, commonerrors.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestAuthService_TokenExpiry(t *testing.T) {
	svc, repo, _, _ := setupAuthService(t)

	repo.createFunc = func(ctx context.Context, user userdomain.User) error { return nil }

	result, err := svc.Register(context.Background(), RegisterInput{
		Username: "carol",
		Email:    "carol@example.com",
		Password: "pw",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Issued against a clock fixed in 2024 with a 1h TTL, so the token is
	// already expired relative to the real clock the verifier uses.
	if _, err := jwtverify.ParseToken(result.Token, []byte(testJWTSecret)); err == nil {
		t.Fatal("expected an expired token to be rejected")
	}
}
