package auth

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/florista/bouquet-bff/internal/backend"
	"github.com/florista/bouquet-bff/internal/backend/backendtest"
	pkgAuth "github.com/florista/bouquet-bff/pkg/auth"
	"github.com/florista/bouquet-bff/pkg/auth/session"
	"github.com/florista/bouquet-bff/pkg/config"
	"github.com/florista/bouquet-bff/pkg/enums"
	pkgerrors "github.com/florista/bouquet-bff/pkg/errors"
)

var testJWT = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "bouquet-bff",
	ExpirationMinutes: 30,
}

type stubSessionManager struct {
	sessions map[string]*session.Session
	created  *session.Session
	revoked  []string
	err      error
}

func newStubSessionManager() *stubSessionManager {
	return &stubSessionManager{sessions: map[string]*session.Session{}}
}

func (s *stubSessionManager) Create(ctx context.Context, backendToken string, user session.Profile) (*session.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	now := time.Now().UTC()
	sess := &session.Session{
		AccessID:     session.NewAccessID(),
		BackendToken: backendToken,
		User:         user,
		CreatedAt:    now,
		ExpiresAt:    now.Add(testJWT.SessionTTL()),
	}
	s.sessions[sess.AccessID] = sess
	s.created = sess
	return sess, nil
}

func (s *stubSessionManager) Get(ctx context.Context, accessID string) (*session.Session, error) {
	sess, ok := s.sessions[accessID]
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	return sess, nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	delete(s.sessions, accessID)
	return nil
}

func buildTestService(t *testing.T, fake *backendtest.Fake) (Service, *stubSessionManager) {
	t.Helper()
	sessions := newStubSessionManager()
	svc, err := NewService(ServiceParams{Backend: fake, SessionManager: sessions, JWTConfig: testJWT})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, sessions
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(ServiceParams{SessionManager: newStubSessionManager()}); err == nil {
		t.Fatal("expected error without backend")
	}
	if _, err := NewService(ServiceParams{Backend: backendtest.New()}); err == nil {
		t.Fatal("expected error without session manager")
	}
}

func TestLoginCreatesSessionAndMintsToken(t *testing.T) {
	fake := backendtest.New().JSON(backend.ServiceAuth, http.MethodPost, "/auth/login", `{
		"success": true,
		"data": {
			"accessToken": "backend-jwt",
			"expires_in": 3600,
			"user": {"_id": "u-42", "full_name": "Dewi Lestari", "email": "Dewi@Example.com", "role": "Administrator"}
		}
	}`)
	svc, sessions := buildTestService(t, fake)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: " DEWI@example.com ", Password: "pw"}, backend.Credentials{RequestID: "req-1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	sent := fake.Last()
	if sent.Token != "" {
		t.Fatalf("login must not forward a bearer token, got %q", sent.Token)
	}
	if sent.RequestID != "req-1" {
		t.Fatalf("expected request id to be forwarded, got %q", sent.RequestID)
	}
	if body := backendtest.BodyJSON(sent); !strings.Contains(body, `"email":"dewi@example.com"`) {
		t.Fatalf("expected normalized email in body, got %s", body)
	}

	if sessions.created == nil || sessions.created.BackendToken != "backend-jwt" {
		t.Fatalf("expected backend token to be stored in the session, got %+v", sessions.created)
	}
	if resp.AccessToken == "" || strings.Contains(resp.AccessToken, "backend-jwt") {
		t.Fatal("access token must be a BFF token")
	}
	if !resp.ExpiresAt.Equal(sessions.created.ExpiresAt) {
		t.Fatalf("expires_at %v does not match session %v", resp.ExpiresAt, sessions.created.ExpiresAt)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.ID != sessions.created.AccessID {
		t.Fatalf("expected jti %s, got %s", sessions.created.AccessID, claims.ID)
	}
	if claims.UserID != "u-42" || claims.Role != enums.UserRoleAdmin {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if resp.User.Email != "dewi@example.com" || resp.User.Name != "Dewi Lestari" {
		t.Fatalf("unexpected user %+v", resp.User)
	}
}

func TestLoginMapsRejectedCredentials(t *testing.T) {
	for _, code := range []pkgerrors.Code{pkgerrors.CodeUnauthorized, pkgerrors.CodeNotFound} {
		fake := backendtest.New().Fail(backend.ServiceAuth, http.MethodPost, "/auth/login", pkgerrors.New(code, "wrong password for dewi"))
		svc, sessions := buildTestService(t, fake)

		_, err := svc.Login(context.Background(), LoginRequest{Email: "dewi@example.com", Password: "nope"}, backend.Credentials{})
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
			t.Fatalf("expected unauthorized, got %v", err)
		}
		if typed.Message() != invalidCredentialsMessage {
			t.Fatalf("upstream message must not leak, got %q", typed.Message())
		}
		if sessions.created != nil {
			t.Fatal("no session expected")
		}
	}
}

func TestLoginPassesThroughOutages(t *testing.T) {
	fake := backendtest.New().Fail(backend.ServiceAuth, http.MethodPost, "/auth/login", pkgerrors.New(pkgerrors.CodeDependency, "auth down"))
	svc, _ := buildTestService(t, fake)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.co", Password: "x"}, backend.Credentials{})
	if !pkgerrors.Is(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestLoginRejectsResponsesWithoutToken(t *testing.T) {
	fake := backendtest.New().JSON(backend.ServiceAuth, http.MethodPost, "/auth/login", `{"user":{"id":"u1"}}`)
	svc, sessions := buildTestService(t, fake)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.co", Password: "x"}, backend.Credentials{})
	if !pkgerrors.Is(err, pkgerrors.CodeUpstreamContract) {
		t.Fatalf("expected upstream contract error, got %v", err)
	}
	if sessions.created != nil {
		t.Fatal("no session expected")
	}
}

func TestLoginRejectsBlankCredentials(t *testing.T) {
	fake := backendtest.New()
	svc, _ := buildTestService(t, fake)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "  ", Password: "x"}, backend.Credentials{})
	if !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if len(fake.Calls()) != 0 {
		t.Fatal("backend must not be called")
	}
}

func TestLoginRevokesSessionWhenMintFails(t *testing.T) {
	fake := backendtest.New().JSON(backend.ServiceAuth, http.MethodPost, "/auth/login", `{"token":"t","user":{"id":"u1"}}`)
	sessions := newStubSessionManager()
	svc, err := NewService(ServiceParams{Backend: fake, SessionManager: sessions, JWTConfig: config.JWTConfig{}})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{Email: "a@b.co", Password: "x"}, backend.Credentials{})
	if !pkgerrors.Is(err, pkgerrors.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if len(sessions.revoked) != 1 || len(sessions.sessions) != 0 {
		t.Fatalf("expected orphan session to be revoked, got %v", sessions.revoked)
	}
}

func TestLogoutAndMe(t *testing.T) {
	fake := backendtest.New().JSON(backend.ServiceAuth, http.MethodPost, "/auth/login", `{"token":"t","user":{"id":"u1","name":"Rina","email":"rina@example.com"}}`)
	svc, sessions := buildTestService(t, fake)
	ctx := context.Background()

	if _, err := svc.Login(ctx, LoginRequest{Email: "rina@example.com", Password: "x"}, backend.Credentials{}); err != nil {
		t.Fatalf("login: %v", err)
	}
	accessID := sessions.created.AccessID

	me, err := svc.Me(ctx, accessID)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.ID != "u1" || me.Role != enums.UserRoleCustomer {
		t.Fatalf("unexpected profile %+v", me)
	}

	if err := svc.Logout(ctx, accessID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Me(ctx, accessID); !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized after logout, got %v", err)
	}
	if err := svc.Logout(ctx, ""); !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for blank access id, got %v", err)
	}
}
