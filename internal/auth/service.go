package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/florista/bouquet-bff/internal/backend"
	"github.com/florista/bouquet-bff/internal/normalize"
	pkgAuth "github.com/florista/bouquet-bff/pkg/auth"
	"github.com/florista/bouquet-bff/pkg/auth/session"
	"github.com/florista/bouquet-bff/pkg/config"
	pkgerrors "github.com/florista/bouquet-bff/pkg/errors"
	"github.com/florista/bouquet-bff/pkg/logger"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest, creds backend.Credentials) (*LoginResponse, error)
	Register(ctx context.Context, req RegisterRequest, creds backend.Credentials) (*normalize.User, error)
	Logout(ctx context.Context, accessID string) error
	Me(ctx context.Context, accessID string) (*normalize.User, error)
}

type service struct {
	backend  backend.Caller
	sessions sessionManager
	jwtCfg   config.JWTConfig
	logg     *logger.Logger
}

type sessionManager interface {
	Create(ctx context.Context, backendToken string, user session.Profile) (*session.Session, error)
	Get(ctx context.Context, accessID string) (*session.Session, error)
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Backend        backend.Caller
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	Logger         *logger.Logger
}

// NewService constructs the login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Backend == nil {
		return nil, fmt.Errorf("backend caller is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		backend:  params.Backend,
		sessions: params.SessionManager,
		jwtCfg:   params.JWTConfig,
		logg:     logg,
	}, nil
}

// Login exchanges the user's credentials for a backend token, parks it in a
// session and hands the browser a BFF token that only references the session.
func (s *service) Login(ctx context.Context, req LoginRequest, creds backend.Credentials) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	resp, err := s.backend.Do(ctx, backend.Request{
		Service: backend.ServiceAuth,
		Method:  http.MethodPost,
		Path:    "/auth/login",
		Body:    map[string]string{"email": email, "password": req.Password},
	}.As(backend.Credentials{RequestID: creds.RequestID}))
	if err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeUnauthorized) || pkgerrors.Is(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, err
	}

	tok, issues := normalize.NormalizeAuthToken(resp.Decode(), timeNow())
	normalize.Report(ctx, s.logg, "auth.login", issues)
	if tok.Token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUpstreamContract, "auth service returned no token")
	}
	if tok.User.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUpstreamContract, "auth service returned no user")
	}
	if tok.User.Email == "" {
		tok.User.Email = email
	}

	sess, err := s.sessions.Create(ctx, tok.Token, profileFromUser(tok.User))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session")
	}

	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, sess.CreatedAt, pkgAuth.AccessTokenPayload{
		UserID: tok.User.ID,
		Role:   tok.User.Role,
		JTI:    sess.AccessID,
	})
	if err != nil {
		_ = s.sessions.Revoke(ctx, sess.AccessID)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &LoginResponse{
		AccessToken: accessToken,
		ExpiresAt:   sess.ExpiresAt,
		User:        tok.User,
	}, nil
}

// Logout drops the session so the BFF token stops working immediately.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) Me(ctx context.Context, accessID string) (*normalize.User, error) {
	sess, err := s.sessions.Get(ctx, accessID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session")
	}
	user := userFromProfile(sess.User)
	return &user, nil
}

func profileFromUser(u normalize.User) session.Profile {
	return session.Profile{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, Role: u.Role}
}

func userFromProfile(p session.Profile) normalize.User {
	return normalize.User{ID: p.ID, Name: p.Name, Email: p.Email, Phone: p.Phone, Role: p.Role}
}
