package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/florista/bouquet-bff/internal/backend"
	"github.com/florista/bouquet-bff/internal/normalize"
	pkgerrors "github.com/florista/bouquet-bff/pkg/errors"
)

var timeNow = func() time.Time { return time.Now().UTC() }

// Register creates a customer account upstream. It does not log the user in.
func (s *service) Register(ctx context.Context, req RegisterRequest, creds backend.Credentials) (*normalize.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	body := map[string]string{
		"name":     name,
		"email":    email,
		"password": req.Password,
	}
	if phone := strings.TrimSpace(req.Phone); phone != "" {
		body["phone"] = phone
	}

	resp, err := s.backend.Do(ctx, backend.Request{
		Service: backend.ServiceAuth,
		Method:  http.MethodPost,
		Path:    "/auth/register",
		Body:    body,
	}.As(backend.Credentials{RequestID: creds.RequestID}))
	if err != nil {
		return nil, err
	}

	user, issues := normalize.NormalizeUser(resp.Decode())
	normalize.Report(ctx, s.logg, "auth.register", issues)
	if user.Email == "" {
		user.Email = email
	}
	if user.Name == "" {
		user.Name = name
	}
	return &user, nil
}
