package auth

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/florista/bouquet-bff/internal/backend"
	"github.com/florista/bouquet-bff/internal/backend/backendtest"
	"github.com/florista/bouquet-bff/pkg/enums"
	pkgerrors "github.com/florista/bouquet-bff/pkg/errors"
)

func TestRegisterForwardsAndNormalizes(t *testing.T) {
	fake := backendtest.New().JSON(backend.ServiceAuth, http.MethodPost, "/auth/register", `{"message":"created","data":{"user":{"id":7,"role":"member"}}}`)
	svc, _ := buildTestService(t, fake)

	user, err := svc.Register(context.Background(), RegisterRequest{
		Name:     " Putu ",
		Email:    "Putu@Example.com",
		Password: "secret-pass",
		Phone:    "0812",
	}, backend.Credentials{RequestID: "r-9"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID != "7" || user.Role != enums.UserRoleCustomer {
		t.Fatalf("unexpected user %+v", user)
	}
	if user.Email != "putu@example.com" || user.Name != "Putu" {
		t.Fatalf("expected request values to fill gaps, got %+v", user)
	}

	body := backendtest.BodyJSON(fake.Last())
	for _, want := range []string{`"email":"putu@example.com"`, `"name":"Putu"`, `"phone":"0812"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s in %s", want, body)
		}
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := buildTestService(t, backendtest.New())
	if _, err := svc.Register(context.Background(), RegisterRequest{Name: "x"}, backend.Credentials{}); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.Register(context.Background(), RegisterRequest{Email: "a@b.co"}, backend.Credentials{}); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegisterSurfacesConflicts(t *testing.T) {
	fake := backendtest.New().Fail(backend.ServiceAuth, http.MethodPost, "/auth/register", pkgerrors.New(pkgerrors.CodeConflict, "email already registered"))
	svc, _ := buildTestService(t, fake)
	_, err := svc.Register(context.Background(), RegisterRequest{Name: "x", Email: "a@b.co", Password: "12345678"}, backend.Credentials{})
	if !pkgerrors.Is(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}
