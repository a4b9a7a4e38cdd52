package normalize

import (
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/florista/bouquet-bff/pkg/enums"
)

// User is the account profile kept in the session.
type User struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Email string         `json:"email"`
	Phone string         `json:"phone,omitempty"`
	Role  enums.UserRole `json:"role"`
}

// AuthToken is the backend's login result.
type AuthToken struct {
	Token     string     `json:"-"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	User      User       `json:"user"`
}

var userFields = struct {
	id, name, email, phone, role, isAdmin []string
}{
	id:      []string{"id", "user_id", "userId", "_id"},
	name:    []string{"name", "full_name", "fullName", "username"},
	email:   []string{"email", "email_address"},
	phone:   []string{"phone", "phone_number", "phoneNumber"},
	role:    []string{"role", "role_name", "roles.0", "roles.0.name", "user_type"},
	isAdmin: []string{"is_admin", "isAdmin"},
}

var tokenFields = struct {
	token, expiresAt, expiresIn, user []string
}{
	token:     []string{"access_token", "accessToken", "token", "jwt", "auth.token", "tokens.access"},
	expiresAt: []string{"expires_at", "expiresAt"},
	expiresIn: []string{"expires_in", "expiresIn"},
	user:      []string{"user", "profile", "account"},
}

// NormalizeUser maps a user profile. Unknown roles fall back to customer.
func NormalizeUser(raw gjson.Result) (User, Issues) {
	c := NewCoercer("user", Unwrap(raw))
	if nested := c.Object(tokenFields.user...); !nested.Empty() {
		c = nested
	}
	return user(c), c.Issues()
}

func user(c *Coercer) User {
	f := userFields
	u := User{
		ID:    c.String(f.id...),
		Name:  c.String(f.name...),
		Email: strings.ToLower(c.String(f.email...)),
		Phone: c.String(f.phone...),
		Role:  enums.UserRoleCustomer,
	}
	rawRole := strings.ToLower(c.String(f.role...))
	switch {
	case rawRole == "":
	case rawRole == "admin" || rawRole == "administrator" || rawRole == "owner" || rawRole == "staff":
		u.Role = enums.UserRoleAdmin
	case rawRole == "customer" || rawRole == "user" || rawRole == "member":
	default:
		c.report("role", "unrecognized role", rawRole)
	}
	if admin, ok := c.Bool(f.isAdmin...); ok && admin {
		u.Role = enums.UserRoleAdmin
	}
	return u
}

// NormalizeAuthToken maps a login response. now anchors relative expiries.
func NormalizeAuthToken(raw gjson.Result, now time.Time) (AuthToken, Issues) {
	c := NewCoercer("auth_token", Unwrap(raw))
	f := tokenFields
	profile := c.Object(f.user...)
	if profile.Empty() {
		profile = c
	}
	tok := AuthToken{
		Token:     c.String(f.token...),
		ExpiresAt: c.Time(f.expiresAt...),
		User:      user(profile),
	}
	if tok.ExpiresAt == nil && c.Has(f.expiresIn...) {
		if secs := c.Int(f.expiresIn...); secs > 0 {
			exp := now.Add(time.Duration(secs) * time.Second)
			tok.ExpiresAt = &exp
		}
	}
	return tok, c.Issues()
}
