package backend

// Credentials identify the end user a backend call is made for.
type Credentials struct {
	Token     string
	RequestID string
}

// Anonymous reports whether no backend token is attached.
func (c Credentials) Anonymous() bool {
	return c.Token == ""
}

// As returns a copy of req carrying the caller's token and request id.
func (r Request) As(creds Credentials) Request {
	r.Token = creds.Token
	if creds.RequestID != "" {
		r.RequestID = creds.RequestID
	}
	return r
}
