package auth

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const Realm = "MoMo API"

// Compared against when the username is unknown.
const placeholderPassword = "momo-placeholder-password"

var (
	ErrNoUsers        = errors.New("no credentials configured")
	ErrMalformedEntry = errors.New("credential entry must be user:password")
)

// Users maps a username to its password.
type Users map[string]string

// ParseUsers reads "user:pass,user2:pass2". Passwords may contain colons.
func ParseUsers(s string) (Users, error) {
	users := Users{}
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, pass, ok := strings.Cut(entry, ":")
		if !ok || name == "" || pass == "" {
			return nil, fmt.Errorf("%w: %q", ErrMalformedEntry, name)
		}
		users[name] = pass
	}
	if len(users) == 0 {
		return nil, ErrNoUsers
	}
	return users, nil
}

// Check reports whether the pair matches a configured user.
func (u Users) Check(name, pass string) bool {
	want, ok := u[name]
	if !ok {
		want = placeholderPassword
	}
	match := subtle.ConstantTimeCompare([]byte(pass), []byte(want)) == 1
	return ok && match
}

// Middleware rejects requests without valid Basic credentials before they
// reach next.
func (u Users) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name, pass, ok := r.BasicAuth()
		if !ok || !u.Check(name, pass) {
			w.Header().Set("WWW-Authenticate", fmt.Sprintf("Basic realm=%q", Realm))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
