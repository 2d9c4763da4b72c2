package pkg

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

const SessionCookieName = "user_session"

// GenerateNewSessionID - generates a new unique sessionID.
func GenerateNewSessionID() string {
	return uuid.NewString()
}

// SessionFromRequest - returns the session of the request, issuing a new
// cookie on writer when the browser has none yet.
func SessionFromRequest(writer http.ResponseWriter, req *http.Request, ttl time.Duration, path string) string {
	cookie, err := req.Cookie(SessionCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	sessionID := GenerateNewSessionID()
	http.SetCookie(writer, NewSessionCookie(sessionID, ttl, path))

	return sessionID
}

func NewSessionCookie(sessionID string, ttl time.Duration, path string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Expires:  time.Now().Add(ttl),
		Path:     path,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
