package auth

import "net/http"

// CookieName is the login cookie. Its value is the bare username.
//
// SESSION MODEL (such as it is):
// The cookie is not signed, not encrypted, and never expires — the server
// treats its mere presence as "logged in" and never re-checks it against
// the credential store. That is the documented contract of this system:
// the token IS the username, opaque to the client but carrying no
// integrity protection. Anything stronger (signed tokens, server-side
// sessions, expiry) is out of scope for this deployment.
const CookieName = "user_login"

// SetLoginCookie stores the identity token returned by a successful login.
func SetLoginCookie(w http.ResponseWriter, username string) {
	http.SetCookie(w, &http.Cookie{
		Name:  CookieName,
		Value: username,
		Path:  "/",
	})
}

// ClearLoginCookie deletes the login cookie. MaxAge < 0 tells the browser
// to drop it immediately.
func ClearLoginCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   CookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

// CurrentUser returns the username from the login cookie.
// Returns ("", false) when the request is anonymous.
func CurrentUser(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		// http.ErrNoCookie just means "not logged in", not a failure.
		return "", false
	}
	return cookie.Value, true
}
