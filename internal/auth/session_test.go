package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSetLoginCookie(t *testing.T) {
	rr := httptest.NewRecorder()
	SetLoginCookie(rr, "alice")

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	c := cookies[0]
	if c.Name != CookieName {
		t.Errorf("cookie name = %q, want %q", c.Name, CookieName)
	}
	if c.Value != "alice" {
		t.Errorf("cookie value = %q, want %q", c.Value, "alice")
	}
	if c.Path != "/" {
		t.Errorf("cookie path = %q, want %q", c.Path, "/")
	}
}

func TestClearLoginCookie(t *testing.T) {
	rr := httptest.NewRecorder()
	ClearLoginCookie(rr)

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	if cookies[0].MaxAge >= 0 {
		t.Errorf("MaxAge = %d, want negative (delete)", cookies[0].MaxAge)
	}
}

func TestCurrentUser(t *testing.T) {
	t.Run("with cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: CookieName, Value: "bob"})

		user, ok := CurrentUser(r)
		if !ok {
			t.Fatal("CurrentUser() ok = false, want true")
		}
		if user != "bob" {
			t.Errorf("CurrentUser() = %q, want %q", user, "bob")
		}
	})

	t.Run("without cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)

		if _, ok := CurrentUser(r); ok {
			t.Error("CurrentUser() ok = true for anonymous request, want false")
		}
	})

	t.Run("empty cookie value", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: CookieName, Value: ""})

		if _, ok := CurrentUser(r); ok {
			t.Error("CurrentUser() ok = true for empty cookie, want false")
		}
	})
}
