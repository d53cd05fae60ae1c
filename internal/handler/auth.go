package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"purecerts-console/internal/rpc"
	"purecerts-console/internal/session"
)

type AuthHandler struct {
	Session SessionManager
}

type loginForm struct {
	Email string
	Next  string
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	st := h.Session.State()
	if st.Loading {
		RenderLoading(c)
		return
	}
	if st.IsAuthenticated() {
		c.Redirect(http.StatusSeeOther, safeNext(c.Query("next")))
		return
	}
	render(c, "login.html", "Sign in", "", loginForm{Next: c.Query("next")})
}

func (h *AuthHandler) Login(c *gin.Context) {
	form := loginForm{
		Email: c.PostForm("email"),
		Next:  c.PostForm("next"),
	}
	password := c.PostForm("password")
	if form.Email == "" || password == "" {
		p := newPage(c, "Sign in", "", form)
		p.Error = "Email and password are required"
		c.HTML(http.StatusBadRequest, "login.html", p)
		return
	}

	if err := h.Session.SignIn(c.Request.Context(), form.Email, password); err != nil {
		p := newPage(c, "Sign in", "", form)
		p.Error = signInMessage(err)
		c.HTML(http.StatusUnauthorized, "login.html", p)
		return
	}
	c.Redirect(http.StatusSeeOther, safeNext(form.Next))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.Session.SignOut(c.Request.Context())
	c.Redirect(http.StatusSeeOther, "/login")
}

func signInMessage(err error) string {
	switch {
	case errors.Is(err, session.ErrMFARequired):
		return "This account requires two-factor authentication, which the console does not support yet"
	case errors.Is(err, session.ErrNoAccessToken):
		return "Sign-in failed: the server returned no access token"
	default:
		return rpc.Message(err)
	}
}

// safeNext keeps redirects on this console.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
