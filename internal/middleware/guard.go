package middleware

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"purecerts-console/internal/model"
	"purecerts-console/internal/session"
)

const currentUserContextKey = "currentUser"

// StateSource is read on every guarded request, so a sign-out anywhere in the
// console takes effect on the next request.
type StateSource interface {
	State() session.AuthState
}

type GuardOptions struct {
	LoginPath string
	// Loading renders the placeholder while the session is still reconciling.
	Loading gin.HandlerFunc
}

func CurrentUser(c *gin.Context) (model.User, bool) {
	v, ok := c.Get(currentUserContextKey)
	if !ok {
		return model.User{}, false
	}
	u, ok := v.(model.User)
	return u, ok
}

// RequireSession lets a request through only for a signed-in session. While the
// session is loading it renders the placeholder and makes no decision; once
// resolved without a user it redirects to the sign-in page with 303 so the
// browser replaces the protected URL instead of stacking a new entry.
func RequireSession(src StateSource, opts GuardOptions) gin.HandlerFunc {
	loginPath := opts.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}
	loading := opts.Loading
	if loading == nil {
		loading = defaultLoading
	}

	return func(c *gin.Context) {
		st := src.State()
		if st.Loading {
			loading(c)
			c.Abort()
			return
		}
		if !st.IsAuthenticated() {
			c.Redirect(http.StatusSeeOther, LoginRedirect(loginPath, c.Request))
			c.Abort()
			return
		}

		c.Set(currentUserContextKey, st.User.User)
		c.Next()
	}
}

// LoginRedirect builds the sign-in URL that returns to r after signing in.
// Only GET targets are remembered; a form post cannot be replayed.
func LoginRedirect(loginPath string, r *http.Request) string {
	if r == nil || r.Method != http.MethodGet || r.URL.Path == "/" {
		return loginPath
	}
	return loginPath + "?next=" + url.QueryEscape(r.URL.RequestURI())
}

func defaultLoading(c *gin.Context) {
	c.Header("Refresh", "1")
	c.Header("Cache-Control", "no-store")
	c.String(http.StatusOK, "Loading...")
}
