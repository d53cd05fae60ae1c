// Package handler serves the console pages. Every page fetches fresh data through
// the api package with the request's context, and mutations answer with a
// redirect carrying an error or notice flash message.
package handler

import (
	"context"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"purecerts-console/internal/middleware"
	"purecerts-console/internal/model"
	"purecerts-console/internal/rpc"
	"purecerts-console/internal/session"
	"purecerts-console/internal/web"
)

const (
	pageSize = 25
	// maxPage keeps the offset within int32.
	maxPage = math.MaxInt32 / pageSize
)

// SessionManager is the part of session.Store the pages drive.
type SessionManager interface {
	State() session.AuthState
	SignIn(ctx context.Context, email, password string) error
	SignOut(ctx context.Context)
	RefreshUser(ctx context.Context) error
}

// newPage fills the layout fields shared by every page.
func newPage(c *gin.Context, title, section string, data any) web.Page {
	p := web.Page{
		Title:   title,
		Section: section,
		Error:   c.Query("error"),
		Notice:  c.Query("notice"),
		Data:    data,
	}
	if u, ok := middleware.CurrentUser(c); ok {
		p.User = &u
	}
	return p
}

func render(c *gin.Context, name, title, section string, data any) {
	c.HTML(http.StatusOK, name, newPage(c, title, section, data))
}

// renderFetchError shows the error page when the data a page depends on could
// not be loaded.
func renderFetchError(c *gin.Context, title, section string, err error) {
	log.Printf("handler: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	p := newPage(c, title, section, nil)
	p.Error = rpc.Message(err)
	p.Notice = ""
	c.HTML(http.StatusBadGateway, "error.html", p)
}

// RenderLoading is the route guard's placeholder while the session reconciles.
func RenderLoading(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	p := newPage(c, "Loading", "", nil)
	p.Loading = true
	c.HTML(http.StatusOK, "loading.html", p)
}

func redirectWithError(c *gin.Context, target string, err error) {
	log.Printf("handler: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	redirectWithFlash(c, target, "error", rpc.Message(err))
}

func redirectWithNotice(c *gin.Context, target, notice string) {
	redirectWithFlash(c, target, "notice", notice)
}

func redirectWithFlash(c *gin.Context, target, key, message string) {
	u, err := url.Parse(target)
	if err != nil {
		c.Redirect(http.StatusSeeOther, target)
		return
	}
	q := u.Query()
	q.Set(key, message)
	u.RawQuery = q.Encode()
	c.Redirect(http.StatusSeeOther, u.String())
}

// pageNumber reads the 1-based ?page= parameter.
func pageNumber(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("page"))
	if err != nil || n < 1 {
		return 1
	}
	if n > maxPage {
		return maxPage
	}
	return n
}

func pageWindow(page int) (limit, offset int32) {
	return pageSize, int32((page - 1) * pageSize)
}

// hasNext prefers the reported total and falls back to a full page meaning more.
func hasNext(p *model.Pagination, offset int32, count int) bool {
	if p != nil && p.Total > 0 {
		return int(offset)+count < int(p.Total)
	}
	if p != nil && p.NextCursor != "" {
		return true
	}
	return count == pageSize
}

func formInt32(c *gin.Context, field string, fallback int32) int32 {
	n, err := strconv.ParseInt(c.PostForm(field), 10, 32)
	if err != nil || n <= 0 {
		return fallback
	}
	return int32(n)
}
