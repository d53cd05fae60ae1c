package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"purecerts-console/internal/api"
	"purecerts-console/internal/middleware"
	"purecerts-console/internal/model"
)

var (
	errEmailRequired = errors.New("email is required")
	errInvalidRole   = errors.New("choose a role for the invited user")
	errRemoveSelf    = errors.New("you cannot remove your own account")
)

type UserHandler struct {
	API *api.Client
}

type userListData struct {
	Search  string
	Users   []model.User
	Page    int
	HasPrev bool
	HasNext bool
}

func (h *UserHandler) List(c *gin.Context) {
	page := pageNumber(c)
	limit, offset := pageWindow(page)
	data := userListData{Search: strings.TrimSpace(c.Query("q")), Page: page, HasPrev: page > 1}

	resp, err := h.API.Users.ListUsers(c.Request.Context(), model.ListUsersRequest{
		Limit:  limit,
		Offset: offset,
		Search: data.Search,
	})
	if err != nil {
		renderFetchError(c, "Users", "users", err)
		return
	}
	data.Users = resp.Users
	data.HasNext = hasNext(resp.Pagination, offset, len(resp.Users))
	render(c, "users.html", "Users", "users", data)
}

func (h *UserHandler) Invite(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	if email == "" {
		redirectWithError(c, "/users", errEmailRequired)
		return
	}
	role := model.ParseRole(c.PostForm("role"))
	if role == model.RoleUnspecified {
		redirectWithError(c, "/users", errInvalidRole)
		return
	}

	if _, err := h.API.Users.InviteUser(c.Request.Context(), email, role); err != nil {
		redirectWithError(c, "/users", err)
		return
	}
	redirectWithNotice(c, "/users", "Invitation sent to "+email)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if u, ok := middleware.CurrentUser(c); ok && u.ID == id {
		redirectWithError(c, "/users", errRemoveSelf)
		return
	}
	if err := h.API.Users.DeleteUser(c.Request.Context(), id); err != nil {
		redirectWithError(c, "/users", err)
		return
	}
	redirectWithNotice(c, "/users", "User removed")
}
