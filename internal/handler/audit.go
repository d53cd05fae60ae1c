package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"purecerts-console/internal/api"
	"purecerts-console/internal/model"
)

type AuditHandler struct {
	API *api.Client
}

type auditListData struct {
	Action       string
	ResourceType string
	Logs         []model.AuditLog
	Page         int
	HasPrev      bool
	HasNext      bool
}

func (h *AuditHandler) List(c *gin.Context) {
	page := pageNumber(c)
	limit, offset := pageWindow(page)
	data := auditListData{
		Action:       strings.TrimSpace(c.Query("action")),
		ResourceType: strings.TrimSpace(c.Query("resource_type")),
		Page:         page,
		HasPrev:      page > 1,
	}

	resp, err := h.API.Audit.ListAuditLogs(c.Request.Context(), model.ListAuditLogsRequest{
		Limit:        limit,
		Offset:       offset,
		Action:       data.Action,
		ResourceType: data.ResourceType,
	})
	if err != nil {
		renderFetchError(c, "Audit log", "audit", err)
		return
	}
	data.Logs = resp.Logs
	data.HasNext = hasNext(resp.Pagination, offset, len(resp.Logs))
	render(c, "audit.html", "Audit log", "audit", data)
}

func (h *AuditHandler) Show(c *gin.Context) {
	entry, err := h.API.Audit.GetAuditLog(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderFetchError(c, "Audit entry", "audit", err)
		return
	}
	render(c, "audit_entry.html", "Audit entry", "audit", entry)
}
