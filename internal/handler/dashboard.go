package handler

import (
	"log"

	"github.com/gin-gonic/gin"
	"purecerts-console/internal/api"
	"purecerts-console/internal/model"
)

const dashboardRecent = 5

type DashboardHandler struct {
	API *api.Client
}

type dashboardData struct {
	Summary *model.CertificateSummary
	Usage   *model.Usage
	Recent  []model.Certificate
	CAs     []model.CA
}

func (h *DashboardHandler) Show(c *gin.Context) {
	ctx := c.Request.Context()

	certs, err := h.API.Certificates.ListCertificates(ctx, model.ListCertificatesRequest{Limit: dashboardRecent})
	if err != nil {
		renderFetchError(c, "Dashboard", "dashboard", err)
		return
	}
	cas, err := h.API.CAs.ListCAs(ctx, model.ListCAsRequest{Limit: dashboardRecent})
	if err != nil {
		renderFetchError(c, "Dashboard", "dashboard", err)
		return
	}

	data := dashboardData{Summary: certs.Summary, Recent: certs.Certificates, CAs: cas.CAs}
	// Usage is billing data some roles cannot read; the dashboard renders without it.
	if usage, err := h.API.Billing.GetUsage(ctx); err != nil {
		log.Printf("handler: dashboard usage: %v", err)
	} else {
		data.Usage = &usage
	}
	render(c, "dashboard.html", "Dashboard", "dashboard", data)
}
