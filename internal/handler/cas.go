package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"purecerts-console/internal/api"
	"purecerts-console/internal/model"
)

const (
	defaultCAValidityYears = 10
	defaultCAKeySize       = 4096
)

var errNameRequired = errors.New("name and common name are required")

type CAHandler struct {
	API *api.Client
}

type caListData struct {
	CAs []model.CA
}

func (h *CAHandler) List(c *gin.Context) {
	resp, err := h.API.CAs.ListCAs(c.Request.Context(), model.ListCAsRequest{Limit: caChoiceLimit, Type: c.Query("type")})
	if err != nil {
		renderFetchError(c, "Certificate authorities", "cas", err)
		return
	}
	render(c, "cas.html", "Certificate authorities", "cas", caListData{CAs: resp.CAs})
}

func (h *CAHandler) New(c *gin.Context) {
	render(c, "ca_new.html", "Create certificate authority", "cas", model.CreateCARequest{
		ValidityYears: defaultCAValidityYears,
	})
}

func (h *CAHandler) Create(c *gin.Context) {
	req := model.CreateCARequest{
		Name: strings.TrimSpace(c.PostForm("name")),
		Type: c.DefaultPostForm("type", "CA_TYPE_ROOT"),
		Subject: model.Subject{
			CommonName:         strings.TrimSpace(c.PostForm("common_name")),
			Organization:       strings.TrimSpace(c.PostForm("organization")),
			OrganizationalUnit: strings.TrimSpace(c.PostForm("organizational_unit")),
			Country:            strings.ToUpper(strings.TrimSpace(c.PostForm("country"))),
			State:              strings.TrimSpace(c.PostForm("state")),
			Locality:           strings.TrimSpace(c.PostForm("locality")),
		},
		KeyAlgorithm:  model.KeyAlgorithm(c.DefaultPostForm("key_algorithm", string(model.KeyAlgorithmRSA))),
		KeySize:       formInt32(c, "key_size", defaultCAKeySize),
		ValidityYears: formInt32(c, "validity_years", defaultCAValidityYears),
	}
	if req.Name == "" || req.Subject.CommonName == "" {
		redirectWithError(c, "/cas/new", errNameRequired)
		return
	}

	ca, err := h.API.CAs.CreateCA(c.Request.Context(), req)
	if err != nil {
		redirectWithError(c, "/cas/new", err)
		return
	}
	redirectWithNotice(c, "/cas/"+ca.CAID, "Certificate authority created")
}

type caData struct {
	CA           model.CA
	Certificates []model.Certificate
}

func (h *CAHandler) Show(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	ca, err := h.API.CAs.GetCA(ctx, id)
	if err != nil {
		renderFetchError(c, "Certificate authority", "cas", err)
		return
	}
	certs, err := h.API.Certificates.ListCertificates(ctx, model.ListCertificatesRequest{CAID: id, Limit: pageSize})
	if err != nil {
		renderFetchError(c, ca.Name, "cas", err)
		return
	}
	render(c, "ca.html", ca.Name, "cas", caData{CA: ca, Certificates: certs.Certificates})
}

func (h *CAHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.API.CAs.DeleteCA(c.Request.Context(), id); err != nil {
		redirectWithError(c, "/cas/"+id, err)
		return
	}
	redirectWithNotice(c, "/cas", "Certificate authority deleted")
}
