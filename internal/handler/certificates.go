package handler

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"purecerts-console/internal/api"
	"purecerts-console/internal/model"
)

const (
	defaultValidityDays = 365
	caChoiceLimit       = 100
)

var revocationReasons = []string{
	"unspecified",
	"key_compromise",
	"ca_compromise",
	"affiliation_changed",
	"superseded",
	"cessation_of_operation",
}

var (
	errCommonNameRequired = errors.New("common name is required")
	errInvalidDER         = errors.New("download returned invalid DER data")
)

type CertificateHandler struct {
	API *api.Client
}

type certificateListData struct {
	Summary      *model.CertificateSummary
	Status       string
	Search       string
	Certificates []model.Certificate
	Page         int
	HasPrev      bool
	HasNext      bool
}

// certificateStatus maps the short filter ("expiring") to the enum name.
func certificateStatus(short string) string {
	short = strings.TrimSpace(short)
	if short == "" || short == "all" {
		return ""
	}
	return "CERTIFICATE_STATUS_" + strings.ToUpper(short)
}

func (h *CertificateHandler) List(c *gin.Context) {
	page := pageNumber(c)
	limit, offset := pageWindow(page)
	data := certificateListData{Status: c.Query("status"), Search: strings.TrimSpace(c.Query("q")), Page: page, HasPrev: page > 1}

	resp, err := h.API.Certificates.ListCertificates(c.Request.Context(), model.ListCertificatesRequest{
		Limit:  limit,
		Offset: offset,
		Status: certificateStatus(data.Status),
		Search: data.Search,
	})
	if err != nil {
		renderFetchError(c, "Certificates", "certificates", err)
		return
	}
	data.Summary = resp.Summary
	data.Certificates = resp.Certificates
	data.HasNext = hasNext(resp.Pagination, offset, len(resp.Certificates))
	render(c, "certificates.html", "Certificates", "certificates", data)
}

type newCertificateData struct {
	CAs          []model.CA
	CAID         string
	CommonName   string
	SAN          string
	ValidityDays int32
}

func (h *CertificateHandler) New(c *gin.Context) {
	cas, err := h.API.CAs.ListCAs(c.Request.Context(), model.ListCAsRequest{Limit: caChoiceLimit})
	if err != nil {
		renderFetchError(c, "Issue certificate", "certificates", err)
		return
	}
	render(c, "certificate_new.html", "Issue certificate", "certificates", newCertificateData{
		CAs:          cas.CAs,
		CAID:         c.Query("ca_id"),
		ValidityDays: defaultValidityDays,
	})
}

// splitSAN accepts names separated by newlines or commas.
func splitSAN(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == '\n' || r == '\r' || r == ',' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func (h *CertificateHandler) Issue(c *gin.Context) {
	req := model.IssueCertificateRequest{
		CAID:         c.PostForm("ca_id"),
		CommonName:   strings.TrimSpace(c.PostForm("common_name")),
		SAN:          splitSAN(c.PostForm("san")),
		ValidityDays: formInt32(c, "validity_days", defaultValidityDays),
		KeyAlgorithm: model.KeyAlgorithm(c.DefaultPostForm("key_algorithm", string(model.KeyAlgorithmRSA))),
		KeySize:      formInt32(c, "key_size", 0),
	}
	if req.CommonName == "" {
		redirectWithError(c, "/certificates/new?ca_id="+req.CAID, errCommonNameRequired)
		return
	}

	cert, err := h.API.Certificates.IssueCertificate(c.Request.Context(), req)
	if err != nil {
		redirectWithError(c, "/certificates/new?ca_id="+req.CAID, err)
		return
	}
	redirectWithNotice(c, "/certificates/"+cert.CertID, "Certificate issued")
}

type certificateData struct {
	Certificate model.Certificate
	Reasons     []string
}

func (h *CertificateHandler) Show(c *gin.Context) {
	cert, err := h.API.Certificates.GetCertificate(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderFetchError(c, "Certificate", "certificates", err)
		return
	}
	render(c, "certificate.html", cert.CommonName, "certificates", certificateData{Certificate: cert, Reasons: revocationReasons})
}

func (h *CertificateHandler) Renew(c *gin.Context) {
	id := c.Param("id")
	cert, err := h.API.Certificates.RenewCertificate(c.Request.Context(), id)
	if err != nil {
		redirectWithError(c, "/certificates/"+id, err)
		return
	}
	target := cert.CertID
	if target == "" {
		target = id
	}
	redirectWithNotice(c, "/certificates/"+target, "Certificate renewed")
}

func (h *CertificateHandler) Revoke(c *gin.Context) {
	id := c.Param("id")
	if err := h.API.Certificates.RevokeCertificate(c.Request.Context(), id, c.PostForm("reason")); err != nil {
		redirectWithError(c, "/certificates/"+id, err)
		return
	}
	redirectWithNotice(c, "/certificates/"+id, "Certificate revoked")
}

func (h *CertificateHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.API.Certificates.DeleteCertificate(c.Request.Context(), id); err != nil {
		redirectWithError(c, "/certificates/"+id, err)
		return
	}
	redirectWithNotice(c, "/certificates", "Certificate deleted")
}

// Download streams the encoded certificate. DER arrives base64 encoded.
func (h *CertificateHandler) Download(c *gin.Context) {
	id := c.Param("id")
	format := strings.ToLower(c.DefaultQuery("format", "pem"))

	dl, err := h.API.Certificates.DownloadCertificate(c.Request.Context(), id, format)
	if err != nil {
		redirectWithError(c, "/certificates/"+id, err)
		return
	}

	body := []byte(dl.Data)
	contentType := "application/x-pem-file"
	if format == "der" {
		decoded, err := base64.StdEncoding.DecodeString(dl.Data)
		if err != nil {
			redirectWithError(c, "/certificates/"+id, errInvalidDER)
			return
		}
		body = decoded
		contentType = "application/pkix-cert"
	}

	filename := dl.Filename
	if filename == "" {
		filename = id + "." + format
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, body)
}
