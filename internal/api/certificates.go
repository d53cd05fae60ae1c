package api

import (
	"context"

	"purecerts-console/internal/model"
	"purecerts-console/internal/rpc"
)

// Download formats accepted by DownloadCertificate.
const (
	FormatPEM   = "pem"
	FormatDER   = "der"
	FormatChain = "chain"
)

type CertificateService struct{ d rpc.Dispatcher }

func (s *CertificateService) ListCertificates(ctx context.Context, req model.ListCertificatesRequest) (model.ListCertificatesResponse, error) {
	return rpc.Call[model.ListCertificatesResponse](ctx, s.d, certificateService, "ListCertificates", req)
}

func (s *CertificateService) GetCertificate(ctx context.Context, certID string) (model.Certificate, error) {
	return rpc.Call[model.Certificate](ctx, s.d, certificateService, "GetCertificate", certIDPayload{CertID: certID})
}

func (s *CertificateService) IssueCertificate(ctx context.Context, req model.IssueCertificateRequest) (model.Certificate, error) {
	return rpc.Call[model.Certificate](ctx, s.d, certificateService, "IssueCertificate", req)
}

func (s *CertificateService) RenewCertificate(ctx context.Context, certID string) (model.Certificate, error) {
	return rpc.Call[model.Certificate](ctx, s.d, certificateService, "RenewCertificate", certIDPayload{CertID: certID})
}

// RevokeCertificate omits the reason from the payload when it is empty.
func (s *CertificateService) RevokeCertificate(ctx context.Context, certID, reason string) error {
	return s.d.Do(ctx, certificateService, "RevokeCertificate", certIDPayload{CertID: certID, Reason: reason}, nil)
}

func (s *CertificateService) DeleteCertificate(ctx context.Context, certID string) error {
	return s.d.Do(ctx, certificateService, "DeleteCertificate", certIDPayload{CertID: certID}, nil)
}

func (s *CertificateService) DownloadCertificate(ctx context.Context, certID, format string) (model.CertificateDownload, error) {
	return rpc.Call[model.CertificateDownload](ctx, s.d, certificateService, "DownloadCertificate", certIDPayload{CertID: certID, Format: format})
}

type certIDPayload struct {
	CertID string `json:"cert_id"`
	Reason string `json:"reason,omitempty"`
	Format string `json:"format,omitempty"`
}

type CAService struct{ d rpc.Dispatcher }

func (s *CAService) ListCAs(ctx context.Context, req model.ListCAsRequest) (model.ListCAsResponse, error) {
	return rpc.Call[model.ListCAsResponse](ctx, s.d, caService, "ListCAs", req)
}

func (s *CAService) GetCA(ctx context.Context, caID string) (model.CA, error) {
	return rpc.Call[model.CA](ctx, s.d, caService, "GetCA", map[string]string{"ca_id": caID})
}

func (s *CAService) CreateCA(ctx context.Context, req model.CreateCARequest) (model.CA, error) {
	return rpc.Call[model.CA](ctx, s.d, caService, "CreateCA", req)
}

func (s *CAService) UpdateCA(ctx context.Context, req model.UpdateCARequest) (model.CA, error) {
	return rpc.Call[model.CA](ctx, s.d, caService, "UpdateCA", req)
}

func (s *CAService) DeleteCA(ctx context.Context, caID string) error {
	return s.d.Do(ctx, caService, "DeleteCA", map[string]string{"ca_id": caID}, nil)
}
