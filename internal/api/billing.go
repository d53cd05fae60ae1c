package api

import (
	"context"

	"purecerts-console/internal/model"
	"purecerts-console/internal/rpc"
)

type BillingService struct{ d rpc.Dispatcher }

func (s *BillingService) GetSubscription(ctx context.Context) (model.Subscription, error) {
	return rpc.Call[model.Subscription](ctx, s.d, billingService, "GetSubscription", nil)
}

func (s *BillingService) GetUsage(ctx context.Context) (model.Usage, error) {
	return rpc.Call[model.Usage](ctx, s.d, billingService, "GetUsage", nil)
}

func (s *BillingService) ListPlans(ctx context.Context) (model.ListPlansResponse, error) {
	return rpc.Call[model.ListPlansResponse](ctx, s.d, billingService, "ListPlans", nil)
}

func (s *BillingService) ListInvoices(ctx context.Context) (model.ListInvoicesResponse, error) {
	return rpc.Call[model.ListInvoicesResponse](ctx, s.d, billingService, "ListInvoices", nil)
}

type AuditService struct{ d rpc.Dispatcher }

func (s *AuditService) ListAuditLogs(ctx context.Context, req model.ListAuditLogsRequest) (model.ListAuditLogsResponse, error) {
	return rpc.Call[model.ListAuditLogsResponse](ctx, s.d, auditService, "ListAuditLogs", req)
}

func (s *AuditService) GetAuditLog(ctx context.Context, logID string) (model.AuditLog, error) {
	return rpc.Call[model.AuditLog](ctx, s.d, auditService, "GetAuditLog", map[string]string{"log_id": logID})
}

type HealthService struct{ d rpc.Dispatcher }

func (s *HealthService) Check(ctx context.Context) (model.HealthStatus, error) {
	return rpc.Call[model.HealthStatus](ctx, s.d, healthService, "Check", nil)
}
