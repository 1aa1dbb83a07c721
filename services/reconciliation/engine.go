package reconciliation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vendas-platform/pkg/errutil"
	"vendas-platform/pkg/logger"
	"vendas-platform/pkg/metrics"
	"vendas-platform/pkg/task"
	"vendas-platform/services/commission"
	"vendas-platform/services/membership"
	"vendas-platform/services/paymentevent"
	"vendas-platform/services/sale"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("vendas-platform/reconciliation")

// Result reports what HandleWebhook did with a delivery.
type Result struct {
	AlreadyProcessed bool
	EventID          string
}

type commissionEnsurer interface {
	EnsureCommission(ctx context.Context, s *sale.Sale) (bool, error)
}

type membershipProvisioner interface {
	ProvisionMemberships(ctx context.Context, s *sale.Sale) (*membership.ProvisionResult, error)
}

type Engine struct {
	events      paymentevent.Store
	sales       sale.Store
	commissions commissionEnsurer
	memberships membershipProvisioner
	enqueuer    task.Enqueuer
	now         func() time.Time
	newEventID  func() string
}

type EngineParams struct {
	fx.In
	Events      paymentevent.Store
	Sales       sale.Store
	Commissions *commission.Service
	Provisioner *membership.Provisioner
	Enqueuer    task.Enqueuer `optional:"true"`
}

func NewEngine(p EngineParams) *Engine {
	return &Engine{
		events:      p.Events,
		sales:       p.Sales,
		commissions: p.Commissions,
		memberships: p.Provisioner,
		enqueuer:    p.Enqueuer,
		now:         time.Now,
		newEventID:  uuid.NewString,
	}
}

func internalError(err error) error {
	return errutil.Internal("Erro interno ao processar webhook.", err, errutil.WithReason("internal_error"))
}

// HandleWebhook reconciles one provider delivery. The payment_events row for
// (provider, event id) decides whether the delivery is new; a processed row
// short-circuits with AlreadyProcessed while received and error rows are
// reprocessed. Event store, sale, buyer and course mapping failures are
// returned as 500 and leave the event untouched so the provider's retry
// reprocesses it. Commission and membership insert failures are logged,
// queued for the worker and recorded on the event as an error.
func (e *Engine) HandleWebhook(ctx context.Context, parser paymentevent.Parser, raw []byte) (*Result, error) {
	provider := parser.Provider()
	start := e.now()
	defer func() {
		metrics.WebhookDuration.WithLabelValues(string(provider)).Observe(time.Since(start).Seconds())
	}()

	ctx, span := tracer.Start(ctx, "reconciliation.HandleWebhook",
		trace.WithAttributes(attribute.String("payment.provider", string(provider))))
	defer span.End()

	raw = paymentevent.NormalizeBody(raw)
	n, err := parser.Parse(raw)
	if err != nil {
		metrics.WebhookRequestsTotal.WithLabelValues(string(provider), "invalid").Inc()
		span.SetStatus(codes.Error, "invalid payload")
		return nil, err
	}

	eventID := n.EventID
	if eventID == "" {
		eventID = e.newEventID()
	}
	span.SetAttributes(attribute.String("payment.event_id", eventID))

	log := logger.FromContext(ctx).With(
		zap.String("provider", string(provider)),
		zap.String("event_id", eventID),
	)
	log.Info("webhook_received",
		zap.String("type", n.Type),
		zap.String("reference", n.Reference),
		zap.Int("status", int(n.Status)))

	fail := func(err error) (*Result, error) {
		metrics.WebhookRequestsTotal.WithLabelValues(string(provider), "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Error("webhook_failed", zap.Error(err))
		return nil, internalError(err)
	}

	event, err := e.events.RecordEvent(ctx, provider, eventID, paymentevent.HashPayload(raw), raw)
	if err != nil {
		return fail(err)
	}
	if event.IsProcessed() {
		metrics.WebhookRequestsTotal.WithLabelValues(string(provider), "duplicate").Inc()
		log.Info("webhook_already_processed", zap.String("event_status", string(event.Status)))
		return &Result{AlreadyProcessed: true, EventID: eventID}, nil
	}

	if n.Reference == "" {
		log.Info("webhook_without_reference")
		return e.finish(ctx, log, provider, eventID, "sale_not_found", nil)
	}

	found, err := e.sales.FindByReference(ctx, n.Reference)
	if err != nil {
		return fail(err)
	}
	if found == nil {
		log.Info("webhook_sale_not_found", zap.String("reference", n.Reference))
		return e.finish(ctx, log, provider, eventID, "sale_not_found", nil)
	}

	now := e.now()
	if err := e.sales.UpdateStatus(ctx, found.ID, n.Status, now); err != nil {
		return fail(err)
	}

	updated := *found
	updated.Status = n.Status
	updated.FinalizedAt = &now
	updated.UpdatedAt = now

	log = log.With(zap.String("sale_id", updated.ID))
	log.Info("sale_status_updated",
		zap.String("from", found.Status.String()),
		zap.String("to", updated.Status.String()))

	var failures []string
	if updated.Status == sale.StatusPaid {
		failures, err = e.applyPaidEffects(ctx, log, &updated)
		if err != nil {
			return fail(err)
		}
	}

	return e.finish(ctx, log, provider, eventID, "processed", failures)
}

// applyPaidEffects returns the non-critical failures to record on the event.
// A buyer or course mapping lookup error is returned as critical.
func (e *Engine) applyPaidEffects(ctx context.Context, log *zap.Logger, s *sale.Sale) ([]string, error) {
	var failures []string

	if _, err := e.commissions.EnsureCommission(ctx, s); err != nil {
		log.Error("commission_ensure_failed", zap.Error(err))
		failures = append(failures, "commission: "+err.Error())
		e.enqueueFollowUp(ctx, log, newCommissionEnsureTask, s.ID)
	}

	res, err := e.memberships.ProvisionMemberships(ctx, s)
	if err != nil {
		return failures, fmt.Errorf("provision memberships: %w", err)
	}
	if res != nil && res.Failed > 0 {
		log.Warn("membership_provision_incomplete",
			zap.Int("created", res.Created),
			zap.Int("failed", res.Failed))
		failures = append(failures, "membership: some courses could not be provisioned")
		e.enqueueFollowUp(ctx, log, newMembershipProvisionTask, s.ID)
	}

	return failures, nil
}

func (e *Engine) finish(ctx context.Context, log *zap.Logger, provider paymentevent.Provider, eventID, outcome string, failures []string) (*Result, error) {
	msg := strings.Join(failures, "; ")
	e.events.MarkProcessed(ctx, provider, eventID, msg)

	if msg != "" {
		outcome = "partial"
	}
	metrics.WebhookRequestsTotal.WithLabelValues(string(provider), outcome).Inc()
	log.Info("webhook_processed", zap.String("outcome", outcome))
	return &Result{EventID: eventID}, nil
}
