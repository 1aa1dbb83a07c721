package reconciliation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vendas-platform/pkg/metrics"
	"vendas-platform/pkg/taskname"
	"vendas-platform/services/sale"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const taskQueue = taskname.QueueReconcile

// SalePayload identifies the sale a follow-up task works on.
type SalePayload struct {
	SaleID string `json:"sale_id"`
}

func newSaleTask(typename, saleID string) (*asynq.Task, error) {
	payload, err := json.Marshal(SalePayload{SaleID: saleID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(typename, payload,
		asynq.MaxRetry(10),
		asynq.Timeout(60*time.Second),
		asynq.Queue(taskQueue)), nil
}

func newCommissionEnsureTask(saleID string) (*asynq.Task, error) {
	return newSaleTask(taskname.CommissionEnsure, saleID)
}

func newMembershipProvisionTask(saleID string) (*asynq.Task, error) {
	return newSaleTask(taskname.MembershipProvision, saleID)
}

func (e *Engine) enqueueFollowUp(ctx context.Context, log *zap.Logger, build func(string) (*asynq.Task, error), saleID string) {
	if e.enqueuer == nil {
		return
	}
	t, err := build(saleID)
	if err != nil {
		log.Error("failed to build follow-up task", zap.Error(err))
		return
	}
	if _, err := e.enqueuer.Enqueue(ctx, t); err != nil {
		log.Error("failed to enqueue follow-up task", zap.String("task_type", t.Type()), zap.Error(err))
		return
	}
	log.Info("follow-up task enqueued", zap.String("task_type", t.Type()))
}

// Task runs the guarded commission and membership creates outside the
// webhook request. Returning an error lets asynq retry.
type Task struct {
	sales       sale.Store
	commissions commissionEnsurer
	memberships membershipProvisioner
}

type TaskParams struct {
	fx.In
	Sales  sale.Store
	Engine *Engine
}

func NewTask(p TaskParams) *Task {
	return &Task{
		sales:       p.Sales,
		commissions: p.Engine.commissions,
		memberships: p.Engine.memberships,
	}
}

func (t *Task) loadSale(ctx context.Context, task *asynq.Task) (*sale.Sale, *zap.Logger, error) {
	var payload SalePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return nil, nil, fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
	}

	log := zap.L().With(zap.String("task_type", task.Type()), zap.String("sale_id", payload.SaleID))

	s, err := t.sales.FindByID(ctx, payload.SaleID)
	if err != nil {
		return nil, log, err
	}
	if s == nil {
		return nil, log, fmt.Errorf("sale %q not found: %w", payload.SaleID, asynq.SkipRetry)
	}
	return s, log, nil
}

func (t *Task) HandleCommissionEnsure(ctx context.Context, task *asynq.Task) error {
	s, log, err := t.loadSale(ctx, task)
	if err != nil {
		metrics.TasksTotal.WithLabelValues(task.Type(), "error").Inc()
		return err
	}
	if s.Status != sale.StatusPaid {
		metrics.TasksTotal.WithLabelValues(task.Type(), "skipped").Inc()
		log.Info("sale no longer paid, skipping commission", zap.String("status", s.Status.String()))
		return nil
	}

	created, err := t.commissions.EnsureCommission(ctx, s)
	if err != nil {
		metrics.TasksTotal.WithLabelValues(task.Type(), "error").Inc()
		log.Error("commission retry failed", zap.Error(err))
		return err
	}

	metrics.TasksTotal.WithLabelValues(task.Type(), "ok").Inc()
	log.Info("commission retry done", zap.Bool("created", created))
	return nil
}

func (t *Task) HandleMembershipProvision(ctx context.Context, task *asynq.Task) error {
	s, log, err := t.loadSale(ctx, task)
	if err != nil {
		metrics.TasksTotal.WithLabelValues(task.Type(), "error").Inc()
		return err
	}

	res, err := t.memberships.ProvisionMemberships(ctx, s)
	if err != nil {
		metrics.TasksTotal.WithLabelValues(task.Type(), "error").Inc()
		log.Error("membership retry failed", zap.Error(err))
		return err
	}
	if res.Failed > 0 {
		metrics.TasksTotal.WithLabelValues(task.Type(), "error").Inc()
		return fmt.Errorf("%d memberships failed for sale %s", res.Failed, s.ID)
	}

	metrics.TasksTotal.WithLabelValues(task.Type(), "ok").Inc()
	log.Info("membership retry done", zap.Int("created", res.Created), zap.Int("existing", res.Existing))
	return nil
}

// RegisterTasks binds the follow-up handlers to the worker mux.
func RegisterTasks(mux *asynq.ServeMux, t *Task) {
	mux.HandleFunc(taskname.CommissionEnsure, t.HandleCommissionEnsure)
	mux.HandleFunc(taskname.MembershipProvision, t.HandleMembershipProvision)
}
