// Package outbox delivers notification intents recorded by the approval
// transaction, retrying with exponential backoff.
package outbox

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/buildhub-th/procure-backend/config"
	"github.com/buildhub-th/procure-backend/internal/apperrors"
	docdomain "github.com/buildhub-th/procure-backend/internal/documents/domain"
	"github.com/buildhub-th/procure-backend/internal/logging"
	"github.com/buildhub-th/procure-backend/internal/metrics"
	"github.com/buildhub-th/procure-backend/internal/notify"
	"github.com/buildhub-th/procure-backend/internal/outbox/domain"
	vendordomain "github.com/buildhub-th/procure-backend/internal/vendors/domain"
)

type Store interface {
	Due(ctx context.Context, now time.Time, limit int) ([]*domain.Entry, error)
	Get(ctx context.Context, id string) (*domain.Entry, error)
	Save(ctx context.Context, e *domain.Entry) error
}

type Locker interface {
	Acquire(ctx context.Context, id string, ttl time.Duration) (func(), error)
}

type DocumentGetter interface {
	Get(ctx context.Context, t docdomain.Type, id string) (*docdomain.Document, error)
}

type VendorGetter interface {
	Get(ctx context.Context, id string) (*vendordomain.Vendor, error)
}

type ProjectNamer interface {
	Name(ctx context.Context, id string) (string, error)
}

type Notifier interface {
	Notify(ctx context.Context, req notify.Request) (*notify.Result, error)
}

type Stats struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Retried int `json:"retried"`
	Failed  int `json:"failed"`
	Busy    int `json:"busy"`
}

type Dispatcher struct {
	store     Store
	locker    Locker
	documents DocumentGetter
	vendors   VendorGetter
	projects  ProjectNamer
	notifier  Notifier
	cfg       config.OutboxConfig
	metrics   *metrics.Metrics
	now       func() time.Time
}

type Deps struct {
	Store     Store
	Locker    Locker
	Documents DocumentGetter
	Vendors   VendorGetter
	Projects  ProjectNamer
	Notifier  Notifier
	Metrics   *metrics.Metrics
}

func NewDispatcher(d Deps, cfg config.OutboxConfig) *Dispatcher {
	return &Dispatcher{
		store:     d.Store,
		locker:    d.Locker,
		documents: d.Documents,
		vendors:   d.Vendors,
		projects:  d.Projects,
		notifier:  d.Notifier,
		cfg:       cfg,
		metrics:   d.Metrics,
		now:       time.Now,
	}
}

// Drain processes one batch of due entries.
func (d *Dispatcher) Drain(ctx context.Context) (Stats, error) {
	var st Stats
	log := logging.FromContext(ctx).With(zap.String("operation", "outbox.drain"))

	entries, err := d.store.Due(ctx, d.now().UTC(), d.cfg.BatchSize)
	if err != nil {
		return st, err
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		release, err := d.locker.Acquire(ctx, e.ID, d.cfg.LockTTL)
		if err != nil {
			return st, err
		}
		if release == nil {
			st.Busy++
			continue
		}

		// another worker may have finished it between Due and Acquire
		e, err = d.store.Get(ctx, e.ID)
		if err != nil {
			release()
			return st, err
		}
		if e.Status != domain.StatusPending || e.NextAttemptAt.After(d.now().UTC()) {
			release()
			st.Busy++
			continue
		}

		outcome := d.deliver(ctx, e)
		if err := d.store.Save(ctx, e); err != nil {
			release()
			return st, err
		}
		release()

		d.metrics.Outbox(outcome)
		switch outcome {
		case "sent":
			st.Sent++
		case "skipped":
			st.Skipped++
		case "retried":
			st.Retried++
		case "failed":
			st.Failed++
		}
		log.Info("outbox entry processed",
			zap.String("entry_id", e.ID),
			zap.String("doc_type", e.DocType),
			zap.String("doc_id", e.DocID),
			zap.String("outcome", outcome),
			zap.Int("attempts", e.Attempts),
		)
	}
	return st, nil
}

// deliver attempts one send and moves e to its next state.
func (d *Dispatcher) deliver(ctx context.Context, e *domain.Entry) string {
	t, err := docdomain.ParseType(e.DocType)
	if err != nil || !t.Notifies() {
		return d.fail(e, "unsupported document type "+e.DocType)
	}

	doc, err := d.documents.Get(ctx, t, e.DocID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return d.fail(e, "document not found")
		}
		return d.retry(e, err)
	}

	req := notify.Request{
		Type:     string(t),
		DocID:    doc.ID,
		Data:     doc.Data,
		RetryKey: e.RetryKey,
	}
	if doc.VendorID != "" && d.vendors != nil {
		if v, err := d.vendors.Get(ctx, doc.VendorID); err == nil {
			req.Vendor = v.CardData()
		} else {
			logging.FromContext(ctx).Warn("vendor lookup failed", zap.String("vendor_id", doc.VendorID), zap.Error(err))
		}
	}
	if doc.ProjectID != "" && d.projects != nil {
		if name, err := d.projects.Name(ctx, doc.ProjectID); err == nil {
			req.ProjectName = name
		}
	}

	res, err := d.notifier.Notify(ctx, req)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindBadRequest) {
			return d.fail(e, apperrors.Message(err))
		}
		return d.retry(e, err)
	}

	e.Attempts++
	if res.Skipped {
		e.Status = domain.StatusSkipped
		e.LastError = res.Message
		return "skipped"
	}
	e.Status = domain.StatusSent
	e.LastError = ""
	return "sent"
}

func (d *Dispatcher) retry(e *domain.Entry, cause error) string {
	e.Attempts++
	e.LastError = cause.Error()
	if e.Attempts >= d.cfg.MaxAttempts {
		e.Status = domain.StatusFailed
		return "failed"
	}
	e.NextAttemptAt = d.now().UTC().Add(domain.Backoff(e.Attempts, d.cfg.BaseBackoff, d.cfg.MaxBackoff))
	return "retried"
}

func (d *Dispatcher) fail(e *domain.Entry, reason string) string {
	e.Attempts++
	e.Status = domain.StatusFailed
	e.LastError = reason
	return "failed"
}
