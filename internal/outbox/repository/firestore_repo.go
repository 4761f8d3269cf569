package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/buildhub-th/procure-backend/internal/apperrors"
	"github.com/buildhub-th/procure-backend/internal/outbox/domain"
	fs "github.com/buildhub-th/procure-backend/internal/storage/firestore"
)

type OutboxRepository struct {
	client *firestore.Client
}

func NewOutboxRepository(client *firestore.Client) *OutboxRepository {
	return &OutboxRepository{client: client}
}

func (r *OutboxRepository) col() *firestore.CollectionRef {
	return r.client.Collection(fs.CollectionOutbox)
}

func decode(snap *firestore.DocumentSnapshot) (*domain.Entry, error) {
	var e domain.Entry
	if err := snap.DataTo(&e); err != nil {
		return nil, fmt.Errorf("decode outbox entry %s: %w", snap.Ref.ID, err)
	}
	e.ID = snap.Ref.ID
	return &e, nil
}

// Due returns pending entries whose next attempt is at or before now, oldest
// first.
func (r *OutboxRepository) Due(ctx context.Context, now time.Time, limit int) ([]*domain.Entry, error) {
	q := r.col().
		Where("status", "==", string(domain.StatusPending)).
		Where("nextAttemptAt", "<=", now).
		OrderBy("nextAttemptAt", firestore.Asc).
		Limit(limit)

	var out []*domain.Entry
	err := fs.All(q.Documents(ctx), func(snap *firestore.DocumentSnapshot) error {
		e, err := decode(snap)
		if err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, apperrors.Service("failed to load due outbox entries", err)
	}
	return out, nil
}

func (r *OutboxRepository) Get(ctx context.Context, id string) (*domain.Entry, error) {
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if fs.IsNotFound(err) {
			return nil, apperrors.NotFound("outbox entry not found")
		}
		return nil, apperrors.Service("failed to load outbox entry", err)
	}
	return decode(snap)
}

// Save writes the delivery state of an entry.
func (r *OutboxRepository) Save(ctx context.Context, e *domain.Entry) error {
	_, err := r.col().Doc(e.ID).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(e.Status)},
		{Path: "attempts", Value: e.Attempts},
		{Path: "nextAttemptAt", Value: e.NextAttemptAt},
		{Path: "lastError", Value: e.LastError},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return apperrors.Service("failed to update outbox entry", err)
	}
	return nil
}
