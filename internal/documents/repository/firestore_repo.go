package repository

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/buildhub-th/procure-backend/internal/apperrors"
	"github.com/buildhub-th/procure-backend/internal/documents/domain"
	outbox "github.com/buildhub-th/procure-backend/internal/outbox/domain"
	fs "github.com/buildhub-th/procure-backend/internal/storage/firestore"
)

type DocumentRepository struct {
	client *firestore.Client
	now    func() time.Time
}

func NewDocumentRepository(client *firestore.Client) *DocumentRepository {
	return &DocumentRepository{client: client, now: time.Now}
}

func (r *DocumentRepository) Get(ctx context.Context, t domain.Type, id string) (*domain.Document, error) {
	snap, err := r.client.Collection(t.Collection()).Doc(id).Get(ctx)
	if err != nil {
		if fs.IsNotFound(err) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, apperrors.Service("failed to load document", err)
	}
	return domain.FromMap(t, snap.Ref.ID, snap.Data()), nil
}

// ListByProject returns the documents of one type that reference projectID.
func (r *DocumentRepository) ListByProject(ctx context.Context, t domain.Type, projectID string) ([]*domain.Document, error) {
	out := make([]*domain.Document, 0, 16)
	q := r.client.Collection(t.Collection()).Where("projectId", "==", projectID)
	err := fs.All(q.Documents(ctx), func(snap *firestore.DocumentSnapshot) error {
		out = append(out, domain.FromMap(t, snap.Ref.ID, snap.Data()))
		return nil
	})
	if err != nil {
		return nil, apperrors.Service("failed to list documents", err)
	}
	return out, nil
}

// CountByProject counts documents of every type that reference projectID.
func (r *DocumentRepository) CountByProject(ctx context.Context, projectID string) (int, error) {
	total := 0
	for _, t := range domain.AllTypes {
		docs, err := r.ListByProject(ctx, t, projectID)
		if err != nil {
			return 0, err
		}
		total += len(docs)
	}
	return total, nil
}

type ApproveOutcome struct {
	Document        *domain.Document
	AlreadyApproved bool
	Outbox          *outbox.Entry
}

// Approve moves a draft or pending document to approved. The status read,
// the write and the notification intent commit together; a concurrent
// approver re-runs and observes AlreadyApproved.
func (r *DocumentRepository) Approve(ctx context.Context, t domain.Type, id, approverUID string) (*ApproveOutcome, error) {
	ref := r.client.Collection(t.Collection()).Doc(id)
	var out *ApproveOutcome
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		out = nil
		snap, err := tx.Get(ref)
		if err != nil {
			if fs.IsNotFound(err) {
				return domain.ErrDocumentNotFound
			}
			return err
		}
		doc := domain.FromMap(t, snap.Ref.ID, snap.Data())
		if doc.Approved() {
			out = &ApproveOutcome{Document: doc, AlreadyApproved: true}
			return nil
		}
		if !doc.Approvable() {
			return domain.ErrNotApprovable
		}

		if err := tx.Update(ref, []firestore.Update{
			{Path: "status", Value: string(domain.StatusApproved)},
			{Path: "approvedAt", Value: firestore.ServerTimestamp},
			{Path: "approvedBy", Value: approverUID},
			{Path: "updatedAt", Value: firestore.ServerTimestamp},
		}); err != nil {
			return err
		}

		now := r.now().UTC()
		doc.Status = domain.StatusApproved
		doc.ApprovedBy = approverUID
		doc.ApprovedAt = &now
		out = &ApproveOutcome{Document: doc}

		if t.Notifies() {
			entry := outbox.NewApprovalEntry(string(t), doc.ID, doc.ProjectID, now)
			if err := tx.Create(r.client.Collection(fs.CollectionOutbox).Doc(entry.ID), entry); err != nil {
				return err
			}
			out.Outbox = entry
		}
		return nil
	})
	if err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperrors.Service("failed to approve document", err)
	}
	return out, nil
}
