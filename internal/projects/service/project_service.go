package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/buildhub-th/procure-backend/internal/apperrors"
	"github.com/buildhub-th/procure-backend/internal/audit"
	docdomain "github.com/buildhub-th/procure-backend/internal/documents/domain"
	"github.com/buildhub-th/procure-backend/internal/events"
	"github.com/buildhub-th/procure-backend/internal/logging"
	"github.com/buildhub-th/procure-backend/internal/projects/domain"
)

type ProjectStore interface {
	List(ctx context.Context) ([]*domain.Project, error)
	Get(ctx context.Context, id string) (*domain.Project, error)
	Delete(ctx context.Context, id string) error
}

type DocumentLister interface {
	ListByProject(ctx context.Context, t docdomain.Type, projectID string) ([]*docdomain.Document, error)
	CountByProject(ctx context.Context, projectID string) (int, error)
}

type Publisher interface {
	Publish(ctx context.Context, ev events.Event) error
}

// ProjectService handles project reads and guarded deletion
type ProjectService struct {
	projects  ProjectStore
	documents DocumentLister
	publisher Publisher
	audit     audit.Recorder
}

func NewProjectService(projects ProjectStore, documents DocumentLister, publisher Publisher, rec audit.Recorder) *ProjectService {
	if rec == nil {
		rec = audit.Nop{}
	}
	return &ProjectService{projects: projects, documents: documents, publisher: publisher, audit: rec}
}

func (s *ProjectService) List(ctx context.Context) ([]*domain.Project, error) {
	return s.projects.List(ctx)
}

func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	return s.projects.Get(ctx, id)
}

// Documents lists one document type for an existing project.
func (s *ProjectService) Documents(ctx context.Context, projectID, rawType string) ([]*docdomain.Document, error) {
	t, err := docdomain.ParseType(rawType)
	if err != nil {
		return nil, err
	}
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, err
	}
	return s.documents.ListByProject(ctx, t, projectID)
}

// Delete removes a project. While documents still reference it the call is
// refused unless force is set; forced deletion leaves those documents with a
// dangling projectId and returns how many there were.
func (s *ProjectService) Delete(ctx context.Context, actorUID, id string, force bool) (int, error) {
	if _, err := s.projects.Get(ctx, id); err != nil {
		return 0, err
	}
	count, err := s.documents.CountByProject(ctx, id)
	if err != nil {
		return 0, err
	}
	if count > 0 && !force {
		e := apperrors.Conflict("project still has documents; retry with force=true to orphan them")
		e.Details = map[string]any{"documents": count}
		return 0, e
	}

	if err := s.projects.Delete(ctx, id); err != nil {
		return 0, err
	}

	s.audit.Record(ctx, audit.Event{
		Type:     audit.EventProjectDeleted,
		ActorUID: actorUID,
		Subject:  id,
		Details:  map[string]any{"orphanedDocuments": count, "force": force},
	})
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.Event{Type: events.TypeProjectDeleted, ProjectID: id, ActorUID: actorUID}); err != nil {
			logging.FromContext(ctx).Warn("publish project deletion failed", zap.String("project_id", id), zap.Error(err))
		}
	}
	return count, nil
}
