package repository

import (
	"context"

	"cloud.google.com/go/firestore"

	"github.com/buildhub-th/procure-backend/internal/apperrors"
	"github.com/buildhub-th/procure-backend/internal/projects/domain"
	fs "github.com/buildhub-th/procure-backend/internal/storage/firestore"
)

// ProjectRepository provides persistence operations for projects
type ProjectRepository struct {
	client *firestore.Client
}

func NewProjectRepository(client *firestore.Client) *ProjectRepository {
	return &ProjectRepository{client: client}
}

func (r *ProjectRepository) col() *firestore.CollectionRef {
	return r.client.Collection(fs.CollectionProjects)
}

// List returns every project ordered by name.
func (r *ProjectRepository) List(ctx context.Context) ([]*domain.Project, error) {
	out := make([]*domain.Project, 0, 16)
	err := fs.All(r.col().OrderBy("name", firestore.Asc).Documents(ctx), func(snap *firestore.DocumentSnapshot) error {
		out = append(out, domain.FromMap(snap.Ref.ID, snap.Data()))
		return nil
	})
	if err != nil {
		return nil, apperrors.Service("failed to list projects", err)
	}
	return out, nil
}

func (r *ProjectRepository) Get(ctx context.Context, id string) (*domain.Project, error) {
	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if fs.IsNotFound(err) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, apperrors.Service("failed to load project", err)
	}
	return domain.FromMap(snap.Ref.ID, snap.Data()), nil
}

// Name returns the project's display name; used when rendering cards.
func (r *ProjectRepository) Name(ctx context.Context, id string) (string, error) {
	p, err := r.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return p.Name, nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.col().Doc(id).Delete(ctx); err != nil {
		return apperrors.Service("failed to delete project", err)
	}
	return nil
}
