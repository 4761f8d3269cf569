package repository

import (
	"context"

	"cloud.google.com/go/firestore"

	"github.com/buildhub-th/procure-backend/internal/apperrors"
	fs "github.com/buildhub-th/procure-backend/internal/storage/firestore"
	"github.com/buildhub-th/procure-backend/internal/vendors/domain"
)

type VendorRepository struct {
	client *firestore.Client
}

func NewVendorRepository(client *firestore.Client) *VendorRepository {
	return &VendorRepository{client: client}
}

func (r *VendorRepository) Get(ctx context.Context, id string) (*domain.Vendor, error) {
	snap, err := r.client.Collection(fs.CollectionVendors).Doc(id).Get(ctx)
	if err != nil {
		if fs.IsNotFound(err) {
			return nil, domain.ErrVendorNotFound
		}
		return nil, apperrors.Service("failed to load vendor", err)
	}
	return domain.FromMap(snap.Ref.ID, snap.Data()), nil
}

func (r *VendorRepository) List(ctx context.Context) ([]*domain.Vendor, error) {
	out := make([]*domain.Vendor, 0, 32)
	err := fs.All(r.client.Collection(fs.CollectionVendors).OrderBy("name", firestore.Asc).Documents(ctx), func(snap *firestore.DocumentSnapshot) error {
		out = append(out, domain.FromMap(snap.Ref.ID, snap.Data()))
		return nil
	})
	if err != nil {
		return nil, apperrors.Service("failed to list vendors", err)
	}
	return out, nil
}
