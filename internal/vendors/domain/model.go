package domain

import (
	"github.com/buildhub-th/procure-backend/internal/apperrors"
	fs "github.com/buildhub-th/procure-backend/internal/storage/firestore"
)

var ErrVendorNotFound = apperrors.NotFound("vendor not found")

type Vendor struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContactName string `json:"contactName,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Address     string `json:"address,omitempty"`
	TaxID       string `json:"taxId,omitempty"`
	MapURL      string `json:"mapUrl,omitempty"`
}

func FromMap(id string, data map[string]any) *Vendor {
	return &Vendor{
		ID:          id,
		Name:        fs.String(data, "name"),
		ContactName: fs.String(data, "contactName"),
		Phone:       fs.String(data, "phone"),
		Email:       fs.String(data, "email"),
		Address:     fs.String(data, "address"),
		TaxID:       fs.String(data, "taxId"),
		MapURL:      fs.String(data, "mapUrl"),
	}
}

// CardData is the vendor payload read by the notification cards.
func (v *Vendor) CardData() map[string]any {
	return map[string]any{
		"name":        v.Name,
		"contactName": v.ContactName,
		"phone":       v.Phone,
		"address":     v.Address,
		"mapUrl":      v.MapURL,
	}
}
