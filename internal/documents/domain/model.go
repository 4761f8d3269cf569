// Package domain models the approvable procurement documents: purchase
// orders, variation orders and work contracts.
package domain

import (
	"strings"
	"time"

	"github.com/buildhub-th/procure-backend/internal/apperrors"
	fs "github.com/buildhub-th/procure-backend/internal/storage/firestore"
)

type Type string

const (
	TypePO Type = "po"
	TypeVO Type = "vo"
	TypeWC Type = "wc"
)

type Status string

const (
	StatusDraft    Status = "draft"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var (
	ErrUnknownType      = apperrors.BadRequest("unknown document type")
	ErrMissingID        = apperrors.BadRequest("document id is required")
	ErrDocumentNotFound = apperrors.NotFound("Document not found")
	ErrNotApprovable    = apperrors.Conflict("document cannot be approved in its current status")
)

// AllTypes lists every approvable document type.
var AllTypes = []Type{TypePO, TypeVO, TypeWC}

// ParseType accepts the lower- or upper-case short form ("po", "VO").
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case TypePO, TypeVO, TypeWC:
		return t, nil
	}
	return "", ErrUnknownType
}

func (t Type) Collection() string {
	switch t {
	case TypePO:
		return fs.CollectionPurchaseOrders
	case TypeVO:
		return fs.CollectionVariationOrders
	default:
		return fs.CollectionWorkContracts
	}
}

// NumberField is the field holding the human-facing document number.
func (t Type) NumberField() string {
	switch t {
	case TypePO:
		return "poNumber"
	case TypeVO:
		return "voNumber"
	default:
		return "contractNumber"
	}
}

// Notifies reports whether approving this type sends a LINE card.
func (t Type) Notifies() bool {
	return t == TypePO || t == TypeVO
}

type Document struct {
	ID          string         `json:"id"`
	Type        Type           `json:"type"`
	Number      string         `json:"number"`
	Title       string         `json:"title"`
	ProjectID   string         `json:"projectId"`
	VendorID    string         `json:"vendorId,omitempty"`
	Status      Status         `json:"status"`
	TotalAmount float64        `json:"totalAmount"`
	ApprovedAt  *time.Time     `json:"approvedAt,omitempty"`
	ApprovedBy  string         `json:"approvedBy,omitempty"`
	Data        map[string]any `json:"data"`
}

// FromMap builds a Document from raw Firestore fields. The raw map is kept
// for card rendering, which reads type-specific fields.
func FromMap(t Type, id string, data map[string]any) *Document {
	d := &Document{
		ID:          id,
		Type:        t,
		Number:      fs.String(data, t.NumberField()),
		Title:       fs.String(data, "title"),
		ProjectID:   fs.String(data, "projectId"),
		VendorID:    fs.String(data, "vendorId"),
		Status:      Status(fs.String(data, "status")),
		TotalAmount: fs.Float(data, "totalAmount"),
		ApprovedBy:  fs.String(data, "approvedBy"),
		Data:        data,
	}
	if d.Status == "" {
		d.Status = StatusDraft
	}
	if at := fs.Time(data, "approvedAt"); !at.IsZero() {
		d.ApprovedAt = &at
	}
	return d
}

func (d *Document) Approved() bool {
	return d.Status == StatusApproved
}

// Approvable reports whether the approval flow may move the document to
// approved.
func (d *Document) Approvable() bool {
	return d.Status == StatusDraft || d.Status == StatusPending
}
