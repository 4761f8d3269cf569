package domain

import (
	"time"

	"github.com/buildhub-th/procure-backend/internal/apperrors"
	fs "github.com/buildhub-th/procure-backend/internal/storage/firestore"
)

var ErrProjectNotFound = apperrors.NotFound("project not found")

// Project is a construction project that procurement documents reference by
// projectId.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	ProjectNo string    `json:"projectNo,omitempty"`
	Budget    float64   `json:"budget"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func FromMap(id string, data map[string]any) *Project {
	return &Project{
		ID:        id,
		Name:      fs.String(data, "name"),
		Code:      fs.String(data, "code"),
		ProjectNo: fs.String(data, "projectNo"),
		Budget:    fs.Float(data, "budget"),
		Status:    fs.String(data, "status"),
		CreatedAt: fs.Time(data, "createdAt"),
		UpdatedAt: fs.Time(data, "updatedAt"),
	}
}
