package divisions

import (
	"time"

	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
)

// DivisionView is the division representation returned to controllers.
type DivisionView struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func viewFromModel(division *models.Division) *DivisionView {
	if division == nil {
		return nil
	}
	return &DivisionView{
		ID:        division.ID,
		Name:      division.Name,
		IsActive:  division.IsActive,
		CreatedAt: division.CreatedAt,
		UpdatedAt: division.UpdatedAt,
	}
}

func viewsFromModels(divisions []models.Division) []DivisionView {
	views := make([]DivisionView, 0, len(divisions))
	for i := range divisions {
		views = append(views, *viewFromModel(&divisions[i]))
	}
	return views
}
