package content

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	learningrepos "github.com/triviumlab/trivium-backend/internal/data/repos/learning"
	types "github.com/triviumlab/trivium-backend/internal/domain"
)

// Cache is a read-through cache over the static content tree, scoped to a
// single request. Callers construct one per request and drop it when the
// request ends; there is no invalidation because content is read-only for
// the request's lifetime.
type Cache struct {
	units  learningrepos.UnitRepo
	drills learningrepos.DrillRepo

	unitsByCourse map[uuid.UUID][]*types.Unit
	drillsByUnit  map[uuid.UUID][]*types.Drill
}

func NewCache(units learningrepos.UnitRepo, drills learningrepos.DrillRepo) *Cache {
	return &Cache{
		units:         units,
		drills:        drills,
		unitsByCourse: map[uuid.UUID][]*types.Unit{},
		drillsByUnit:  map[uuid.UUID][]*types.Drill{},
	}
}

// UnitsByCourse returns the course's units ordered by position.
func (c *Cache) UnitsByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Unit, error) {
	if cached, ok := c.unitsByCourse[courseID]; ok {
		return cached, nil
	}
	units, err := c.units.GetByCourseIDs(ctx, tx, []uuid.UUID{courseID})
	if err != nil {
		return nil, err
	}
	c.unitsByCourse[courseID] = units
	return units, nil
}

// DrillsByUnit returns the unit's drills ordered by position.
func (c *Cache) DrillsByUnit(ctx context.Context, tx *gorm.DB, unitID uuid.UUID) ([]*types.Drill, error) {
	if cached, ok := c.drillsByUnit[unitID]; ok {
		return cached, nil
	}
	drills, err := c.drills.GetByUnitIDs(ctx, tx, []uuid.UUID{unitID})
	if err != nil {
		return nil, err
	}
	c.drillsByUnit[unitID] = drills
	return drills, nil
}
