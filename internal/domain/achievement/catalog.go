// Package achievement holds the achievement catalog and the awarding rules.
//
// Catalog ids are assigned sequentially from 1 and never reused. Once an id
// has been issued it is referenced by external observers, so restoring a
// persisted catalog must keep every id and only append new definitions.
package achievement

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/okian/repute/internal/domain/model"
)

// Definition describes a catalog entry before it has been issued an id.
// The koanf tags let definitions be loaded from the YAML config file.
type Definition struct {
	Name           string `koanf:"name" json:"name"`
	Description    string `koanf:"description" json:"description"`
	Criteria       string `koanf:"criteria" json:"criteria"`
	Points         uint32 `koanf:"points" json:"points"`
	MinTasks       uint32 `koanf:"min_tasks" json:"min_tasks"`
	MinSuccessRate uint32 `koanf:"min_success_rate" json:"min_success_rate"`
}

// Validate checks a definition before it is issued an id.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidDefinition)
	}
	if d.MinSuccessRate > 100 {
		return fmt.Errorf("%w: %s: min_success_rate %d above 100", ErrInvalidDefinition, d.Name, d.MinSuccessRate)
	}
	return nil
}

// DefaultDefinitions returns the built-in catalog in issue order.
func DefaultDefinitions() []Definition {
	return []Definition{
		{
			Name:        "First Task",
			Description: "Complete your first task",
			Criteria:    "tasks_completed >= 1",
			Points:      10,
			MinTasks:    1,
		},
		{
			Name:        "Veteran",
			Description: "Complete 10 tasks",
			Criteria:    "tasks_completed >= 10",
			Points:      50,
			MinTasks:    10,
		},
		{
			Name:           "Perfect Record",
			Description:    "Complete 10 tasks without a single failure",
			Criteria:       "tasks_completed >= 10 and success_rate == 100",
			Points:         100,
			MinTasks:       10,
			MinSuccessRate: 100,
		},
		{
			Name:           "Reliable",
			Description:    "Complete 25 tasks with at least 90% success",
			Criteria:       "tasks_completed >= 25 and success_rate >= 90",
			Points:         150,
			MinTasks:       25,
			MinSuccessRate: 90,
		},
		{
			Name:        "Centurion",
			Description: "Complete 100 tasks",
			Criteria:    "tasks_completed >= 100",
			Points:      500,
			MinTasks:    100,
		},
	}
}

// Catalog is the concurrency-safe set of issued achievements.
type Catalog struct {
	mu     sync.RWMutex
	byID   map[uint64]model.Achievement
	byName map[string]uint64
	nextID uint64
}

// NewCatalog returns an empty catalog whose first issued id is 1.
func NewCatalog() *Catalog {
	return &Catalog{
		byID:   make(map[uint64]model.Achievement),
		byName: make(map[string]uint64),
		nextID: 1,
	}
}

// Restore loads previously issued achievements, keeping their ids, and
// moves the id counter past them. next is the persisted counter; the
// larger of next and max(id)+1 wins.
func (c *Catalog) Restore(items []model.Achievement, next uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, a := range items {
		c.byID[a.ID] = a
		c.byName[a.Name] = a.ID
		if a.ID >= c.nextID {
			c.nextID = a.ID + 1
		}
	}
	if next > c.nextID {
		c.nextID = next
	}
}

// Register issues the next sequential id to def.
func (c *Catalog) Register(def Definition) (model.Achievement, error) {
	if err := def.Validate(); err != nil {
		return model.Achievement{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registerLocked(def), nil
}

func (c *Catalog) registerLocked(def Definition) model.Achievement {
	a := model.Achievement{
		ID:             c.nextID,
		Name:           def.Name,
		Description:    def.Description,
		Points:         def.Points,
		Criteria:       def.Criteria,
		MinTasks:       def.MinTasks,
		MinSuccessRate: def.MinSuccessRate,
	}
	c.nextID++
	c.byID[a.ID] = a
	c.byName[a.Name] = a.ID
	return a
}

// Bootstrap registers every definition whose name is not in the catalog
// yet and returns the newly issued entries in id order. Running it twice
// with the same definitions issues nothing the second time.
func (c *Catalog) Bootstrap(defs []Definition) ([]model.Achievement, error) {
	for _, d := range defs {
		if err := d.Validate(); err != nil {
			return nil, err
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var issued []model.Achievement
	for _, d := range defs {
		if _, ok := c.byName[d.Name]; ok {
			continue
		}
		issued = append(issued, c.registerLocked(d))
	}
	return issued, nil
}

// Get returns the achievement with the given id.
func (c *Catalog) Get(id uint64) (model.Achievement, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.byID[id]
	if !ok {
		return model.Achievement{}, fmt.Errorf("%w: %d", ErrAchievementNotFound, id)
	}
	return a, nil
}

// List returns every achievement ordered by id.
func (c *Catalog) List() []model.Achievement {
	c.mu.RLock()
	out := make([]model.Achievement, 0, len(c.byID))
	for _, a := range c.byID {
		out = append(out, a)
	}
	c.mu.RUnlock()
	slices.SortFunc(out, func(a, b model.Achievement) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

// Len returns the number of issued achievements.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}

// NextID returns the id the next registration will receive.
func (c *Catalog) NextID() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nextID
}
