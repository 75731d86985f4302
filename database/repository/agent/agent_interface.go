package agentRepo

import (
	"errors"

	"planora/models"
)

// ErrNotFound is returned when no agent matches the given ID.
var ErrNotFound = errors.New("agent not found")

// AgentRepository defines lookups over the agent pool.
type AgentRepository interface {
	Create(agent *models.Agent) error
	GetByID(agentID string) (*models.Agent, error)

	// FindByServiceCategory returns approved, active agents offering the
	// category, nearest first within radiusKm of the given point.
	FindByServiceCategory(category string, near models.GeoPoint, radiusKm float64) ([]models.Agent, error)

	// ListActiveIDs returns the IDs of every approved, active agent.
	ListActiveIDs() ([]string, error)

	UpdateFCMToken(agentID, token string) error
}
