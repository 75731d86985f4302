package replacement

import (
	"fmt"
	"sort"
	"sync"

	"planora/models"
	"planora/services/scheduling"

	"go.uber.org/zap"
)

// compositeScore ranks a candidate: 40% proximity, 40% rating, 20%
// experience capped at 100 completed bookings.
func compositeScore(distanceKm, rating float64, completedBookings int) float64 {
	experience := float64(completedBookings) / 100
	if experience > 1 {
		experience = 1
	}
	return 0.4*(1/(distanceKm+1)) + 0.4*rating + 0.2*experience
}

// FindAvailableReplacements builds the ranked candidate list for a booking.
// Agents are fetched by the booking's service category, screened for
// eligibility and calendar conflicts, scored, and sorted best first. Ties
// keep the fetch order, so repeated runs over the same data rank
// identically.
func (s *DefaultReplacementService) FindAvailableReplacements(booking models.Booking, maxDistanceKm float64) ([]models.ReplacementCandidate, error) {
	agents, err := s.Agents.FindByServiceCategory(booking.ServiceCategory, booking.LocationGeo, maxDistanceKm)
	if err != nil {
		return nil, fmt.Errorf("error searching agents for category %q: %w", booking.ServiceCategory, err)
	}

	type screened struct {
		candidate models.ReplacementCandidate
		eligible  bool
		err       error
	}

	pool := make([]models.Agent, 0, len(agents))
	for _, agent := range agents {
		if agent.ID == booking.AgentID {
			continue
		}
		if !agent.Approved || !agent.Active {
			continue
		}
		pool = append(pool, agent)
	}

	results := make([]screened, len(pool))
	var wg sync.WaitGroup
	for i, agent := range pool {
		wg.Add(1)
		go func(i int, agent models.Agent) {
			defer wg.Done()

			distanceKm, err := scheduling.DistanceKm(booking.LocationGeo, agent.LocationGeo)
			if err != nil {
				// One side has coordinates and the other does not, so
				// proximity cannot be judged. Skip rather than guess.
				s.Logger.Debug("skipping candidate without usable coordinates",
					zap.String("agentId", agent.ID),
					zap.String("bookingId", booking.ID))
				return
			}
			if maxDistanceKm > 0 && distanceKm > maxDistanceKm {
				return
			}

			conflicts, err := s.Checker.CheckAvailabilityAndOverlap(agent.ID, booking.Start, booking.End, booking.ID)
			if err != nil {
				results[i] = screened{err: fmt.Errorf("error checking candidate %s: %w", agent.ID, err)}
				return
			}
			if len(conflicts) > 0 {
				return
			}

			results[i] = screened{
				candidate: models.ReplacementCandidate{
					Agent:             agent,
					DistanceKm:        distanceKm,
					Rating:            agent.Rating,
					CompletedBookings: agent.CompletedBookings,
					Score:             compositeScore(distanceKm, agent.Rating, agent.CompletedBookings),
				},
				eligible: true,
			}
		}(i, agent)
	}
	wg.Wait()

	candidates := make([]models.ReplacementCandidate, 0, len(pool))
	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		if r.eligible {
			candidates = append(candidates, r.candidate)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates, nil
}

// CanReplace evaluates one agent against one booking and reports every
// failed rule, so support staff see the whole picture instead of the first
// failure.
func (s *DefaultReplacementService) CanReplace(agentID, bookingID string) (*models.CanReplaceResult, error) {
	agent, err := s.Agents.GetByID(agentID)
	if err != nil {
		return nil, fmt.Errorf("error loading agent %s: %w", agentID, err)
	}
	booking, err := s.Bookings.GetByID(bookingID)
	if err != nil {
		return nil, fmt.Errorf("error loading booking %s: %w", bookingID, err)
	}
	return s.evaluateCanReplace(*agent, *booking)
}

func (s *DefaultReplacementService) evaluateCanReplace(agent models.Agent, booking models.Booking) (*models.CanReplaceResult, error) {
	result := &models.CanReplaceResult{}

	if agent.ID == booking.AgentID {
		result.Reasons = append(result.Reasons, "agent is already assigned to this booking")
	}
	if !agent.Approved {
		result.Reasons = append(result.Reasons, "agent is not approved")
	}
	if !agent.Active {
		result.Reasons = append(result.Reasons, "agent account is not active")
	}
	if !agent.OffersCategory(booking.ServiceCategory) {
		result.Reasons = append(result.Reasons, fmt.Sprintf("agent does not offer service category %q", booking.ServiceCategory))
	}

	distanceKm, err := scheduling.DistanceKm(booking.LocationGeo, agent.LocationGeo)
	if err != nil {
		result.Reasons = append(result.Reasons, "distance cannot be determined: agent or booking is missing coordinates")
	} else {
		result.DistanceKm = distanceKm
		if agent.ServiceRadiusKm > 0 && distanceKm > agent.ServiceRadiusKm {
			result.Reasons = append(result.Reasons, fmt.Sprintf("booking is %.1f km away, outside the agent's %.1f km service radius", distanceKm, agent.ServiceRadiusKm))
		}
	}

	conflicts, err := s.Checker.CheckAvailabilityAndOverlap(agent.ID, booking.Start, booking.End, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("error checking agent %s schedule: %w", agent.ID, err)
	}
	for _, c := range conflicts {
		result.Reasons = append(result.Reasons, c.Message)
	}

	result.CanReplace = len(result.Reasons) == 0
	return result, nil
}
