package replacement

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"testing"
	"time"

	"planora/database/repository"
	replacementRepo "planora/database/repository/replacement"
	"planora/models"

	"go.uber.org/zap"
)

var serviceDay = time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

type fakeReplacementStore struct {
	mu   sync.Mutex
	byID map[string]*models.ReplacementRequest
}

func newFakeReplacementStore() *fakeReplacementStore {
	return &fakeReplacementStore{byID: map[string]*models.ReplacementRequest{}}
}

func (f *fakeReplacementStore) Create(req *models.ReplacementRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.byID {
		if r.BookingID == req.BookingID && r.Status.Active() {
			return replacementRepo.ErrActiveRequestExists
		}
	}
	cp := *req
	f.byID[req.ID] = &cp
	return nil
}

func (f *fakeReplacementStore) GetByID(requestID string) (*models.ReplacementRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byID[requestID]
	if !ok {
		return nil, replacementRepo.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReplacementStore) FindActiveByBooking(bookingID string) (*models.ReplacementRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.byID {
		if r.BookingID == bookingID && r.Status.Active() {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeReplacementStore) ListByBooking(bookingID string) ([]models.ReplacementRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ReplacementRequest
	for _, r := range f.byID {
		if r.BookingID == bookingID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
	return out, nil
}

func (f *fakeReplacementStore) ApplyTransition(req *models.ReplacementRequest, fromStatus models.ReplacementStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[req.ID]
	if !ok || stored.Status != fromStatus {
		return replacementRepo.ErrStaleRequest
	}
	cp := *req
	f.byID[req.ID] = &cp
	return nil
}

type fakeBookingStore struct {
	mu   sync.Mutex
	byID map[string]*models.Booking
}

func newFakeBookingStore(bookings ...models.Booking) *fakeBookingStore {
	f := &fakeBookingStore{byID: map[string]*models.Booking{}}
	for _, b := range bookings {
		cp := b
		f.byID[b.ID] = &cp
	}
	return f
}

func (f *fakeBookingStore) GetByID(bookingID string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.byID[bookingID]
	if !ok {
		return nil, fmt.Errorf("booking %s not found", bookingID)
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookingStore) ReassignAgent(bookingID, newAgentID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.byID[bookingID]
	if !ok {
		return fmt.Errorf("booking %s not found", bookingID)
	}
	b.AgentID = newAgentID
	b.IsReplacement = true
	b.ReplacementReason = reason
	return nil
}

func (f *fakeBookingStore) RevertAgent(bookingID, originalAgentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.byID[bookingID]
	if !ok {
		return fmt.Errorf("booking %s not found", bookingID)
	}
	b.AgentID = originalAgentID
	b.IsReplacement = false
	b.ReplacementReason = ""
	return nil
}

type fakeAgentDirectory struct {
	agents []models.Agent
}

func (f *fakeAgentDirectory) GetByID(agentID string) (*models.Agent, error) {
	for _, a := range f.agents {
		if a.ID == agentID {
			cp := a
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("agent %s not found", agentID)
}

func (f *fakeAgentDirectory) FindByServiceCategory(category string, near models.GeoPoint, radiusKm float64) ([]models.Agent, error) {
	var out []models.Agent
	for _, a := range f.agents {
		if a.OffersCategory(category) {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeConflictChecker struct {
	conflictsByAgent map[string][]models.Conflict
}

func (f *fakeConflictChecker) CheckAvailabilityAndOverlap(agentID string, start, end time.Time, excludeBookingID string) ([]models.Conflict, error) {
	return f.conflictsByAgent[agentID], nil
}

// agentAt places an agent exactly km kilometres due north of the origin.
// With a shared longitude the haversine distance reduces to arc length, so
// the offset translates back to km without error.
func agentAt(id string, km, rating float64, completed int) models.Agent {
	lat := km / 6371 * 180 / math.Pi
	return models.Agent{
		ID:                id,
		Name:              id,
		LocationGeo:       models.NewGeoPoint(lat, 0),
		ServiceCategories: []string{"plumbing"},
		Approved:          true,
		Active:            true,
		Rating:            rating,
		CompletedBookings: completed,
	}
}

func testBooking() models.Booking {
	return models.Booking{
		ID:              "b1",
		AgentID:         "orig",
		ClientID:        "c1",
		ServiceCategory: "plumbing",
		Start:           serviceDay.Add(10 * time.Hour),
		End:             serviceDay.Add(12 * time.Hour),
		LocationGeo:     models.NewGeoPoint(0, 0),
		Status:          models.BookingScheduled,
	}
}

func newTestService(store repository.ReplacementRepository, bookings *fakeBookingStore, agents *fakeAgentDirectory, checker *fakeConflictChecker) *DefaultReplacementService {
	return NewReplacementService(store, bookings, agents, checker, nil, nil, zap.NewNop(), 25, 5)
}

func TestRequestReplacementSingleton(t *testing.T) {
	store := newFakeReplacementStore()
	bookings := newFakeBookingStore(testBooking())
	svc := newTestService(store, bookings, &fakeAgentDirectory{}, &fakeConflictChecker{})

	req, err := svc.RequestReplacement("b1", "orig", "agent ill")
	if err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	if req.Status != models.ReplacementPending {
		t.Fatalf("status = %s, want %s", req.Status, models.ReplacementPending)
	}
	if req.RequestedAt.IsZero() {
		t.Fatal("RequestedAt not set")
	}

	_, err = svc.RequestReplacement("b1", "orig", "agent still ill")
	if !errors.Is(err, replacementRepo.ErrActiveRequestExists) {
		t.Fatalf("second request error = %v, want ErrActiveRequestExists", err)
	}
}

func TestRequestReplacementRejectsUnassignedAgent(t *testing.T) {
	store := newFakeReplacementStore()
	bookings := newFakeBookingStore(testBooking())
	svc := newTestService(store, bookings, &fakeAgentDirectory{}, &fakeConflictChecker{})

	if _, err := svc.RequestReplacement("b1", "someone-else", "sick"); err == nil {
		t.Fatal("expected error for agent not assigned to the booking")
	}
}

func TestProposeAcceptReassignsBooking(t *testing.T) {
	store := newFakeReplacementStore()
	bookings := newFakeBookingStore(testBooking())
	agents := &fakeAgentDirectory{agents: []models.Agent{agentAt("agent-a", 2, 4.8, 100)}}
	svc := newTestService(store, bookings, agents, &fakeConflictChecker{})

	req, err := svc.RequestReplacement("b1", "orig", "family emergency")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if _, err := svc.ProposeReplacement(req.ID, "agent-a"); err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	accepted, err := svc.AcceptReplacement(req.ID)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if accepted.Status != models.ReplacementAccepted {
		t.Fatalf("status = %s, want %s", accepted.Status, models.ReplacementAccepted)
	}
	if accepted.AcceptedAt == nil {
		t.Fatal("AcceptedAt not set")
	}

	booking, _ := bookings.GetByID("b1")
	if booking.AgentID != "agent-a" {
		t.Fatalf("booking agent = %s, want agent-a", booking.AgentID)
	}
	if !booking.IsReplacement {
		t.Fatal("booking not flagged as replacement")
	}
	if booking.ReplacementReason != "family emergency" {
		t.Fatalf("replacement reason = %q, want %q", booking.ReplacementReason, "family emergency")
	}
}

func TestAcceptWithoutProposedAgentFails(t *testing.T) {
	store := newFakeReplacementStore()
	bookings := newFakeBookingStore(testBooking())
	svc := newTestService(store, bookings, &fakeAgentDirectory{}, &fakeConflictChecker{})

	req, err := svc.RequestReplacement("b1", "orig", "sick")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if _, err := svc.AcceptReplacement(req.ID); !errors.Is(err, models.ErrNoReplacementAgent) {
		t.Fatalf("accept error = %v, want ErrNoReplacementAgent", err)
	}

	stored, _ := store.GetByID(req.ID)
	if stored.Status != models.ReplacementPending {
		t.Fatalf("stored status = %s, want pending after failed accept", stored.Status)
	}
}

func TestAcceptThenCancelRevertsBooking(t *testing.T) {
	store := newFakeReplacementStore()
	bookings := newFakeBookingStore(testBooking())
	agents := &fakeAgentDirectory{agents: []models.Agent{agentAt("agent-a", 2, 4.8, 100)}}
	svc := newTestService(store, bookings, agents, &fakeConflictChecker{})

	req, _ := svc.RequestReplacement("b1", "orig", "injured")
	if _, err := svc.ProposeReplacement(req.ID, "agent-a"); err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	if _, err := svc.AcceptReplacement(req.ID); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	cancelled, err := svc.CancelReplacement(req.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != models.ReplacementCancelled {
		t.Fatalf("status = %s, want %s", cancelled.Status, models.ReplacementCancelled)
	}
	if cancelled.CancelledAt == nil {
		t.Fatal("CancelledAt not set")
	}

	booking, _ := bookings.GetByID("b1")
	if booking.AgentID != "orig" {
		t.Fatalf("booking agent = %s, want orig after revert", booking.AgentID)
	}
	if booking.IsReplacement {
		t.Fatal("booking still flagged as replacement after revert")
	}
	if booking.ReplacementReason != "" {
		t.Fatalf("replacement reason = %q, want empty after revert", booking.ReplacementReason)
	}
}

func TestDeclineIsTerminalAndFreesSlot(t *testing.T) {
	store := newFakeReplacementStore()
	bookings := newFakeBookingStore(testBooking())
	agents := &fakeAgentDirectory{agents: []models.Agent{agentAt("agent-a", 2, 4.8, 100)}}
	svc := newTestService(store, bookings, agents, &fakeConflictChecker{})

	req, _ := svc.RequestReplacement("b1", "orig", "sick")
	if _, err := svc.ProposeReplacement(req.ID, "agent-a"); err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	declined, err := svc.DeclineReplacement(req.ID, "too far away")
	if err != nil {
		t.Fatalf("decline failed: %v", err)
	}
	if declined.Status != models.ReplacementDeclined {
		t.Fatalf("status = %s, want %s", declined.Status, models.ReplacementDeclined)
	}
	if declined.DeclineReason != "too far away" {
		t.Fatalf("decline reason = %q, want %q", declined.DeclineReason, "too far away")
	}

	var transitionErr *models.InvalidTransitionError
	if _, err := svc.AcceptReplacement(req.ID); !errors.As(err, &transitionErr) {
		t.Fatalf("accept after decline error = %v, want InvalidTransitionError", err)
	}

	// A declined request no longer blocks the booking's replacement slot.
	if _, err := svc.RequestReplacement("b1", "orig", "still sick"); err != nil {
		t.Fatalf("new request after decline failed: %v", err)
	}
}

// staleStore hands out a frozen snapshot of one request so a transition can
// race a concurrent writer.
type staleStore struct {
	*fakeReplacementStore
	stale *models.ReplacementRequest
}

func (s *staleStore) GetByID(requestID string) (*models.ReplacementRequest, error) {
	if s.stale != nil && s.stale.ID == requestID {
		cp := *s.stale
		return &cp, nil
	}
	return s.fakeReplacementStore.GetByID(requestID)
}

func TestAcceptSurfacesStaleRequest(t *testing.T) {
	store := &staleStore{fakeReplacementStore: newFakeReplacementStore()}
	bookings := newFakeBookingStore(testBooking())
	agents := &fakeAgentDirectory{agents: []models.Agent{agentAt("agent-a", 2, 4.8, 100)}}
	svc := newTestService(store, bookings, agents, &fakeConflictChecker{})

	req, _ := svc.RequestReplacement("b1", "orig", "sick")
	if _, err := svc.ProposeReplacement(req.ID, "agent-a"); err != nil {
		t.Fatalf("propose failed: %v", err)
	}

	// Freeze the pending view, then let another writer decline underneath.
	snapshot, _ := store.fakeReplacementStore.GetByID(req.ID)
	concurrent, _ := store.fakeReplacementStore.GetByID(req.ID)
	if err := concurrent.Decline("changed my mind", time.Now()); err != nil {
		t.Fatalf("concurrent decline failed: %v", err)
	}
	if err := store.fakeReplacementStore.ApplyTransition(concurrent, models.ReplacementPending); err != nil {
		t.Fatalf("concurrent transition failed: %v", err)
	}
	store.stale = snapshot

	if _, err := svc.AcceptReplacement(req.ID); !errors.Is(err, replacementRepo.ErrStaleRequest) {
		t.Fatalf("accept error = %v, want ErrStaleRequest", err)
	}
}

func TestFindAndProposeReplacement(t *testing.T) {
	store := newFakeReplacementStore()
	bookings := newFakeBookingStore(testBooking())
	agents := &fakeAgentDirectory{agents: []models.Agent{
		agentAt("agent-a", 2, 4.8, 100),
		agentAt("agent-b", 10, 4.9, 200),
		agentAt("agent-c", 1, 3.0, 50),
	}}
	svc := newTestService(store, bookings, agents, &fakeConflictChecker{})

	req, _ := svc.RequestReplacement("b1", "orig", "sick")
	candidates, err := svc.FindAndProposeReplacement(req.ID, 2)
	if err != nil {
		t.Fatalf("find and propose failed: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2 after truncation", len(candidates))
	}
	if candidates[0].Agent.ID != "agent-a" {
		t.Fatalf("best candidate = %s, want agent-a", candidates[0].Agent.ID)
	}

	stored, _ := store.GetByID(req.ID)
	if stored.ReplacementAgentID != "agent-a" {
		t.Fatalf("proposed agent = %s, want agent-a", stored.ReplacementAgentID)
	}
	if stored.ProposedAt == nil {
		t.Fatal("ProposedAt not set")
	}
}

func TestFindAndProposeReplacementEmptyPool(t *testing.T) {
	store := newFakeReplacementStore()
	bookings := newFakeBookingStore(testBooking())
	svc := newTestService(store, bookings, &fakeAgentDirectory{}, &fakeConflictChecker{})

	req, _ := svc.RequestReplacement("b1", "orig", "sick")
	candidates, err := svc.FindAndProposeReplacement(req.ID, 5)
	if err != nil {
		t.Fatalf("find and propose failed: %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("got %d candidates, want 0", len(candidates))
	}

	stored, _ := store.GetByID(req.ID)
	if stored.ReplacementAgentID != "" {
		t.Fatalf("proposed agent = %s, want none", stored.ReplacementAgentID)
	}
}

func TestFindAndProposeReplacementRequiresPending(t *testing.T) {
	store := newFakeReplacementStore()
	bookings := newFakeBookingStore(testBooking())
	agents := &fakeAgentDirectory{agents: []models.Agent{agentAt("agent-a", 2, 4.8, 100)}}
	svc := newTestService(store, bookings, agents, &fakeConflictChecker{})

	req, _ := svc.RequestReplacement("b1", "orig", "sick")
	if _, err := svc.ProposeReplacement(req.ID, "agent-a"); err != nil {
		t.Fatalf("propose failed: %v", err)
	}
	if _, err := svc.AcceptReplacement(req.ID); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	var transitionErr *models.InvalidTransitionError
	if _, err := svc.FindAndProposeReplacement(req.ID, 5); !errors.As(err, &transitionErr) {
		t.Fatalf("error = %v, want InvalidTransitionError on accepted request", err)
	}
}
