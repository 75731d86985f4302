package repository

import (
	agentRepo "planora/database/repository/agent"
	availabilityRepo "planora/database/repository/availability"
	bookingRepo "planora/database/repository/booking"
	clientRepo "planora/database/repository/client"
	replacementRepo "planora/database/repository/replacement"
)

// Re-export the BookingRepository interface and constructor.
type BookingRepository = bookingRepo.BookingRepository

var NewMongoBookingRepo = bookingRepo.NewMongoBookingRepo

// Re-export the AgentRepository interface and constructor.
type AgentRepository = agentRepo.AgentRepository

var NewMongoAgentRepo = agentRepo.NewMongoAgentRepo

// Re-export the AvailabilityRepository interface and constructor.
type AvailabilityRepository = availabilityRepo.AvailabilityRepository

var NewMongoAvailabilityRepo = availabilityRepo.NewMongoAvailabilityRepo

// Re-export the ReplacementRepository interface and constructor.
type ReplacementRepository = replacementRepo.ReplacementRepository

var NewMongoReplacementRepo = replacementRepo.NewMongoReplacementRepo

// Re-export the ClientRepository interface and constructor.
type ClientRepository = clientRepo.ClientRepository

var NewMongoClientRepo = clientRepo.NewMongoClientRepo
