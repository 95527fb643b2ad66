package service

import (
	"context"
	"errors"
	"time"

	courtserrors "courtside/internal/courts/errors"
	courtsrepo "courtside/internal/courts/repository"
	maintenancerepo "courtside/internal/maintenance/repository"
	reservationsrepo "courtside/internal/reservations/repository"
	"courtside/pkg/clock"
	"courtside/pkg/config"
	apperrors "courtside/pkg/errors"
)

const (
	MinSlotMinutes = 15
	MaxSlotMinutes = 8 * 60
)

type Query struct {
	CourtID         string
	Date            time.Time
	DurationMinutes int
	UserID          string
}

type AvailabilityService interface {
	ForCourt(ctx context.Context, query Query) ([]Slot, error)
}

type availabilityService struct {
	courts       courtsrepo.CourtRepository
	maintenance  maintenancerepo.MaintenanceRepository
	reservations reservationsrepo.ReservationRepository
	clock        clock.Clock
	cfg          *config.Config
}

func NewAvailabilityService(
	courts courtsrepo.CourtRepository,
	maintenance maintenancerepo.MaintenanceRepository,
	reservations reservationsrepo.ReservationRepository,
	clk clock.Clock,
	cfg *config.Config,
) AvailabilityService {
	return &availabilityService{
		courts:       courts,
		maintenance:  maintenance,
		reservations: reservations,
		clock:        clk,
		cfg:          cfg,
	}
}

// ForCourt reads without a transaction. The result is advisory; Create
// re-checks the interval atomically.
func (s *availabilityService) ForCourt(ctx context.Context, query Query) ([]Slot, error) {
	if query.DurationMinutes == 0 {
		query.DurationMinutes = s.cfg.DefaultSlotMinutes
	}
	if query.DurationMinutes < MinSlotMinutes || query.DurationMinutes > MaxSlotMinutes {
		return nil, apperrors.InvalidInput("duration must be between 15 and 480 minutes")
	}

	court, err := s.courts.FindByID(ctx, query.CourtID)
	if err != nil {
		if errors.Is(err, courtserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Court", query.CourtID)
		}
		s.cfg.Log.Error("Failed to load court for availability", "court_id", query.CourtID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve court", err)
	}

	dayStart := clock.StartOfDay(query.Date, s.cfg.Location)
	dayEnd := dayStart.AddDate(0, 0, 1)

	windows, err := s.maintenance.FindOverlapping(ctx, court.ID, dayStart, dayEnd)
	if err != nil {
		s.cfg.Log.Error("Failed to load maintenance windows", "court_id", court.ID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve maintenance windows", err)
	}
	reservations, err := s.reservations.FindOverlapping(ctx, court.ID, dayStart, dayEnd)
	if err != nil {
		s.cfg.Log.Error("Failed to load reservations", "court_id", court.ID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve reservations", err)
	}

	slots, err := Classify(Input{
		Court:        *court,
		Date:         dayStart,
		SlotMinutes:  query.DurationMinutes,
		UserID:       query.UserID,
		Now:          s.clock.Now(),
		Location:     s.cfg.Location,
		Maintenance:  windows,
		Reservations: reservations,
	})
	if err != nil {
		s.cfg.Log.Error("Court has invalid operating hours", "court_id", court.ID, "error", err)
		return nil, apperrors.Internal("Court has invalid operating hours", err)
	}
	return slots, nil
}
