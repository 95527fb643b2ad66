package service

import (
	"time"

	"courtside/pkg/model"
)

type SlotStatus string

const (
	SlotAvailable   SlotStatus = "AVAILABLE"
	SlotBooked      SlotStatus = "BOOKED"
	SlotUserBooked  SlotStatus = "USER_BOOKED"
	SlotMaintenance SlotStatus = "MAINTENANCE"
	SlotPast        SlotStatus = "PAST"
	SlotUnavailable SlotStatus = "UNAVAILABLE"
)

type Slot struct {
	Start  time.Time  `json:"start"`
	End    time.Time  `json:"end"`
	Status SlotStatus `json:"status"`
}

type Input struct {
	Court        model.Court
	Date         time.Time
	SlotMinutes  int
	UserID       string
	Now          time.Time
	Location     *time.Location
	Maintenance  []model.MaintenanceWindow
	Reservations []model.Reservation
}

// Classify tiles the court's operating hours on Date into SlotMinutes slots
// and tags each with exactly one status, by precedence
// UNAVAILABLE > PAST > MAINTENANCE > BOOKED/USER_BOOKED > AVAILABLE.
// A trailing slot that would cross closing time is emitted as UNAVAILABLE.
func Classify(in Input) ([]Slot, error) {
	openAt, closeAt, err := in.Court.OperatingHours(in.Date, in.Location)
	if err != nil {
		return nil, err
	}

	step := time.Duration(in.SlotMinutes) * time.Minute
	slots := make([]Slot, 0, int(closeAt.Sub(openAt)/step)+1)

	for start := openAt; start.Before(closeAt); start = start.Add(step) {
		end := start.Add(step)
		slots = append(slots, Slot{
			Start:  start,
			End:    end,
			Status: classifySlot(in, start, end, closeAt),
		})
	}
	return slots, nil
}

func classifySlot(in Input, start, end, closeAt time.Time) SlotStatus {
	if !in.Court.Active || end.After(closeAt) {
		return SlotUnavailable
	}
	if !end.After(in.Now) {
		return SlotPast
	}
	for _, w := range in.Maintenance {
		if w.Overlaps(start, end) {
			return SlotMaintenance
		}
	}

	status := SlotAvailable
	for _, r := range in.Reservations {
		if !r.Status.Occupies() || !r.Overlaps(start, end) {
			continue
		}
		if in.UserID != "" && r.UserID == in.UserID {
			return SlotUserBooked
		}
		status = SlotBooked
	}
	return status
}
