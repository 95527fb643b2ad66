package service

import (
	"testing"
	"time"

	"courtside/pkg/model"
)

var (
	day   = time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	court = model.Court{ID: "c1", Opens: "08:00", Closes: "12:00", Active: true}
)

func at(h, m int) time.Time {
	return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func statuses(slots []Slot) []SlotStatus {
	out := make([]SlotStatus, len(slots))
	for i, s := range slots {
		out[i] = s.Status
	}
	return out
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		input Input
		want  []SlotStatus
	}{
		{
			name:  "empty day",
			input: Input{Court: court, Date: day, SlotMinutes: 60, Now: at(7, 0)},
			want:  []SlotStatus{SlotAvailable, SlotAvailable, SlotAvailable, SlotAvailable},
		},
		{
			name: "booked by others and by user",
			input: Input{
				Court: court, Date: day, SlotMinutes: 60, Now: at(7, 0), UserID: "me",
				Reservations: []model.Reservation{
					{UserID: "other", Start: at(8, 0), End: at(9, 0), Status: model.ReservationPaid},
					{UserID: "me", Start: at(9, 30), End: at(10, 30), Status: model.ReservationPending},
				},
			},
			want: []SlotStatus{SlotBooked, SlotUserBooked, SlotUserBooked, SlotAvailable},
		},
		{
			name: "cancelled and no-show release the slot",
			input: Input{
				Court: court, Date: day, SlotMinutes: 60, Now: at(7, 0),
				Reservations: []model.Reservation{
					{UserID: "other", Start: at(8, 0), End: at(9, 0), Status: model.ReservationCancelled},
					{UserID: "other", Start: at(9, 0), End: at(10, 0), Status: model.ReservationNoShow},
				},
			},
			want: []SlotStatus{SlotAvailable, SlotAvailable, SlotAvailable, SlotAvailable},
		},
		{
			name: "maintenance beats booked, past beats maintenance",
			input: Input{
				Court: court, Date: day, SlotMinutes: 60, Now: at(9, 0),
				Maintenance: []model.MaintenanceWindow{{Start: at(8, 0), End: at(11, 0)}},
				Reservations: []model.Reservation{
					{UserID: "other", Start: at(10, 0), End: at(11, 0), Status: model.ReservationPaid},
				},
			},
			want: []SlotStatus{SlotPast, SlotMaintenance, SlotMaintenance, SlotAvailable},
		},
		{
			name: "slot ending exactly now is past, in progress is not",
			input: Input{Court: court, Date: day, SlotMinutes: 60, Now: at(9, 30)},
			want: []SlotStatus{SlotPast, SlotAvailable, SlotAvailable, SlotAvailable},
		},
		{
			name:  "inactive court",
			input: Input{Court: model.Court{Opens: "08:00", Closes: "10:00"}, Date: day, SlotMinutes: 60, Now: at(7, 0)},
			want:  []SlotStatus{SlotUnavailable, SlotUnavailable},
		},
		{
			name:  "trailing partial slot",
			input: Input{Court: court, Date: day, SlotMinutes: 90, Now: at(7, 0)},
			want:  []SlotStatus{SlotAvailable, SlotAvailable, SlotUnavailable},
		},
		{
			name: "adjacent reservation does not block",
			input: Input{
				Court: court, Date: day, SlotMinutes: 60, Now: at(7, 0),
				Reservations: []model.Reservation{
					{UserID: "other", Start: at(7, 0), End: at(8, 0), Status: model.ReservationPaid},
					{UserID: "other", Start: at(12, 0), End: at(13, 0), Status: model.ReservationPaid},
				},
			},
			want: []SlotStatus{SlotAvailable, SlotAvailable, SlotAvailable, SlotAvailable},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.input.Location = time.UTC
			slots, err := Classify(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := statuses(slots)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d slots, got %d: %v", len(tt.want), len(got), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("slot %d: got %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestClassify_SlotBoundaries(t *testing.T) {
	slots, err := Classify(Input{Court: court, Date: day.Add(15 * time.Hour), SlotMinutes: 90, Now: at(7, 0), Location: time.UTC})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slots[0].Start.Equal(at(8, 0)) || !slots[0].End.Equal(at(9, 30)) {
		t.Errorf("unexpected first slot %v-%v", slots[0].Start, slots[0].End)
	}
	last := slots[len(slots)-1]
	if !last.Start.Equal(at(11, 0)) || !last.End.Equal(at(12, 30)) {
		t.Errorf("unexpected trailing slot %v-%v", last.Start, last.End)
	}
}
