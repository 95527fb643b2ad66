package model

import "time"

type MaintenanceWindow struct {
	ID        string    `json:"id" bson:"_id"`
	CourtID   string    `json:"court_id" bson:"court_id" validate:"required,uuid"`
	Start     time.Time `json:"start" bson:"start" validate:"required"`
	End       time.Time `json:"end" bson:"end" validate:"required,gtfield=Start"`
	Reason    string    `json:"reason" bson:"reason" validate:"required,min=3,max=500"`
	CreatedBy string    `json:"created_by" bson:"created_by"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

func (w MaintenanceWindow) Overlaps(start, end time.Time) bool {
	return Overlaps(w.Start, w.End, start, end)
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) share at least one instant.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
