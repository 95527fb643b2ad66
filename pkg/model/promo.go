package model

import "time"

type PromoKind string

const (
	PromoFlat    PromoKind = "FLAT"
	PromoPercent PromoKind = "PERCENT"
)

type PromoCode struct {
	Code       string     `json:"code" bson:"_id" validate:"required,alphanum,min=3,max=32"`
	Kind       PromoKind  `json:"kind" bson:"kind" validate:"required,oneof=FLAT PERCENT"`
	Value      int64      `json:"value" bson:"value" validate:"min=0"`
	Active     bool       `json:"active" bson:"active"`
	ValidFrom  time.Time  `json:"valid_from" bson:"valid_from"`
	ValidUntil *time.Time `json:"valid_until,omitempty" bson:"valid_until,omitempty"`
}

func (p PromoCode) Usable(now time.Time) bool {
	if !p.Active || now.Before(p.ValidFrom) {
		return false
	}
	return p.ValidUntil == nil || now.Before(*p.ValidUntil)
}
