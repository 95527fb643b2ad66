package validators

import "go.mongodb.org/mongo-driver/bson"

var ReservationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"court_id",
			"user_id",
			"start",
			"end",
			"duration_minutes",
			"status",
			"payment_status",
			"base_amount_cents",
			"total_amount_cents",
			"version",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id":      bson.M{"bsonType": "string"},
			"court_id": bson.M{"bsonType": "string"},
			"user_id":  bson.M{"bsonType": "string", "minLength": 1, "maxLength": 128},
			"start":    bson.M{"bsonType": "date"},
			"end":      bson.M{"bsonType": "date"},

			"duration_minutes": bson.M{
				"bsonType": integer,
				"minimum":  15,
				"maximum":  480,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"PENDING", "PAID", "IN_PROGRESS", "COMPLETED", "CANCELLED", "NO_SHOW"},
			},

			"payment_status": bson.M{
				"bsonType": "string",
				"enum":     []string{"PENDING", "PAID", "REFUNDED"},
			},

			"payment_method": bson.M{
				"bsonType": "string",
				"enum":     []string{"CARD", "BIZUM", "ONSITE", "CREDITS", "TRANSFER", "COURTESY"},
			},

			"base_amount_cents":        bson.M{"bsonType": integer, "minimum": 0},
			"total_amount_cents":       bson.M{"bsonType": integer, "minimum": 0},
			"applied_discount_percent": bson.M{"bsonType": integer, "minimum": 0, "maximum": 100},
			"promo_discount_cents":     bson.M{"bsonType": integer, "minimum": 0},

			"override_adjustment": bson.M{
				"bsonType": "object",
				"required": []string{"delta_cents", "reason", "actor"},
				"properties": bson.M{
					"delta_cents": bson.M{"bsonType": integer},
					"reason":      bson.M{"bsonType": "string", "minLength": 1},
					"actor":       bson.M{"bsonType": "string"},
				},
			},

			"version":    bson.M{"bsonType": integer, "minimum": 1},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
