package validators

import "go.mongodb.org/mongo-driver/bson"

var integer = []string{"int", "long"}

var CourtValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "name", "opens", "closes", "hourly_rate_cents", "active", "booking_version", "created_at"},
		"properties": bson.M{
			"_id":  bson.M{"bsonType": "string"},
			"name": bson.M{"bsonType": "string", "minLength": 2, "maxLength": 100},
			"opens": bson.M{
				"bsonType": "string",
				"pattern":  `^([01][0-9]|2[0-3]):[0-5][0-9]$`,
			},
			"closes": bson.M{
				"bsonType": "string",
				"pattern":  `^([01][0-9]|2[0-3]):[0-5][0-9]$`,
			},
			"hourly_rate_cents": bson.M{"bsonType": integer, "minimum": 0},
			"active":            bson.M{"bsonType": "bool"},
			"booking_version":   bson.M{"bsonType": integer, "minimum": 0},
			"created_at":        bson.M{"bsonType": "date"},
			"updated_at":        bson.M{"bsonType": "date"},
		},
	},
}

var MaintenanceValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "court_id", "start", "end", "reason", "created_by", "created_at"},
		"properties": bson.M{
			"_id":        bson.M{"bsonType": "string"},
			"court_id":   bson.M{"bsonType": "string"},
			"start":      bson.M{"bsonType": "date"},
			"end":        bson.M{"bsonType": "date"},
			"reason":     bson.M{"bsonType": "string", "minLength": 3, "maxLength": 500},
			"created_by": bson.M{"bsonType": "string"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
