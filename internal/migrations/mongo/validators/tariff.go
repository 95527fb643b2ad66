package validators

import "go.mongodb.org/mongo-driver/bson"

var TariffValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "name", "segment", "min_age", "discount_percent", "requires_manual_approval", "valid_from", "active", "created_at"},
		"properties": bson.M{
			"_id":                      bson.M{"bsonType": "string"},
			"name":                     bson.M{"bsonType": "string", "minLength": 2, "maxLength": 100},
			"segment":                  bson.M{"bsonType": "string", "minLength": 2, "maxLength": 50},
			"min_age":                  bson.M{"bsonType": integer, "minimum": 0, "maximum": 150},
			"max_age":                  bson.M{"bsonType": integer, "minimum": 0, "maximum": 150},
			"discount_percent":         bson.M{"bsonType": integer, "minimum": 0, "maximum": 100},
			"requires_manual_approval": bson.M{"bsonType": "bool"},
			"valid_from":               bson.M{"bsonType": "date"},
			"valid_until":              bson.M{"bsonType": "date"},
			"active":                   bson.M{"bsonType": "bool"},
			"court_ids":                bson.M{"bsonType": []string{"array", "null"}, "items": bson.M{"bsonType": "string"}},
			"created_at":               bson.M{"bsonType": "date"},
		},
	},
}

var EnrollmentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "tariff_id", "user_id", "status", "requested_at"},
		"properties": bson.M{
			"_id":       bson.M{"bsonType": "string"},
			"tariff_id": bson.M{"bsonType": "string"},
			"user_id":   bson.M{"bsonType": "string"},
			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"PENDING", "APPROVED", "REJECTED", "EXPIRED"},
			},
			"blocking_key": bson.M{"bsonType": "string"},
			"requested_at": bson.M{"bsonType": "date"},
			"decided_at":   bson.M{"bsonType": "date"},
			"expires_at":   bson.M{"bsonType": "date"},
		},
	},
}

var PromoValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "kind", "value", "active", "valid_from"},
		"properties": bson.M{
			"_id":         bson.M{"bsonType": "string", "minLength": 3, "maxLength": 32},
			"kind":        bson.M{"bsonType": "string", "enum": []string{"FLAT", "PERCENT"}},
			"value":       bson.M{"bsonType": integer, "minimum": 0},
			"active":      bson.M{"bsonType": "bool"},
			"valid_from":  bson.M{"bsonType": "date"},
			"valid_until": bson.M{"bsonType": "date"},
		},
	},
}
