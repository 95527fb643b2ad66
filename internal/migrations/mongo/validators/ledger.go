package validators

import "go.mongodb.org/mongo-driver/bson"

var LedgerValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "reservation_id", "user_id", "direction", "amount_cents", "method", "status", "actor", "created_at"},
		"properties": bson.M{
			"_id":            bson.M{"bsonType": "string"},
			"reservation_id": bson.M{"bsonType": "string"},
			"user_id":        bson.M{"bsonType": "string"},
			"direction":      bson.M{"bsonType": "string", "enum": []string{"CHARGE", "REFUND"}},
			"amount_cents":   bson.M{"bsonType": integer, "minimum": 0},
			"method": bson.M{
				"bsonType": "string",
				"enum":     []string{"CARD", "BIZUM", "ONSITE", "CREDITS", "TRANSFER", "COURTESY"},
			},
			"status":       bson.M{"bsonType": "string", "enum": []string{"PENDING", "SUCCEEDED", "FAILED"}},
			"failure_kind": bson.M{"bsonType": "string", "enum": []string{"TRANSIENT", "PERMANENT"}},
			"charge_slot":  bson.M{"bsonType": "string"},
			"actor":        bson.M{"bsonType": "string"},
			"created_at":   bson.M{"bsonType": "date"},
			"finalized_at": bson.M{"bsonType": "date"},
		},
	},
}

var WalletValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "balance_cents"},
		"properties": bson.M{
			"_id":           bson.M{"bsonType": "string"},
			"balance_cents": bson.M{"bsonType": integer, "minimum": 0},
			"updated_at":    bson.M{"bsonType": "date"},
		},
	},
}

var AuditValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "subject_type", "subject_id", "event_type", "actor", "created_at"},
		"properties": bson.M{
			"_id": bson.M{"bsonType": "string"},
			"subject_type": bson.M{
				"bsonType": "string",
				"enum":     []string{"RESERVATION", "ENROLLMENT", "LEDGER_ENTRY", "TARIFF", "MAINTENANCE", "COURT", "WALLET"},
			},
			"subject_id": bson.M{"bsonType": "string"},
			"event_type": bson.M{"bsonType": "string"},
			"actor":      bson.M{"bsonType": "string"},
			"created_at": bson.M{"bsonType": "date"},
		},
	},
}
