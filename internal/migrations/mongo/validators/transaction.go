package validators

import "go.mongodb.org/mongo-driver/bson"

// TransactionValidator defines the schema validation rules for the
// transactions collection. The package subdocument is the snapshot taken
// from the shipment at match time, not a reference.
var TransactionValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"shipment_id",
			"trip_id",
			"sender_phone",
			"traveler_phone",
			"agreed_price",
			"currency",
			"security_code",
			"package",
			"status",
		},
		"properties": bson.M{
			"shipment_id": bson.M{
				"bsonType": "string",
			},
			"trip_id": bson.M{
				"bsonType": "string",
			},
			"sender_phone": bson.M{
				"bsonType": "string",
				"pattern":  "^\\+[1-9]\\d{1,14}$",
			},
			"traveler_phone": bson.M{
				"bsonType": "string",
				"pattern":  "^\\+[1-9]\\d{1,14}$",
			},
			"agreed_price": bson.M{
				"bsonType":         []string{"double", "int", "long"},
				"exclusiveMinimum": true,
				"minimum":          0,
			},
			"currency": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 3,
			},
			"security_code": bson.M{
				"bsonType":  "string",
				"pattern":   "^[0-9]{6}$",
				"minLength": 6,
				"maxLength": 6,
			},
			"package": bson.M{
				"bsonType": "object",
				"required": []string{"weight"},
				"properties": bson.M{
					"weight": bson.M{
						"bsonType":         []string{"double", "int", "long"},
						"exclusiveMinimum": true,
						"minimum":          0,
					},
					"length": bson.M{
						"bsonType":         []string{"double", "int", "long"},
						"exclusiveMinimum": true,
						"minimum":          0,
					},
					"width": bson.M{
						"bsonType":         []string{"double", "int", "long"},
						"exclusiveMinimum": true,
						"minimum":          0,
					},
					"height": bson.M{
						"bsonType":         []string{"double", "int", "long"},
						"exclusiveMinimum": true,
						"minimum":          0,
					},
				},
			},
			"status": bson.M{
				"enum": []string{
					"PENDING",
					"CONFIRMED",
					"IN_PROGRESS",
					"DELIVERED",
					"DISPUTED",
					"CANCELED",
					"COMPLETED",
				},
			},
			"confirmed_at": bson.M{
				"bsonType": "date",
			},
			"picked_up_at": bson.M{
				"bsonType": "date",
			},
			"delivered_at": bson.M{
				"bsonType": "date",
			},
			"payment_captured_at": bson.M{
				"bsonType": "date",
			},
			"payment_amount": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
