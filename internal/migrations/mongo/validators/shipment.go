package validators

import "go.mongodb.org/mongo-driver/bson"

// ShipmentValidator defines the schema validation rules for the shipments collection.
var ShipmentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"sender_phone",
			"description",
			"weight",
			"departure_city",
			"departure_country",
			"arrival_city",
			"arrival_country",
			"proposed_price",
			"currency",
			"status",
		},
		"properties": bson.M{
			"sender_phone": bson.M{
				"bsonType":    "string",
				"pattern":     "^\\+[1-9]\\d{1,14}$",
				"description": "sender phone in E.164 format",
			},
			"description": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 500,
			},
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
			"departure_city": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},
			"departure_country": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},
			"arrival_city": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},
			"arrival_country": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},
			"proposed_price": bson.M{
				"bsonType":         []string{"double", "int", "long"},
				"exclusiveMinimum": true,
				"minimum":          0,
			},
			"currency": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 3,
			},
			"status": bson.M{
				"enum": []string{
					"PENDING_MATCH",
					"MATCHED",
					"IN_TRANSIT",
					"DELIVERED",
					"CANCELED",
				},
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
