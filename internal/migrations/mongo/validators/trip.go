package validators

import "go.mongodb.org/mongo-driver/bson"

// TripValidator defines the schema validation rules for the trips collection.
var TripValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"traveler_phone",
			"departure_city",
			"departure_country",
			"arrival_city",
			"arrival_country",
			"departure_time",
			"arrival_time",
			"available_weight",
			"max_packages",
			"price_per_kg",
			"currency",
			"status",
		},
		"properties": bson.M{
			"traveler_phone": bson.M{
				"bsonType":    "string",
				"pattern":     "^\\+[1-9]\\d{1,14}$",
				"description": "traveler phone in E.164 format",
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
			"departure_time": bson.M{
				"bsonType": "date",
			},
			"arrival_time": bson.M{
				"bsonType": "date",
			},
			"available_weight": bson.M{
				"bsonType":         []string{"double", "int", "long"},
				"exclusiveMinimum": true,
				"minimum":          0,
			},
			"available_volume": bson.M{
				"bsonType":         []string{"double", "int", "long"},
				"exclusiveMinimum": true,
				"minimum":          0,
			},
			"max_packages": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  50,
			},
			"price_per_kg": bson.M{
				"bsonType":         []string{"double", "int", "long"},
				"exclusiveMinimum": true,
				"minimum":          0,
			},
			"minimum_price": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
			},
			"currency": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 3,
			},
			"status": bson.M{
				"enum": []string{
					"AVAILABLE",
					"PARTIALLY_BOOKED",
					"FULLY_BOOKED",
					"COMPLETED",
					"CANCELED",
				},
			},
			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
