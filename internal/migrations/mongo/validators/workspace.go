package validators

import (
	"bookmyworkspace/pkg/validation"

	"go.mongodb.org/mongo-driver/bson"
)

var planSchema = bson.M{
	"bsonType": "object",
	"required": []string{"id", "name", "unit_price", "billing_unit"},
	"properties": bson.M{
		"id":   bson.M{"bsonType": "string", "minLength": 1, "maxLength": 50},
		"name": bson.M{"bsonType": "string", "minLength": 2, "maxLength": 100},
		"unit_price": bson.M{
			"bsonType": []string{"int", "long"},
			"minimum":  1,
		},
		"billing_unit": bson.M{
			"bsonType": "string",
			"enum":     []string{"hour", "day", "week", "month"},
		},
		"features": bson.M{
			"bsonType": "array",
			"items":    bson.M{"bsonType": "string"},
		},
	},
}

var WorkspaceValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"owner_id",
			"name",
			"city",
			"area",
			"address",
			"price_per_day",
			"capacity",
			"plans",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"owner_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 120,
			},

			"city": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 60,
			},

			"area": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 80,
			},

			"price_per_day": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"capacity": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  10000,
			},

			"amenities": bson.M{
				"bsonType": "array",
				"maxItems": 30,
				"items": bson.M{
					"bsonType": "string",
					"enum":     validation.Amenities,
				},
			},

			"rating": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
				"maximum":  5,
			},

			"is_premium": bson.M{
				"bsonType": "bool",
			},

			"plans": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"maxItems": 10,
				"items":    planSchema,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
