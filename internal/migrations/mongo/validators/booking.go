package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"workspace_id",
			"user_id",
			"booking_type",
			"start_date",
			"end_date",
			"total_amount",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"workspace_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"booking_type": bson.M{
				"bsonType": "string",
				"enum":     []string{"hourly", "daily", "weekly", "monthly"},
			},

			"start_date": bson.M{
				"bsonType": "date",
			},

			"end_date": bson.M{
				"bsonType": "date",
			},

			"total_amount": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"confirmed",
					"cancelled",
					"completed",
				},
			},

			"reference": bson.M{
				"bsonType": "string",
				"pattern":  `^WS\d{8}$`,
			},

			"payment_method": bson.M{
				"bsonType": "string",
				"enum":     []string{"online", "upi", "pay_at_venue", "wallet"},
			},

			"payment_status": bson.M{
				"bsonType": "string",
				"enum":     []string{"paid", "pending", "failed"},
			},

			"party_size": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  10,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
