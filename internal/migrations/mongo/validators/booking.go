package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"organization_id",
			"service_id",
			"client_user_id",
			"start_time",
			"end_time",
			"status",
			"client_name",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"organization_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"service_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"client_user_id": bson.M{
				"bsonType": "long",
			},

			"start_time": bson.M{
				"bsonType": "date",
			},

			"end_time": bson.M{
				"bsonType": "date",
			},

			"status": bson.M{
				"enum": []string{"PENDING", "CONFIRMED", "CANCELED"},
			},

			"client_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 255,
			},

			"client_phone": bson.M{
				"bsonType":  "string",
				"maxLength": 32,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var ScheduledReminderValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"booking_id",
			"remind_at",
			"kind",
			"sent",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"booking_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"remind_at": bson.M{
				"bsonType": "date",
			},

			"kind": bson.M{
				"enum": []string{"24h", "2h"},
			},

			"sent": bson.M{
				"bsonType": "bool",
			},

			"sent_at": bson.M{
				"bsonType": []string{"date", "null"},
			},
		},
	},
}
