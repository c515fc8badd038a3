package validators

import "go.mongodb.org/mongo-driver/bson"

var SubscriptionValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"organization_id",
			"plan",
			"status",
			"current_period_start",
			"current_period_end",
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

			"plan": bson.M{
				"enum": []string{"BASIC", "PRO"},
			},

			"status": bson.M{
				"enum": []string{"ACTIVE", "PAST_DUE", "CANCELED"},
			},

			"current_period_start": bson.M{
				"bsonType": "date",
			},

			"current_period_end": bson.M{
				"bsonType": "date",
			},
		},
	},
}
