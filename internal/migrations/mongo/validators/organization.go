package validators

import "go.mongodb.org/mongo-driver/bson"

var OrganizationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"timezone",
			"calendar_token",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 255,
			},

			"timezone": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"calendar_token": bson.M{
				"bsonType":  "string",
				"minLength": 16,
				"maxLength": 64,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}

var OrganizationAdminValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"organization_id",
			"user_id",
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

			"user_id": bson.M{
				"bsonType": "long",
			},

			"role": bson.M{
				"bsonType":  "string",
				"maxLength": 64,
			},
		},
	},
}
