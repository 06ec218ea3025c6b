package store

import (
	"go.mongodb.org/mongo-driver/mongo"
)

// InsertResult is the JSON shape returned to clients for an insert
type InsertResult struct {
	Acknowledged bool        `json:"acknowledged"`
	InsertedID   interface{} `json:"insertedId"`
}

// DeleteResult is the JSON shape returned to clients for a delete
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// UpdateResult is the JSON shape returned to clients for an update
type UpdateResult struct {
	Acknowledged  bool        `json:"acknowledged"`
	MatchedCount  int64       `json:"matchedCount"`
	ModifiedCount int64       `json:"modifiedCount"`
	UpsertedCount int64       `json:"upsertedCount"`
	UpsertedID    interface{} `json:"upsertedId"`
}

func insertResult(r *mongo.InsertOneResult) *InsertResult {
	return &InsertResult{Acknowledged: true, InsertedID: r.InsertedID}
}

func deleteResult(r *mongo.DeleteResult) *DeleteResult {
	return &DeleteResult{Acknowledged: true, DeletedCount: r.DeletedCount}
}

func updateResult(r *mongo.UpdateResult) *UpdateResult {
	return &UpdateResult{
		Acknowledged:  true,
		MatchedCount:  r.MatchedCount,
		ModifiedCount: r.ModifiedCount,
		UpsertedCount: r.UpsertedCount,
		UpsertedID:    r.UpsertedID,
	}
}
