package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"sauvage-server/models"
)

// StatsStore answers the admin dashboard queries
type StatsStore struct {
	Users    *mongo.Collection
	Menu     *mongo.Collection
	Payments *mongo.Collection
}

func NewStatsStore(db *mongo.Database) *StatsStore {
	return &StatsStore{
		Users:    db.Collection(UsersCollection),
		Menu:     db.Collection(MenuCollection),
		Payments: db.Collection(PaymentsCollection),
	}
}

// AdminStats returns approximate collection counts and the revenue summed by the server
func (s *StatsStore) AdminStats(ctx context.Context) (*models.AdminStats, error) {
	users, err := s.Users.EstimatedDocumentCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	products, err := s.Menu.EstimatedDocumentCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("count menu: %w", err)
	}
	orders, err := s.Payments.EstimatedDocumentCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("count payments: %w", err)
	}
	revenue, err := s.Revenue(ctx)
	if err != nil {
		return nil, err
	}

	return &models.AdminStats{
		Revenue:  revenue,
		Users:    users,
		Products: products,
		Orders:   orders,
	}, nil
}

// revenuePipeline sums price over all payments into a single document
func revenuePipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$price"}}},
		}}},
	}
}

// Revenue is 0 when there are no payments
func (s *StatsStore) Revenue(ctx context.Context) (float64, error) {
	cursor, err := s.Payments.Aggregate(ctx, revenuePipeline())
	if err != nil {
		return 0, fmt.Errorf("aggregate revenue: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("decode revenue: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

// orderStatsPipeline joins each payment's menu items, then groups them by category.
func orderStatsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: MenuCollection},
			{Key: "localField", Value: "menuItems"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "menuItemsData"},
		}}},
		{{Key: "$unwind", Value: "$menuItemsData"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$menuItemsData.category"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$menuItemsData.price"}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "category", Value: "$_id"},
			{Key: "count", Value: 1},
			{Key: "total", Value: bson.D{{Key: "$round", Value: bson.A{"$total", 2}}}},
			{Key: "_id", Value: 0},
		}}},
	}
}

// OrderStats returns ordered item counts and totals per menu category
func (s *StatsStore) OrderStats(ctx context.Context) ([]models.CategoryStat, error) {
	cursor, err := s.Payments.Aggregate(ctx, orderStatsPipeline())
	if err != nil {
		return nil, fmt.Errorf("aggregate order stats: %w", err)
	}
	defer cursor.Close(ctx)

	stats := []models.CategoryStat{}
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, fmt.Errorf("decode order stats: %w", err)
	}
	return stats, nil
}
