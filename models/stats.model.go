package models

// AdminStats is the dashboard summary for administrators
type AdminStats struct {
	Revenue  float64 `json:"revenue"`
	Users    int64   `json:"users"`
	Products int64   `json:"products"`
	Orders   int64   `json:"orders"`
}

// CategoryStat is the number of ordered items and their total price for one menu category
type CategoryStat struct {
	Category string  `bson:"category" json:"category"`
	Count    int     `bson:"count" json:"count"`
	Total    float64 `bson:"total" json:"total"`
}
