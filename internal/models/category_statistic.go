package models

// CategoryStatistic is the summed amount of a user's transactions in one category.
// It is computed per request and never persisted.
type CategoryStatistic struct {
	Category    string  `json:"category"`
	TotalAmount float64 `json:"totalAmount"`
}
