package domain

import "time"

// ClickKey identifies one outbound offer link.
type ClickKey struct {
	ItemName string `json:"item_name"`
	Merchant string `json:"merchant"`
	URL      string `json:"url"`
}

type ClickCount struct {
	ClickKey
	Count     int64     `json:"count"`
	UpdatedAt time.Time `json:"updated_at"`
}
