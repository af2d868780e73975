package model

import "time"

type MenuItem struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       int64     `json:"price"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
}
