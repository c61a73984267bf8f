package threads

import "time"

// Link — привязка приватного обсуждения к паре продавец/покупатель.
// Хранится в таблице записей (kind=thread_link), на пару — не больше
// одной живой привязки.
type Link struct {
	ThreadID  int64     `json:"thread_id"`
	ListingID string    `json:"listing_id"`
	SellerID  int64     `json:"seller_id"`
	BuyerID   int64     `json:"buyer_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
