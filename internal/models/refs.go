package models

// Branch, Theme and Payment are reference entities consumed read-only
// by the booking engine. Each must resolve by id at booking time.

type Branch struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

type Theme struct {
	ID       int64  `json:"id"`
	BranchID int64  `json:"branch_id"`
	Name     string `json:"name"`
	Players  int64  `json:"players"`
}

type Payment struct {
	ID     int64  `json:"id"`
	Method string `json:"method"`
	Amount int64  `json:"amount"`
	Paid   bool   `json:"paid"`
}
