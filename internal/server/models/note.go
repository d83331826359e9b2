package models

// Note is a piece of text owned by exactly one user.
type Note struct {
	ID      int64  `json:"id"`
	UserID  int64  `json:"user_id"`
	Content string `json:"content"`
}
