package models

// GroupMessage is a free-text chat entry tied to a group.
// Messages share the group's storage but are not part of the ledger.
type GroupMessage struct {
	ID          string `json:"id"`
	GroupID     string `json:"groupId"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL,omitempty"`
	Content     string `json:"content"`
	CreatedAt   int64  `json:"createdAt"`
}
