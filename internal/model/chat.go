package model

type ChatMessage struct {
	ID            string `json:"id"`
	SenderUID     string `json:"sender_uid"`
	SenderEmail   string `json:"sender_email"`
	ReceiverUID   string `json:"receiver_uid"`
	ReceiverEmail string `json:"receiver_email"`
	Content       string `json:"content"`
	Timestamp     int64  `json:"timestamp"` // unix millis
	ItemID        string `json:"item_id"`
	ItemTitle     string `json:"item_title"`
}

// Conversation summarises the latest message exchanged with one counterpart.
type Conversation struct {
	OtherUserUID    string `json:"other_user_uid"`
	OtherUserEmail  string `json:"other_user_email"`
	LastMessage     string `json:"last_message"`
	LastMessageTime int64  `json:"last_message_time"`
	ItemID          string `json:"item_id"`
	ItemTitle       string `json:"item_title"`
}
