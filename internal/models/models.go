package models

import "time"

// DefaultPic is used when registration does not supply an avatar URL.
const DefaultPic = "https://icon-library.com/images/anonymous-avatar-icon/anonymous-avatar-icon-25.jpg"

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Pic       string    `json:"pic"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

// Chat is always returned resolved: Users, GroupAdmin and LatestMessage carry
// the referenced records rather than bare ids.
type Chat struct {
	ID            string    `json:"id"`
	ChatName      string    `json:"chatName"`
	IsGroupChat   bool      `json:"isGroupChat"`
	Users         []User    `json:"users"`
	GroupAdmin    *User     `json:"groupAdmin,omitempty"`
	LatestMessage *Message  `json:"latestMessage,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Message struct {
	ID        string    `json:"id"`
	Sender    User      `json:"sender"`
	Content   string    `json:"content"`
	ChatID    string    `json:"chatId"`
	Chat      *Chat     `json:"chat,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
