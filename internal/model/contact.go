package model

import "time"

// ContactMessage is a stored contact-form submission. Records are append-only.
type ContactMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Email     string    `gorm:"size:254;not null;index" json:"email"`
	Subject   string    `gorm:"size:64;not null;index" json:"subject"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (ContactMessage) TableName() string {
	return "contact_messages"
}

// ContactSubmitted is the notification emitted after a contact message is stored.
type ContactSubmitted struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func NewContactSubmitted(msg ContactMessage) ContactSubmitted {
	return ContactSubmitted{
		ID:        msg.ID,
		Name:      msg.Name,
		Email:     msg.Email,
		Subject:   msg.Subject,
		Message:   msg.Message,
		CreatedAt: msg.CreatedAt,
	}
}
