package models

import "time"

// Registration states.
const (
	RegistrationRegistered = "registered"
	RegistrationCancelled  = "cancelled"
)

// Event is a scheduled campus activity organised by a user.
type Event struct {
	ID         int64     `gorm:"column:event_id;primaryKey;autoIncrement" json:"event_id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	Type       string    `gorm:"column:event_type;type:varchar(64);index;not null" json:"type"`
	Date       time.Time `gorm:"column:event_date;index;not null" json:"event_date"`
	Location   string    `gorm:"type:varchar(255);not null" json:"location"`
	UserID     int64     `gorm:"column:user_id;index;not null" json:"organizer_id"`
	Organizer  *User     `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	CoverImage string    `gorm:"type:varchar(512);not null" json:"cover_image"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// EventView is an event joined with organizer display data and its live
// registration count.
type EventView struct {
	Event
	OrganizerName     string  `gorm:"column:organizer_name" json:"organizer_name"`
	OrganizerAvatar   *string `gorm:"column:organizer_avatar" json:"organizer_avatar"`
	RegistrationCount int64   `gorm:"column:registration_count" json:"registration_count"`
	FormattedDate     string  `gorm:"-" json:"formatted_date"`
}

// EventRegistration links a user to an event.
type EventRegistration struct {
	ID        int64     `gorm:"column:registration_id;primaryKey;autoIncrement" json:"registration_id"`
	EventID   int64     `gorm:"uniqueIndex:idx_event_registrations_event_user;not null" json:"event_id"`
	Event     *Event    `gorm:"foreignKey:EventID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	UserID    int64     `gorm:"uniqueIndex:idx_event_registrations_event_user;not null" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	Status    string    `gorm:"type:varchar(16);not null;default:registered" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
