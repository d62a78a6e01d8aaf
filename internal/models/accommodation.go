package models

import "time"

// Accommodation listing states.
const (
	AccommodationAvailable   = "available"
	AccommodationRented      = "rented"
	AccommodationUnavailable = "unavailable"
)

// Accommodation is a room or flat offered by a user.
type Accommodation struct {
	ID          int64     `gorm:"column:accommodation_id;primaryKey;autoIncrement" json:"accommodation_id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	RoomType    string    `gorm:"type:varchar(64);not null" json:"room_type"`
	Price       float64   `gorm:"type:numeric(10,2);not null" json:"price"`
	Location    string    `gorm:"type:varchar(255);not null" json:"location"`
	Description string    `gorm:"type:text;not null" json:"description"`
	ContactInfo string    `gorm:"type:varchar(255);not null" json:"contact_info"`
	Status      string    `gorm:"type:varchar(16);not null;default:available" json:"status"`
	OwnerID     int64     `gorm:"index;not null" json:"owner_id"`
	Owner       *User     `gorm:"foreignKey:OwnerID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AccommodationImage is one picture of a listing.
type AccommodationImage struct {
	ID              int64          `gorm:"column:image_id;primaryKey;autoIncrement" json:"image_id"`
	AccommodationID int64          `gorm:"index;not null" json:"accommodation_id"`
	Accommodation   *Accommodation `gorm:"foreignKey:AccommodationID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	ImageURL        string         `gorm:"type:varchar(512);not null" json:"image_url"`
	CreatedAt       time.Time      `json:"created_at"`
}

// AccommodationFavorite marks a listing as favourite for a user.
type AccommodationFavorite struct {
	AccommodationID int64          `gorm:"primaryKey" json:"accommodation_id"`
	Accommodation   *Accommodation `gorm:"foreignKey:AccommodationID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	UserID          int64          `gorm:"primaryKey" json:"user_id"`
	User            *User          `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt       time.Time      `json:"created_at"`
}

// AccommodationView is a listing joined with owner data, images and the
// caller's favourite flag.
type AccommodationView struct {
	Accommodation
	OwnerName  string   `gorm:"column:owner_name" json:"owner_name"`
	IsFavorite bool     `gorm:"column:is_favorite" json:"is_favorite"`
	Images     []string `gorm:"-" json:"images"`
}

// AccommodationUpdate is a partial update of a listing. Nil fields are left untouched.
type AccommodationUpdate struct {
	Title       *string
	RoomType    *string
	Price       *float64
	Location    *string
	Description *string
	ContactInfo *string
	Status      *string
}

// Columns renders the update as a column map for gorm.
func (u AccommodationUpdate) Columns() map[string]any {
	cols := map[string]any{}
	if u.Title != nil {
		cols["title"] = *u.Title
	}
	if u.RoomType != nil {
		cols["room_type"] = *u.RoomType
	}
	if u.Price != nil {
		cols["price"] = *u.Price
	}
	if u.Location != nil {
		cols["location"] = *u.Location
	}
	if u.Description != nil {
		cols["description"] = *u.Description
	}
	if u.ContactInfo != nil {
		cols["contact_info"] = *u.ContactInfo
	}
	if u.Status != nil {
		cols["status"] = *u.Status
	}
	return cols
}
