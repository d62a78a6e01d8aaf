package types

import "gorm.io/datatypes"

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest fields are declared in the order missing ones are reported.
type RegisterRequest struct {
	FullName   string         `json:"full_name" validate:"required,max=255"`
	StudentID  string         `json:"student_id" validate:"required,max=32"`
	Email      string         `json:"email" validate:"required,email,max=255"`
	Password   string         `json:"password" validate:"required"`
	Department string         `json:"department" validate:"required,max=128"`
	AvatarURL  *string        `json:"avatar_url" validate:"omitempty,max=512"`
	Bio        *string        `json:"bio"`
	Interests  datatypes.JSON `json:"interests"`
}

type ProfileUpdateRequest struct {
	FullName  *string        `json:"full_name" validate:"omitempty,max=255"`
	AvatarURL *string        `json:"avatar_url" validate:"omitempty,max=512"`
	Bio       *string        `json:"bio"`
	Interests datatypes.JSON `json:"interests"`
}

type EventCreateRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Type        string `json:"type" validate:"required,max=64"`
	Date        string `json:"date" validate:"required"`
	Location    string `json:"location" validate:"required,max=255"`
	OrganizerID int64  `json:"organizer_id" validate:"required"`
	CoverImage  string `json:"cover_image" validate:"required,max=512"`
}

type AccommodationCreateRequest struct {
	Title       string   `json:"title" validate:"required,max=255"`
	RoomType    string   `json:"room_type" validate:"required,max=64"`
	Price       float64  `json:"price" validate:"gt=0"`
	Location    string   `json:"location" validate:"required,max=255"`
	Description string   `json:"description" validate:"required"`
	ContactInfo string   `json:"contact_info" validate:"required,max=255"`
	Images      []string `json:"images" validate:"required,min=1,dive,required,max=512"`
}

type AccommodationUpdateRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=1,max=255"`
	RoomType    *string  `json:"room_type" validate:"omitempty,min=1,max=64"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	Location    *string  `json:"location" validate:"omitempty,min=1,max=255"`
	Description *string  `json:"description"`
	ContactInfo *string  `json:"contact_info" validate:"omitempty,min=1,max=255"`
	Status      *string  `json:"status" validate:"omitempty,oneof=available rented unavailable"`
}
