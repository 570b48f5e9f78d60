package domain

import "time"

const (
	DefaultProfileImage  = "https://via.placeholder.com/100"
	UserImagePlaceholder = "https://via.placeholder.com/100?text=User"
)

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	ProfileImage string    `json:"profileImage"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
