package profile

import "time"

type Profile struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	FullName  *string   `gorm:"type:varchar(255)" json:"full_name"`
	AvatarURL *string   `gorm:"type:text" json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }
