package users

import (
	"math"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// user.go

type User struct {
	ID         string                             `json:"id" gorm:"primaryKey;type:uuid"`
	Email      string                             `json:"email" gorm:"uniqueIndex;not null"`
	Password   string                             `json:"-" gorm:"not null"` // Хэш пароля (не передается в JSON)
	SafeCode   string                             `json:"-" gorm:"not null"` // Хэш кода восстановления, только для сброса пароля
	FirstName  string                             `json:"firstName"`
	LastName   string                             `json:"lastName"`
	Age        int                                `json:"age"`
	Country    string                             `json:"country"`
	Industry   string                             `json:"industry"`
	Language   string                             `json:"language"`
	Phone      string                             `json:"phone"`
	Address    string                             `json:"address"`
	Skills     pq.StringArray                     `json:"skills" gorm:"type:text[]"`
	Avatar     string                             `json:"avatar" gorm:"type:text"` // base64, приходит прямо в JSON
	Experience datatypes.JSONSlice[WorkExperience] `json:"experience" gorm:"type:jsonb"`
	Ratings    datatypes.JSONSlice[Rating]         `json:"ratings" gorm:"type:jsonb"`
	Rating     *float64                           `json:"rating,omitempty"`
	IsAdmin    bool                               `json:"isAdmin" gorm:"not null;default:false"`
	CreatedAt  time.Time                          `json:"createdAt"`
	UpdatedAt  time.Time                          `json:"updatedAt"`
}

type WorkExperience struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	From        string `json:"from"`
	To          string `json:"to"`
	Description string `json:"description"`
}

// Rating is one grade left by another user.
type Rating struct {
	RaterID   string    `json:"raterId"`
	Grade     int       `json:"grade"`
	CreatedAt time.Time `json:"createdAt"`
}

// DisplayName joins the name parts; empty means the profile was never filled in.
func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Profile is the editable part of a User. Nil fields are left untouched.
type Profile struct {
	FirstName  *string           `json:"firstName"`
	LastName   *string           `json:"lastName"`
	Age        *int              `json:"age"`
	Country    *string           `json:"country"`
	Industry   *string           `json:"industry"`
	Language   *string           `json:"language"`
	Phone      *string           `json:"phone"`
	Address    *string           `json:"address"`
	Skills     *[]string         `json:"skills"`
	Avatar     *string           `json:"avatar"`
	Experience *[]WorkExperience `json:"experience"`
}

// Apply copies the provided profile fields onto u.
func (p Profile) Apply(u *User) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Age != nil {
		u.Age = *p.Age
	}
	if p.Country != nil {
		u.Country = *p.Country
	}
	if p.Industry != nil {
		u.Industry = *p.Industry
	}
	if p.Language != nil {
		u.Language = *p.Language
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	if p.Skills != nil {
		u.Skills = pq.StringArray(*p.Skills)
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.Experience != nil {
		u.Experience = datatypes.JSONSlice[WorkExperience](*p.Experience)
	}
}

// AverageRating is the arithmetic mean of the grades rounded to one decimal.
// It returns 0 for no ratings.
func AverageRating(ratings []Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Grade
	}
	return math.Round(float64(sum)/float64(len(ratings))*10) / 10
}
