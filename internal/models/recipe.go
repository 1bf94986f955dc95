package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JSONStringArray is a custom type for storing string arrays as JSON
type JSONStringArray []string

// Value implements the driver.Valuer interface
func (a JSONStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface
func (a *JSONStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONStringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Categories a recipe may belong to.
var Categories = []string{
	"Breakfast",
	"Lunch",
	"Dinner",
	"Dessert",
	"Snack",
	"Beverage",
}

// ValidCategory reports whether c is one of the fixed recipe categories.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

type Recipe struct {
	ID           uuid.UUID       `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt    time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
	Title        string          `gorm:"size:255;not null" json:"title"`
	Instructions string          `gorm:"type:text;not null" json:"instructions"`
	Category     string          `gorm:"size:50;not null" json:"category"`
	CookingTime  int             `json:"cooking_time"`
	Ingredients  JSONStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	ImageURL     string          `gorm:"size:512" json:"image_url"`
	CreatedByID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"created_by_id"`
	CreatedBy    User            `gorm:"foreignKey:CreatedByID" json:"-"`
	Likes        []RecipeLike    `gorm:"foreignKey:RecipeID" json:"-"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RecipeLike records one user liking one recipe. The composite unique index
// is what makes the liked-by set duplicate-free even under concurrent toggles.
type RecipeLike struct {
	ID        uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	RecipeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_like" json:"recipe_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_like" json:"user_id"`
}

func (RecipeLike) TableName() string {
	return "recipe_likes"
}

func (l *RecipeLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
