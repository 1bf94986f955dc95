package main

import (
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tastebase/backend/config"
	"github.com/tastebase/backend/internal/database"
	"github.com/tastebase/backend/internal/models"
)

// Seeds a demo admin, a demo user and a handful of recipes for local
// development. Safe to run repeatedly; existing accounts are reused.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	admin := ensureUser(db, "admin", "admin@tastebase.dev", "admin123", models.RoleAdmin)
	cook := ensureUser(db, "demo_cook", "cook@tastebase.dev", "cook1234", models.RoleUser)

	recipes := []models.Recipe{
		{
			Title:        "Weeknight Carbonara",
			Instructions: "Boil pasta. Whisk eggs and cheese. Combine off heat with pancetta.",
			Category:     "Dinner",
			CookingTime:  25,
			Ingredients:  models.JSONStringArray{"spaghetti", "eggs", "pecorino", "pancetta", "black pepper"},
			CreatedByID:  cook.ID,
		},
		{
			Title:        "Overnight Oats",
			Instructions: "Mix oats, milk and honey. Refrigerate overnight. Top with berries.",
			Category:     "Breakfast",
			CookingTime:  5,
			Ingredients:  models.JSONStringArray{"rolled oats", "milk", "honey", "berries"},
			CreatedByID:  cook.ID,
		},
		{
			Title:        "Lemon Posset",
			Instructions: "Simmer cream and sugar, stir in lemon juice, chill until set.",
			Category:     "Dessert",
			CookingTime:  15,
			Ingredients:  models.JSONStringArray{"double cream", "sugar", "lemons"},
			CreatedByID:  admin.ID,
		},
	}

	for i := range recipes {
		var existing models.Recipe
		err := db.Where("title = ? AND created_by_id = ?", recipes[i].Title, recipes[i].CreatedByID).
			First(&existing).Error
		if err == nil {
			continue
		}
		if err := db.Create(&recipes[i]).Error; err != nil {
			log.Fatalf("failed to seed recipe %q: %v", recipes[i].Title, err)
		}
		log.Printf("seeded recipe %q", recipes[i].Title)
	}

	log.Println("seed complete")
}

func ensureUser(db *gorm.DB, username, email, password, role string) *models.User {
	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err == nil {
		return &user
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	user = models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("failed to seed user %s: %v", email, err)
	}
	log.Printf("seeded user %s", email)
	return &user
}
