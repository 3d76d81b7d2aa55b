package main

import (
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/investflow/investflow/app/models"
	"github.com/investflow/investflow/internal/pkg/database"
	"github.com/investflow/investflow/internal/pkg/env"
)

// Database seeder: creates test users (admin + investor) and sample projects.
func main() {
	env.SetupEnvFile()
	database.SetupDatabase()
	db := database.GetDB()

	log.Println("Clearing existing data...")
	wipe := db.Session(&gorm.Session{AllowGlobalUpdate: true})
	if err := wipe.Delete(&models.Investment{}).Error; err != nil {
		log.Fatalf("Failed to clear investments: %v", err)
	}
	if err := wipe.Delete(&models.Project{}).Error; err != nil {
		log.Fatalf("Failed to clear projects: %v", err)
	}
	if err := wipe.Delete(&models.WebhookEvent{}).Error; err != nil {
		log.Fatalf("Failed to clear webhook events: %v", err)
	}
	if err := wipe.Delete(&models.User{}).Error; err != nil {
		log.Fatalf("Failed to clear users: %v", err)
	}

	now := time.Now()

	admin, err := models.CreateUser("Admin User", "admin@investflow.com", "admin123", models.ROLE_ADMIN)
	if err != nil {
		log.Fatalf("Failed to build admin user: %v", err)
	}
	admin.Phone = "+55 11 98765-4321"
	admin.PlanKey = models.PLAN_PREMIUM
	admin.IsVerified = true
	admin.LastLoginAt = &now
	if err := db.Create(admin).Error; err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}
	log.Printf("Admin created: %s", admin.Email)

	investor, err := models.CreateUser("Test Investor", "investor@test.com", "investor123", models.ROLE_INVESTOR)
	if err != nil {
		log.Fatalf("Failed to build investor user: %v", err)
	}
	investor.Phone = "+55 11 91234-5678"
	investor.IsVerified = true
	investor.LastLoginAt = &now
	if err := db.Create(investor).Error; err != nil {
		log.Fatalf("Failed to create investor user: %v", err)
	}
	log.Printf("Investor created: %s", investor.Email)

	projects := []models.Project{
		{
			Title:          "Green Energy Solar Farm",
			Description:    "Large-scale solar energy farm providing clean, renewable energy to over 5,000 homes while reducing carbon emissions by 10,000 tons annually.",
			Category:       "Energy",
			MinInvestment:  5000,
			ROIPercent:     18,
			TargetAmount:   2500000,
			FundedAmount:   875000,
			DurationMonths: 36,
			Status:         models.PROJECT_STATUS_ACTIVE,
			ImageURL:       "https://images.unsplash.com/photo-1509391366360-2e959784a276?w=800",
			EndDate:        now.AddDate(0, 36, 0),
			CreatedBy:      admin.ID,
		},
		{
			Title:          "Urban Residences Tower",
			Description:    "Premium residential tower in the city center with 120 units, targeting young professionals and offering rental yield participation.",
			Category:       "Real Estate",
			MinInvestment:  10000,
			ROIPercent:     14,
			TargetAmount:   5000000,
			FundedAmount:   1250000,
			DurationMonths: 48,
			Status:         models.PROJECT_STATUS_ACTIVE,
			IsPremium:      true,
			ImageURL:       "https://images.unsplash.com/photo-1486406146926-c627a92ad1ab?w=800",
			EndDate:        now.AddDate(0, 48, 0),
			CreatedBy:      admin.ID,
		},
		{
			Title:          "AgroTech Irrigation Network",
			Description:    "Smart irrigation infrastructure for mid-size farms, cutting water consumption by up to 40 percent across participating properties.",
			Category:       "Agriculture",
			MinInvestment:  2500,
			ROIPercent:     16,
			TargetAmount:   1200000,
			FundedAmount:   0,
			DurationMonths: 24,
			Status:         models.PROJECT_STATUS_PENDING,
			ImageURL:       "https://images.unsplash.com/photo-1625246333195-78d9c38ad449?w=800",
			EndDate:        now.AddDate(0, 24, 0),
			CreatedBy:      admin.ID,
		},
		{
			// Already past its end date: the hourly sweep should close it out.
			Title:          "Coastal Eco Resort",
			Description:    "Boutique eco resort with 40 bungalows on a preserved stretch of coastline, operated under a revenue-share agreement.",
			Category:       "Hospitality",
			MinInvestment:  20000,
			ROIPercent:     22,
			TargetAmount:   3800000,
			FundedAmount:   410000,
			DurationMonths: 60,
			Status:         models.PROJECT_STATUS_PENDING,
			IsPremium:      true,
			ImageURL:       "https://images.unsplash.com/photo-1520250497591-112f2f40a3f4?w=800",
			EndDate:        now.Add(-24 * time.Hour),
			CreatedBy:      admin.ID,
		},
	}
	for i := range projects {
		if err := db.Create(&projects[i]).Error; err != nil {
			log.Fatalf("Failed to create project %q: %v", projects[i].Title, err)
		}
	}
	log.Printf("Created %d sample projects", len(projects))

	investment := models.Investment{
		UserID:          investor.ID,
		ProjectID:       projects[2].ID,
		Amount:          5000,
		Status:          models.INVESTMENT_STATUS_PENDING,
		PaymentIntentID: "pi_seed_" + uuid.NewString(),
	}
	if err := db.Create(&investment).Error; err != nil {
		log.Fatalf("Failed to create sample investment: %v", err)
	}
	log.Printf("Created pending investment %d (payment intent %s)", investment.ID, investment.PaymentIntentID)

	log.Println("Seeding completed successfully")
}
