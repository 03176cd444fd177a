package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"workforce/auth"
	"workforce/config"
	"workforce/db"
	"workforce/models"
	"workforce/timeutil"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()
	cfg.Validate()

	ctx := context.Background()
	firestoreDB, err := db.NewFirestoreDB(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Firestore: %v", err)
	}
	defer firestoreDB.Close()

	log.Println("🌱 Starting database seeding...")

	if err := seedUsers(ctx, firestoreDB, cfg); err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	if err := seedAvailability(ctx, firestoreDB); err != nil {
		log.Fatalf("Failed to seed availability: %v", err)
	}

	if err := seedShifts(ctx, firestoreDB); err != nil {
		log.Fatalf("Failed to seed shifts: %v", err)
	}

	log.Println("✅ Database seeding completed successfully!")
}

func seedUsers(ctx context.Context, firestoreDB *db.FirestoreDB, cfg *config.Config) error {
	now := time.Now()
	users := []struct {
		User     models.User
		Password string
	}{
		{
			User: models.User{
				UserID:   "user-admin",
				Name:     "Store Manager",
				Username: "admin",
				Role:     models.RoleAdmin,
				IsActive: true,
			},
			Password: "changeme1",
		},
		{
			User: models.User{
				UserID:     "user-staff-amara",
				Name:       "Amara Okafor",
				Username:   "amara",
				Role:       models.RoleStaff,
				HourlyRate: 18.50,
				IsActive:   true,
			},
			Password: "changeme1",
		},
		{
			User: models.User{
				UserID:     "user-staff-luis",
				Name:       "Luis Moreno",
				Username:   "luis",
				Role:       models.RoleStaff,
				HourlyRate: 17.25,
				IsActive:   true,
			},
			Password: "changeme1",
		},
		{
			User: models.User{
				UserID:     "user-staff-priya",
				Name:       "Priya Sharma",
				Username:   "priya",
				Role:       models.RoleStaff,
				HourlyRate: 19.00,
				IsActive:   true,
			},
			Password: "changeme1",
		},
	}

	for _, userData := range users {
		userData.User.Email = fmt.Sprintf("%s@%s", userData.User.Username, cfg.Shop.InternalDomain)
		userData.User.CreatedAt = now
		userData.User.UpdatedAt = now

		if err := firestoreDB.CreateUser(ctx, &userData.User); err != nil {
			return fmt.Errorf("failed to create user %s: %w", userData.User.Username, err)
		}

		passwordHash, err := auth.HashPassword(userData.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", userData.User.Username, err)
		}
		if err := firestoreDB.StorePasswordHash(ctx, userData.User.UserID, passwordHash); err != nil {
			return fmt.Errorf("failed to store password for %s: %w", userData.User.Username, err)
		}

		log.Printf("  ✓ Created user: %s (role: %s)", userData.User.Username, userData.User.Role)
	}

	return nil
}

// seedAvailability gives each sample staff member a submitted Monday to
// Friday daytime window for the current week.
func seedAvailability(ctx context.Context, firestoreDB *db.FirestoreDB) error {
	week := timeutil.WeekStart(time.Now())
	now := time.Now()

	staffIDs := []string{"user-staff-amara", "user-staff-luis", "user-staff-priya"}
	weekdays := []int{1, 2, 3, 4, 5}

	for _, staffID := range staffIDs {
		for _, day := range weekdays {
			avail := &models.Availability{
				StaffID:       staffID,
				WeekStartDate: week,
				DayOfWeek:     day,
				TimeRanges: []models.TimeRange{
					{Start: "09:00", End: "17:00"},
				},
				Status:      models.AvailabilitySubmitted,
				SubmittedAt: now,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := firestoreDB.SetAvailability(ctx, avail); err != nil {
				return fmt.Errorf("failed to seed availability for %s day %d: %w", staffID, day, err)
			}
		}
		log.Printf("  ✓ Seeded availability: %s (%s, weekdays)", staffID, week.Format("2006-01-02"))
	}

	return nil
}

// seedShifts approves a few sample shifts inside the seeded availability
// windows, so the roster and hours views have data on first run.
func seedShifts(ctx context.Context, firestoreDB *db.FirestoreDB) error {
	week := timeutil.WeekStart(time.Now())
	now := time.Now()

	shifts := []struct {
		StaffID   string
		DayOfWeek int
		Start     string
		End       string
	}{
		{"user-staff-amara", 1, "09:00", "13:00"},
		{"user-staff-luis", 1, "13:00", "17:00"},
		{"user-staff-amara", 3, "10:00", "16:00"},
		{"user-staff-priya", 4, "09:00", "17:00"},
	}

	for _, s := range shifts {
		shift := models.Shift{
			ID:         uuid.NewString(),
			StaffID:    s.StaffID,
			Date:       timeutil.DayDate(week, s.DayOfWeek),
			StartTime:  s.Start,
			EndTime:    s.End,
			Status:     models.ShiftApproved,
			ApprovedBy: "user-admin",
			ApprovedAt: now,
			CreatedAt:  now,
			UpdatedAt:  now,
			UpdatedBy:  "user-admin",
		}
		if _, err := firestoreDB.Shifts().Doc(shift.ID).Set(ctx, &shift); err != nil {
			return fmt.Errorf("failed to seed shift for %s day %d: %w", s.StaffID, s.DayOfWeek, err)
		}
		log.Printf("  ✓ Seeded shift: %s %s %s-%s", s.StaffID, shift.Date.Format("2006-01-02"), s.Start, s.End)
	}

	return nil
}
