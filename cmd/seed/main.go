package main

import (
	"log"

	"golang.org/x/crypto/bcrypt"

	"resortbooking/internal/config"
	"resortbooking/internal/database"
	"resortbooking/internal/domain"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg.DB.DSN)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatal("migration failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM payments")
	db.Exec("DELETE FROM bookings")
	db.Exec("DELETE FROM rooms")
	db.Exec("DELETE FROM users")

	log.Println("Creating users...")

	adminHash, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	admin := domain.User{
		Name:         "Resort Admin",
		Email:        "admin@resort.co.ke",
		Phone:        "254700000001",
		PasswordHash: string(adminHash),
		Role:         domain.RoleAdmin,
	}
	db.Create(&admin)
	log.Println("Admin created: admin@resort.co.ke / admin123")

	staffHash, _ := bcrypt.GenerateFromPassword([]byte("staff123"), bcrypt.DefaultCost)
	staff := domain.User{
		Name:         "Front Desk",
		Email:        "frontdesk@resort.co.ke",
		Phone:        "254700000002",
		PasswordHash: string(staffHash),
		Role:         domain.RoleStaff,
	}
	db.Create(&staff)
	log.Println("Staff created: frontdesk@resort.co.ke / staff123")

	guestHash, _ := bcrypt.GenerateFromPassword([]byte("guest123"), bcrypt.DefaultCost)
	guests := []domain.User{
		{Name: "Wanjiku Kamau", Email: "wanjiku@gmail.com", Phone: "254712345678", PasswordHash: string(guestHash), Role: domain.RoleGuest},
		{Name: "Otieno Ochieng", Email: "otieno@gmail.com", Phone: "254723456789", PasswordHash: string(guestHash), Role: domain.RoleGuest},
	}
	for i := range guests {
		db.Create(&guests[i])
		log.Printf("Guest created: %s / guest123", guests[i].Email)
	}

	log.Println("Creating rooms...")
	rooms := []domain.Room{
		{Name: "Standard Garden Room", Description: "Ground floor room facing the gardens", PricePerNight: 8500, CapacityAdults: 2, CapacityChildren: 1, Status: domain.RoomAvailable, Active: true},
		{Name: "Deluxe Ocean View", Description: "Second floor room with a balcony over the beach", PricePerNight: 14500, CapacityAdults: 2, CapacityChildren: 2, Status: domain.RoomAvailable, Active: true},
		{Name: "Family Suite", Description: "Two bedroom suite with a kitchenette", PricePerNight: 22000, CapacityAdults: 4, CapacityChildren: 3, Status: domain.RoomAvailable, Active: true},
		{Name: "Honeymoon Villa", Description: "Private villa with a plunge pool", PricePerNight: 35000, CapacityAdults: 2, CapacityChildren: 0, Status: domain.RoomAvailable, Active: true},
	}
	for i := range rooms {
		db.Create(&rooms[i])
		log.Printf("Room created: %s (KES %d/night)", rooms[i].Name, rooms[i].PricePerNight)
	}

	log.Println("Seed complete.")
}
