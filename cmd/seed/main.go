package main

import (
	"log"
	"os"

	"medibook-be/internal/model"
	"medibook-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Seeding Patients...")

	patients := []model.Patient{
		{DocumentNumber: "12345678", FullName: "Laura Martinez", Email: "laura.martinez@example.com"},
		{DocumentNumber: "87654321", FullName: "Carlos Gomez", Email: "carlos.gomez@example.com"},
		{DocumentNumber: "45678912", FullName: "Ana Torres", Email: "ana.torres@example.com"},
	}

	for _, p := range patients {
		var existing model.Patient
		if err := db.Where("document_number = ?", p.DocumentNumber).First(&existing).Error; err == nil {
			log.Printf("Patient '%s' already exists, skipping...", p.DocumentNumber)
			continue
		}

		if err := db.Create(&p).Error; err != nil {
			log.Printf("Error creating patient '%s': %v", p.DocumentNumber, err)
		} else {
			log.Printf("Created patient: %s (%s)", p.FullName, p.DocumentNumber)
		}
	}

	log.Println("Seeding Professionals and Weekly Availability...")

	professionals := []model.Professional{
		{FullName: "Dr. Maria Ruiz", City: "Madrid", Specialty: "Cardiology", SlotDurationMin: 30},
		{FullName: "Dr. Javier Ortega", City: "Madrid", Specialty: "Dermatology", SlotDurationMin: 20},
		{FullName: "Dr. Elena Vidal", City: "Barcelona", Specialty: "Cardiology", SlotDurationMin: 30},
		{FullName: "Dr. Pablo Serrano", City: "Barcelona", Specialty: "Pediatrics", SlotDurationMin: 15},
	}

	for _, p := range professionals {
		var existing model.Professional
		if err := db.Where("full_name = ?", p.FullName).First(&existing).Error; err == nil {
			log.Printf("Professional '%s' already exists, skipping...", p.FullName)
			continue
		}

		if err := db.Create(&p).Error; err != nil {
			log.Printf("Error creating professional '%s': %v", p.FullName, err)
			continue
		}
		log.Printf("Created professional: %s (%s, %s)", p.FullName, p.Specialty, p.City)

		// Monday through Friday, mornings and afternoons.
		for weekday := 1; weekday <= 5; weekday++ {
			windows := []model.WeeklyAvailability{
				{ProfessionalId: p.Id, Weekday: weekday, StartTime: "09:00", EndTime: "13:00", Active: true},
				{ProfessionalId: p.Id, Weekday: weekday, StartTime: "15:00", EndTime: "18:00", Active: true},
			}
			for _, w := range windows {
				if err := db.Create(&w).Error; err != nil {
					log.Printf("Error creating availability for '%s': %v", p.FullName, err)
				}
			}
		}
	}

	log.Println("✅ Seeding completed!")
}
