// internal/database/seeder.go
package database

import (
	"context"
	"log"

	"github.com/Doppler617492/MagacinTracker-sub000/internal/auth"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type User struct {
	Email    string `bson:"email"`
	Name     string `bson:"name"`
	Password string `bson:"password"`
	Role     string `bson:"role"`
	WorkerID string `bson:"workerID"`
	Status   string `bson:"status"`
}

// SeedAdmin creates the default admin account on first startup.
func SeedAdmin(db *mongo.Database) error {
	userCollection := db.Collection("users")
	adminEmail := "admin@example.com"

	count, err := userCollection.CountDocuments(context.Background(), bson.M{"email": adminEmail})
	if err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin already exists. Seeding skipped.")
		return nil
	}

	log.Println("Admin not found. Seeding...")
	hashedPassword, err := auth.HashPassword("adminpassword")
	if err != nil {
		return err
	}

	admin := User{
		Email:    adminEmail,
		Name:     "Admin",
		Password: hashedPassword,
		Role:     "admin",
		WorkerID: "system",
		Status:   "active",
	}

	_, err = userCollection.InsertOne(context.Background(), admin)
	if err != nil {
		return err
	}

	log.Println("Admin seeded successfully.")
	return nil
}
