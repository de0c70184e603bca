// seed-employee creates or updates a directory employee, typically the first Admin.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//   go run ./cmd/seed-employee -email admin@eurodoor.co.ke -password '...' -role Admin
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/evanbosire/Eurodoor-Backend/config"
	"github.com/evanbosire/Eurodoor-Backend/models"
	"github.com/evanbosire/Eurodoor-Backend/utils"
	"gorm.io/gorm"
)

func main() {
	email := flag.String("email", os.Getenv("SEED_EMPLOYEE_EMAIL"), "employee email")
	password := flag.String("password", os.Getenv("SEED_EMPLOYEE_PASSWORD"), "employee password")
	name := flag.String("name", "EuroDoor Admin", "display name")
	role := flag.String("role", string(models.EmployeeRoleAdmin), "employee role")
	migrate := flag.Bool("migrate", false, "run AutoMigrate before seeding")
	flag.Parse()

	if strings.TrimSpace(*email) == "" || len(*password) < 6 {
		fmt.Fprintln(os.Stderr, "-email and -password (min 6 chars) are required")
		os.Exit(2)
	}
	parsedRole, err := models.ParseEmployeeRole(*role)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	if *migrate {
		models.MigrateTable()
	}

	var existing models.Employee
	err = db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(*email))).First(&existing).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Fprintf(os.Stderr, "failed to lookup employee: %v\n", err)
			os.Exit(1)
		}
		employee, err := models.CreateEmployee(ctx, &models.NewEmployee{
			Name:     *name,
			Email:    *email,
			Password: *password,
			Role:     string(parsedRole),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create employee: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created employee: id=%d email=%q role=%s\n", employee.ID, employee.Email, employee.Role)
		return
	}

	// Update existing employee: reset password and role, reactivate
	hashed, err := utils.HashPassword(*password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}
	if err := db.WithContext(ctx).Model(&existing).Updates(map[string]any{
		"Password": hashed,
		"Name":     *name,
		"Role":     parsedRole,
		"Status":   models.EmployeeStatusActive,
	}).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to update employee: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Updated employee: id=%d email=%q role=%s\n", existing.ID, existing.Email, parsedRole)
}
