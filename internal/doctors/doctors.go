// Package doctors serves the consult-a-doctor directory from SQLite.
package doctors

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite" // Pure Go SQLite driver
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/carescan/carescan/internal/config"
)

// Doctor is one directory entry.
type Doctor struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Name       string `gorm:"index" json:"name"`
	Specialty  string `gorm:"index" json:"specialty"`
	Experience string `json:"experience"`
	Phone      string `json:"phone"`
}

// Directory wraps the doctor table.
type Directory struct {
	db *gorm.DB
}

// Open opens the directory database, migrates the schema, and seeds the
// default roster if the table is empty.
func Open(cfg *config.Config) (*Directory, error) {
	sqlitePath := cfg.Storage.SQLitePath
	if sqlitePath == "" {
		sqlitePath = "carescan.db"
	}

	sqliteDB, err := sql.Open("sqlite", sqlitePath+"?_journal=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	sqliteDB.SetMaxOpenConns(10)
	sqliteDB.SetMaxIdleConns(5)
	sqliteDB.SetConnMaxLifetime(time.Hour)

	db, err := gorm.Open(sqlite.Dialector{Conn: sqliteDB}, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	if err := db.AutoMigrate(&Doctor{}); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	d := &Directory{db: db}
	if err := d.seed(); err != nil {
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *Directory) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// List returns all doctors, optionally filtered by specialty.
func (d *Directory) List(specialty string) ([]Doctor, error) {
	var doctors []Doctor
	q := d.db.Order("id")
	if specialty != "" {
		q = q.Where("specialty = ?", specialty)
	}
	if err := q.Find(&doctors).Error; err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

// Specialties returns the distinct specialties in the directory.
func (d *Directory) Specialties() ([]string, error) {
	var specialties []string
	err := d.db.Model(&Doctor{}).
		Distinct("specialty").
		Order("specialty").
		Pluck("specialty", &specialties).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list specialties: %w", err)
	}
	return specialties, nil
}

// Add inserts a new directory entry.
func (d *Directory) Add(doc Doctor) (Doctor, error) {
	if err := d.db.Create(&doc).Error; err != nil {
		return Doctor{}, fmt.Errorf("failed to add doctor: %w", err)
	}
	return doc, nil
}

func (d *Directory) seed() error {
	var count int64
	if err := d.db.Model(&Doctor{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count doctors: %w", err)
	}
	if count > 0 {
		return nil
	}
	if err := d.db.Create(defaultRoster()).Error; err != nil {
		return fmt.Errorf("failed to seed doctors: %w", err)
	}
	return nil
}

func defaultRoster() []Doctor {
	return []Doctor{
		{Name: "Dr. Rajesh Sharma", Specialty: "Cardiologist", Experience: "15 years", Phone: "+91 9876543210"},
		{Name: "Dr. Priya Mehta", Specialty: "Dermatologist", Experience: "12 years", Phone: "+91 9876543211"},
		{Name: "Dr. Amit Verma", Specialty: "General Physician", Experience: "10 years", Phone: "+91 9876543212"},
		{Name: "Dr. Sneha Reddy", Specialty: "Pulmonologist", Experience: "18 years", Phone: "+91 9876543213"},
		{Name: "Dr. Vikram Patel", Specialty: "Endocrinologist", Experience: "14 years", Phone: "+91 9876543214"},
		{Name: "Dr. Kavita Singh", Specialty: "Nephrologist", Experience: "16 years", Phone: "+91 9876543215"},
		{Name: "Dr. Anil Kumar", Specialty: "Oncologist", Experience: "20 years", Phone: "+91 9876543216"},
		{Name: "Dr. Neha Gupta", Specialty: "Neurologist", Experience: "13 years", Phone: "+91 9876543217"},
		{Name: "Dr. Sanjay Desai", Specialty: "Rheumatologist", Experience: "11 years", Phone: "+91 9876543218"},
		{Name: "Dr. Meera Iyer", Specialty: "Gastroenterologist", Experience: "17 years", Phone: "+91 9876543219"},
	}
}
