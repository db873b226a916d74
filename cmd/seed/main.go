package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"io"
	"log"
	"os"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/feastly/backend/config"
	"github.com/pageza/feastly/backend/internal/database"
	"github.com/pageza/feastly/backend/internal/models"
)

var defaultTags = []models.Tag{
	{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
	{Name: "Lunch", Color: "#49B64E", Slug: "lunch"},
	{Name: "Dinner", Color: "#8775D2", Slug: "dinner"},
}

// Loads reference data: a CSV of ingredients (name,measurement_unit per row)
// and a default tag set. Rerunning is safe, existing rows are left alone.
func main() {
	csvPath := flag.String("ingredients", "data/ingredients.csv", "path to the ingredients CSV")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	n, err := seedIngredients(db, *csvPath)
	if err != nil {
		log.Fatalf("Failed to seed ingredients: %v", err)
	}
	log.Printf("seeded %d ingredients", n)

	if err := seedTags(db); err != nil {
		log.Fatalf("Failed to seed tags: %v", err)
	}
	log.Printf("seeded %d tags", len(defaultTags))
}

func seedIngredients(db *gorm.DB, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 2

	count := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, err
		}

		ingredient := models.Ingredient{Name: record[0], MeasurementUnit: record[1]}
		err = db.Clauses(clause.OnConflict{DoNothing: true}).Create(&ingredient).Error
		if err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func seedTags(db *gorm.DB) error {
	for _, tag := range defaultTags {
		t := tag
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&t).Error; err != nil {
			return err
		}
	}
	return nil
}
