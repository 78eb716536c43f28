package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/clotsync/clotsync-api/internal/models"
	"github.com/clotsync/clotsync-api/internal/repository"
	"github.com/clotsync/clotsync-api/internal/service"
	"github.com/clotsync/clotsync-api/pkg/config"
	"github.com/clotsync/clotsync-api/pkg/database"
	"github.com/clotsync/clotsync-api/pkg/logger"
)

// Imports donors in bulk from a CSV export. Rows with a duplicate contact
// number are skipped, passwords are bcrypt-hashed, and the eligibility verdict
// is recomputed from the last donation date rather than trusted from the file.
func main() {
	var (
		filePath        = flag.String("file", "", "path to the donors CSV file")
		defaultPassword = flag.String("default-password", "default123", "password for rows without one")
		dryRun          = flag.Bool("dry-run", false, "parse and validate without writing")
	)
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: bulk-import -file donors.csv [-default-password pw] [-dry-run]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	if err := run(context.Background(), repository.NewDonorRepository(db), logr, *filePath, *defaultPassword, *dryRun); err != nil {
		logr.Sugar().Fatalw("bulk import failed", "error", err)
	}
}

func run(ctx context.Context, donors *repository.DonorRepository, logr *zap.Logger, filePath, defaultPassword string, dryRun bool) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	columns := indexColumns(header)
	for _, required := range []string{"name", "blood_group"} {
		if _, ok := columns[required]; !ok {
			return fmt.Errorf("csv is missing required column %q", required)
		}
	}

	var imported, skipped, failed int
	row := 1
	for {
		record, err := reader.Read()
		if err != nil {
			break
		}
		row++

		donor, reason := buildDonor(columns, record, row, defaultPassword)
		if donor == nil {
			logr.Sugar().Warnw("skipping row", "row", row, "reason", reason)
			failed++
			continue
		}

		exists, err := donors.ExistsByContact(ctx, donor.Contact)
		if err != nil {
			return fmt.Errorf("row %d: check contact: %w", row, err)
		}
		if exists {
			logr.Sugar().Infow("contact already registered, skipping", "row", row, "contact", donor.Contact)
			skipped++
			continue
		}

		if dryRun {
			imported++
			continue
		}
		if err := donors.Create(ctx, donor); err != nil {
			logr.Sugar().Warnw("insert failed", "row", row, "error", err)
			failed++
			continue
		}
		imported++

		if imported%50 == 0 {
			logr.Sugar().Infow("progress", "imported", imported)
		}
	}

	logr.Sugar().Infow("bulk import finished", "imported", imported, "skipped", skipped, "failed", failed, "dry_run", dryRun)
	return nil
}

func indexColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, taken := columns[key]; !taken {
			columns[key] = i
		}
	}
	return columns
}

func buildDonor(columns map[string]int, record []string, row int, defaultPassword string) (*models.Donor, string) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	name := field("name")
	if name == "" {
		return nil, "name is empty"
	}
	bloodType := field("blood_group")
	if bloodType == "" {
		return nil, "blood_group is empty"
	}

	contact := field("contact")
	if contact == "" {
		contact = fmt.Sprintf("9999999%04d", row)
	}

	password := field("password")
	if password == "" {
		password = defaultPassword
	}
	hash, err := service.HashPassword(password)
	if err != nil {
		return nil, "password hashing failed"
	}

	donor := &models.Donor{
		Name:           name,
		BloodType:      bloodType,
		Contact:        contact,
		PasswordHash:   &hash,
		Available:      parseAvailability(field("availability")),
		DonationsCount: parseCount(field("donation_count")),
		Latitude:       parseCoordinate(field("latitude")),
		Longitude:      parseCoordinate(field("longitude")),
		LastDonated:    parseDate(field("last_donated")),
	}

	if gender := strings.ToLower(field("gender")); gender != "" {
		donor.Gender = &gender
	}
	if email := field("email"); email != "" {
		donor.Email = &email
	}

	donor.Location = field("location")
	if donor.Location == "" {
		if donor.Latitude != nil && donor.Longitude != nil {
			donor.Location = fmt.Sprintf("Lat: %.4f, Lon: %.4f", *donor.Latitude, *donor.Longitude)
		} else {
			donor.Location = "Unknown Location"
		}
	}

	donor.EligibilityStatus, donor.NextEligible = service.ComputeEligibility(donor.Gender, donor.LastDonated, time.Now().UTC())
	return donor, ""
}

func parseAvailability(value string) bool {
	if value == "" {
		return true
	}
	switch strings.ToLower(value) {
	case "active", "true", "yes", "1":
		return true
	default:
		return false
	}
}

func parseCount(value string) int {
	if value == "" {
		return 0
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseCoordinate(value string) *float64 {
	if value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", "02/01/2006", "01/02/2006", "2006/01/02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}
