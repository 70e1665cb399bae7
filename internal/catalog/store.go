package catalog

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrCropNotFound reports a crop name absent from the reference table.
var ErrCropNotFound = errors.New("crop not found")

// Store is the read-only reference catalog of crop profiles and
// management recommendations, backed by an embedded SQLite database.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the catalog database at path and ensures the
// schema and seed data are in place. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open catalog database: %w", err)
	}
	if err := db.AutoMigrate(&CropProfile{}, &Recommendation{}); err != nil {
		return nil, fmt.Errorf("migrate catalog schema: %w", err)
	}
	s := &Store{db: db}
	if err := s.seed(); err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}
	return s, nil
}

// Crops returns all crop profiles in name order.
func (s *Store) Crops() ([]CropProfile, error) {
	var crops []CropProfile
	if err := s.db.Order("name").Find(&crops).Error; err != nil {
		return nil, fmt.Errorf("list crops: %w", err)
	}
	return crops, nil
}

// CropByName looks up one crop profile. Returns ErrCropNotFound for names
// outside the reference table.
func (s *Store) CropByName(name string) (*CropProfile, error) {
	var crop CropProfile
	err := s.db.Where("name = ?", name).First(&crop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrCropNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup crop %s: %w", name, err)
	}
	return &crop, nil
}

// RecommendationsFor returns the guidance lines for a crop, in order.
// Unknown crops resolve to the default water-table guidance rather than
// an error.
func (s *Store) RecommendationsFor(cropName string) ([]string, error) {
	group := GroupDefault
	if crop, err := s.CropByName(cropName); err == nil {
		group = crop.RecommendationGroup
	} else if !errors.Is(err, ErrCropNotFound) {
		return nil, err
	}

	var rows []Recommendation
	if err := s.db.Where("group_key = ?", group).Order("position").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list recommendations for %s: %w", group, err)
	}
	guidance := make([]string, 0, len(rows))
	for _, r := range rows {
		guidance = append(guidance, r.Guidance)
	}
	return guidance, nil
}
