// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tphakala/birdwalk/internal/conf"
)

// Interface abstracts the underlying database implementation and defines the
// operations the rest of the application may perform.
type Interface interface {
	Open() error
	Close() error
	// walks
	SaveWalk(walk *Walk) error
	GetWalk(id uint) (Walk, error)
	GetWalks(userID string) ([]Walk, error)
	UpdateWalk(id uint, fields map[string]any) error
	DeleteWalk(id uint) error
	// sightings
	SaveSighting(sighting *Sighting) error
	GetSighting(id uint) (Sighting, error)
	GetSightingsByWalk(walkID uint) ([]Sighting, error)
	UpdateSighting(id uint, fields map[string]any) error
	DeleteSighting(id uint) error
	GetAllSightings(userID string) ([]SightingWithWalk, error)
	// search
	SearchWalks(userID, query string, limit int) ([]WalkSummary, error)
	SearchSpecies(userID, query string, limit int) ([]SpeciesSummary, error)
	// image cache persistence
	GetImageCache(speciesKey string) (*ImageCache, error)
	SaveImageCache(entry *ImageCache) error
	GetAllImageCaches() ([]ImageCache, error)
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// New creates a new datastore based on the provided configuration.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{
			Settings: settings,
		}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{
			Settings: settings,
		}
	default:
		return nil
	}
}

// SaveWalk stores a walk, updating it in place if it already has an ID.
func (ds *DataStore) SaveWalk(walk *Walk) error {
	if err := ds.DB.Save(walk).Error; err != nil {
		return fmt.Errorf("saving walk: %w", err)
	}
	return nil
}

// GetWalk retrieves a walk by its ID.
func (ds *DataStore) GetWalk(id uint) (Walk, error) {
	var walk Walk
	if err := ds.DB.First(&walk, id).Error; err != nil {
		return Walk{}, fmt.Errorf("getting walk with ID %d: %w", id, err)
	}
	return walk, nil
}

// GetWalks retrieves all walks for a user, newest first.
func (ds *DataStore) GetWalks(userID string) ([]Walk, error) {
	var walks []Walk
	err := ds.DB.Where("user_id = ?", userID).
		Order("date DESC, start_time DESC").
		Find(&walks).Error
	if err != nil {
		return nil, fmt.Errorf("getting walks for user %s: %w", userID, err)
	}
	return walks, nil
}

// UpdateWalk updates specific fields of a walk.
func (ds *DataStore) UpdateWalk(id uint, fields map[string]any) error {
	result := ds.DB.Model(&Walk{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("updating walk %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteWalk removes a walk and its sightings in a single transaction.
func (ds *DataStore) DeleteWalk(id uint) error {
	return ds.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("walk_id = ?", id).Delete(&Sighting{}).Error; err != nil {
			return fmt.Errorf("deleting sightings for walk %d: %w", id, err)
		}
		if err := tx.Delete(&Walk{}, id).Error; err != nil {
			return fmt.Errorf("deleting walk %d: %w", id, err)
		}
		return nil
	})
}

// SaveSighting stores a sighting, updating it in place if it already has an ID.
func (ds *DataStore) SaveSighting(sighting *Sighting) error {
	if err := ds.DB.Save(sighting).Error; err != nil {
		return fmt.Errorf("saving sighting: %w", err)
	}
	return nil
}

// GetSighting retrieves a sighting by its ID.
func (ds *DataStore) GetSighting(id uint) (Sighting, error) {
	var sighting Sighting
	if err := ds.DB.First(&sighting, id).Error; err != nil {
		return Sighting{}, fmt.Errorf("getting sighting with ID %d: %w", id, err)
	}
	return sighting, nil
}

// GetSightingsByWalk retrieves all sightings of a walk, newest first.
func (ds *DataStore) GetSightingsByWalk(walkID uint) ([]Sighting, error) {
	var sightings []Sighting
	err := ds.DB.Where("walk_id = ?", walkID).
		Order("timestamp DESC").
		Find(&sightings).Error
	if err != nil {
		return nil, fmt.Errorf("getting sightings for walk %d: %w", walkID, err)
	}
	return sightings, nil
}

// UpdateSighting updates specific fields of a sighting.
func (ds *DataStore) UpdateSighting(id uint, fields map[string]any) error {
	result := ds.DB.Model(&Sighting{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("updating sighting %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteSighting removes a sighting.
func (ds *DataStore) DeleteSighting(id uint) error {
	if err := ds.DB.Delete(&Sighting{}, id).Error; err != nil {
		return fmt.Errorf("deleting sighting %d: %w", id, err)
	}
	return nil
}

// GetAllSightings retrieves every sighting of a user joined with its parent
// walk's name and date, newest first. This is the source row set for the
// life-list aggregation.
func (ds *DataStore) GetAllSightings(userID string) ([]SightingWithWalk, error) {
	var rows []SightingWithWalk
	err := ds.DB.Table("sightings").
		Select("sightings.id, sightings.walk_id, walks.name as walk_name, walks.date as walk_date, "+
			"sightings.species_code, sightings.common_name, sightings.scientific_name, "+
			"sightings.timestamp, sightings.observation_type").
		Joins("INNER JOIN walks ON walks.id = sightings.walk_id").
		Where("walks.user_id = ?", userID).
		Order("sightings.timestamp DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("getting sightings for user %s: %w", userID, err)
	}
	return rows, nil
}

// GetImageCache retrieves a persisted image resolution result by species key.
func (ds *DataStore) GetImageCache(speciesKey string) (*ImageCache, error) {
	var entry ImageCache
	if err := ds.DB.Where("species_key = ?", speciesKey).First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// SaveImageCache stores an image resolution result, replacing any previous
// entry for the same species key.
func (ds *DataStore) SaveImageCache(entry *ImageCache) error {
	var existing ImageCache
	err := ds.DB.Where("species_key = ?", entry.SpeciesKey).First(&existing).Error
	if err == nil {
		entry.ID = existing.ID
	} else if err != gorm.ErrRecordNotFound {
		return err
	}
	return ds.DB.Save(entry).Error
}

// GetAllImageCaches retrieves all persisted image resolution results.
func (ds *DataStore) GetAllImageCaches() ([]ImageCache, error) {
	var entries []ImageCache
	if err := ds.DB.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// performAutoMigration automates database migrations with error handling.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(&Walk{}, &Sighting{}, &ImageCache{}); err != nil {
		return fmt.Errorf("failed to auto-migrate %s database: %w", dbType, err)
	}

	if debug {
		log.Printf("%s database connection initialized: %s", dbType, connectionInfo)
	}

	return nil
}

// createGormLogger configures and returns a new GORM logger instance.
func createGormLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)
}
