package database

import (
	"database/sql"
	"fmt"

	"compstone/server/internal/geocoding"
	"compstone/server/internal/models"

	_ "github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Database struct {
	db *sql.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign keys
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

const propertyColumns = `
	id,
	COALESCE(address, '') as address,
	COALESCE(property_width, 0) as property_width,
	COALESCE(property_depth, 0) as property_depth,
	COALESCE(building_width, 0) as building_width,
	COALESCE(building_depth, 0) as building_depth,
	COALESCE(stories, 0) as stories,
	COALESCE(floors, 0) as floors,
	COALESCE(original_sale_price, 0) as original_sale_price,
	COALESCE(sale_date, 'unknown') as sale_date,
	COALESCE(renovated, 'No') as renovated,
	COALESCE(original_details, 'Unknown') as original_details,
	COALESCE(tax_class, '') as tax_class,
	COALESCE(occupancy, '') as occupancy,
	COALESCE(included, 1) as included,
	latitude,
	longitude
`

// GetComps returns every comparable sale on record.
func (d *Database) GetComps() ([]*models.Property, error) {
	rows, err := d.db.Query(`SELECT ` + propertyColumns + ` FROM comps ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query comps: %w", err)
	}
	defer rows.Close()

	return scanProperties(rows)
}

// targetColumns matches the comp column order, substituting literals for
// the sale facts a target does not have.
const targetColumns = `
	id,
	COALESCE(address, '') as address,
	COALESCE(property_width, 0) as property_width,
	COALESCE(property_depth, 0) as property_depth,
	COALESCE(building_width, 0) as building_width,
	COALESCE(building_depth, 0) as building_depth,
	COALESCE(stories, 0) as stories,
	COALESCE(floors, 0) as floors,
	0 as original_sale_price,
	'unknown' as sale_date,
	COALESCE(renovated, 'No') as renovated,
	COALESCE(original_details, 'Unknown') as original_details,
	COALESCE(tax_class, '') as tax_class,
	COALESCE(occupancy, '') as occupancy,
	1 as included,
	latitude,
	longitude
`

// GetTargets returns the candidate target properties.
func (d *Database) GetTargets() ([]*models.Property, error) {
	rows, err := d.db.Query(`SELECT ` + targetColumns + ` FROM targets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query targets: %w", err)
	}
	defer rows.Close()

	return scanProperties(rows)
}

// GetTargetByID returns one target, or nil when it does not exist.
func (d *Database) GetTargetByID(id int64) (*models.Property, error) {
	rows, err := d.db.Query(`SELECT `+targetColumns+` FROM targets WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query target: %w", err)
	}
	defer rows.Close()

	targets, err := scanProperties(rows)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, nil
	}
	return targets[0], nil
}

func scanProperties(rows *sql.Rows) ([]*models.Property, error) {
	var properties []*models.Property
	for rows.Next() {
		var p models.Property
		var latitude, longitude sql.NullFloat64

		err := rows.Scan(
			&p.ID,
			&p.Address,
			&p.PropertyWidth,
			&p.PropertyDepth,
			&p.BuildingWidth,
			&p.BuildingDepth,
			&p.Stories,
			&p.Floors,
			&p.OriginalSalePrice,
			&p.SaleDate,
			&p.Renovated,
			&p.OriginalDetails,
			&p.TaxClass,
			&p.Occupancy,
			&p.Included,
			&latitude,
			&longitude,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}

		if latitude.Valid {
			lat := latitude.Float64
			p.Latitude = &lat
		}
		if longitude.Valid {
			lon := longitude.Float64
			p.Longitude = &lon
		}

		properties = append(properties, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating properties: %w", err)
	}
	return properties, nil
}

// InsertTarget stores a candidate target property.
func (d *Database) InsertTarget(p *models.Property) error {
	result, err := d.db.Exec(`
		INSERT INTO targets
		(address, property_width, property_depth, building_width, building_depth,
		 stories, floors, renovated, original_details, tax_class, occupancy,
		 latitude, longitude)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.Address, p.PropertyWidth, p.PropertyDepth, p.BuildingWidth, p.BuildingDepth,
		p.Stories, p.Floors, p.Renovated, p.OriginalDetails, p.TaxClass, p.Occupancy,
		p.Latitude, p.Longitude,
	)
	if err != nil {
		return fmt.Errorf("failed to insert target: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get target ID: %w", err)
	}
	p.ID = id
	return nil
}

// UpsertComps writes a batch of comps inside a GORM transaction, keyed on
// the address so re-imports update in place.
func UpsertComps(tx *gorm.DB, comps []*models.Property) error {
	if len(comps) == 0 {
		return nil
	}

	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		UpdateAll: true,
	}).Create(comps).Error
}

// UpdateMissingCoordinates geocodes every comp that has not been attempted
// yet. Failures are marked attempted so a bad address is not retried on
// every startup.
func (d *Database) UpdateMissingCoordinates(geocoder *geocoding.Geocoder) error {
	rows, err := d.db.Query(`
		SELECT id, address
		FROM comps
		WHERE (latitude IS NULL OR longitude IS NULL)
		AND geocoding_attempted = 0
		AND address IS NOT NULL
	`)
	if err != nil {
		return fmt.Errorf("failed to query comps for geocoding: %w", err)
	}

	type pending struct {
		id      int64
		address string
	}
	var queue []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.address); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan comp: %w", err)
		}
		queue = append(queue, p)
	}
	rows.Close()

	if len(queue) == 0 {
		return nil
	}

	stmt, err := d.db.Prepare(`
		UPDATE comps
		SET latitude = ?, longitude = ?, geocoding_attempted = 1
		WHERE id = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	failedStmt, err := d.db.Prepare(`
		UPDATE comps
		SET geocoding_attempted = 1
		WHERE id = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare failed statement: %w", err)
	}
	defer failedStmt.Close()

	for _, p := range queue {
		lat, lon, err := geocoder.GeocodeAddress(p.address)
		if err != nil {
			if _, err := failedStmt.Exec(p.id); err != nil {
				return fmt.Errorf("failed to mark geocoding attempt: %w", err)
			}
			continue
		}
		if _, err := stmt.Exec(lat, lon, p.id); err != nil {
			return fmt.Errorf("failed to update coordinates: %w", err)
		}
	}

	return nil
}

func (d *Database) GetDB() *sql.DB {
	return d.db
}

func (d *Database) Close() error {
	return d.db.Close()
}
