package database

import "fmt"

func (d *Database) RunMigrations() error {
	// Comparable sales
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS comps (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			address TEXT UNIQUE NOT NULL,
			property_width REAL,
			property_depth REAL,
			building_width REAL,
			building_depth REAL,
			stories INTEGER,
			floors INTEGER,
			original_sale_price REAL,
			sale_date TEXT,
			renovated TEXT,
			original_details TEXT,
			tax_class TEXT,
			occupancy TEXT,
			included BOOLEAN DEFAULT 1,
			latitude REAL,
			longitude REAL,
			geocoding_attempted BOOLEAN DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create comps table: %v", err)
	}

	// Candidate targets carry no sale facts
	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS targets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			address TEXT UNIQUE NOT NULL,
			property_width REAL,
			property_depth REAL,
			building_width REAL,
			building_depth REAL,
			stories INTEGER,
			floors INTEGER,
			renovated TEXT,
			original_details TEXT,
			tax_class TEXT,
			occupancy TEXT,
			latitude REAL,
			longitude REAL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create targets table: %v", err)
	}

	// Mark comps that already have coordinates as attempted
	_, err = d.db.Exec(`
		UPDATE comps
		SET geocoding_attempted = 1
		WHERE latitude IS NOT NULL
		AND longitude IS NOT NULL;
	`)
	if err != nil {
		return fmt.Errorf("failed to mark existing coordinates as attempted: %v", err)
	}

	// Create spatial index on coordinates
	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_comps_coordinates
		ON comps(latitude, longitude);
	`)
	if err != nil {
		return err
	}

	return nil
}
