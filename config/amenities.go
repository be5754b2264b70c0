package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Amenity kinds recognized by the regression study.
const (
	AmenityTransit    = "transit"
	AmenityCommercial = "commercial"
)

// Amenity is a named landmark (a subway stop, a commercial corridor) whose
// distance to each comp feeds the regression study's proximity variables.
type Amenity struct {
	Name      string  `json:"name"`
	Kind      string  `json:"kind"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AmenityConfig is the on-disk amenity landmark list.
type AmenityConfig struct {
	Amenities []Amenity `json:"amenities"`
}

var (
	amenityConfig *AmenityConfig
	amenityLock   sync.RWMutex
	amenityPath   = "config/amenities.json"
)

// LoadAmenityConfig loads the amenity landmark configuration from file.
func LoadAmenityConfig() error {
	amenityLock.Lock()
	defer amenityLock.Unlock()

	absPath, err := filepath.Abs(amenityPath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %v", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return fmt.Errorf("failed to read amenity config: %v", err)
	}

	var cfg AmenityConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse amenity config: %v", err)
	}

	amenityConfig = &cfg
	return nil
}

// SaveAmenityConfig saves the current amenity configuration to file.
func SaveAmenityConfig() error {
	amenityLock.Lock()
	defer amenityLock.Unlock()
	return saveAmenityConfigLocked()
}

func saveAmenityConfigLocked() error {
	if amenityConfig == nil {
		return fmt.Errorf("no amenity configuration loaded")
	}

	absPath, err := filepath.Abs(amenityPath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %v", err)
	}

	data, err := json.MarshalIndent(amenityConfig, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal amenity config: %v", err)
	}

	if err := os.WriteFile(absPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write amenity config: %v", err)
	}

	return nil
}

// GetAmenities returns all configured amenity landmarks.
func GetAmenities() []Amenity {
	amenityLock.RLock()
	defer amenityLock.RUnlock()

	if amenityConfig == nil {
		return nil
	}

	amenities := make([]Amenity, len(amenityConfig.Amenities))
	copy(amenities, amenityConfig.Amenities)
	return amenities
}

// GetAmenitiesByKind returns the landmarks of one kind.
func GetAmenitiesByKind(kind string) []Amenity {
	amenityLock.RLock()
	defer amenityLock.RUnlock()

	if amenityConfig == nil {
		return nil
	}

	var out []Amenity
	for _, a := range amenityConfig.Amenities {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

// UpdateAmenity updates or adds an amenity landmark by name.
func UpdateAmenity(amenity Amenity) error {
	amenityLock.Lock()
	defer amenityLock.Unlock()

	if amenityConfig == nil {
		amenityConfig = &AmenityConfig{}
	}

	found := false
	for i, existing := range amenityConfig.Amenities {
		if existing.Name == amenity.Name {
			amenityConfig.Amenities[i] = amenity
			found = true
			break
		}
	}
	if !found {
		amenityConfig.Amenities = append(amenityConfig.Amenities, amenity)
	}

	return saveAmenityConfigLocked()
}

// DeleteAmenity removes an amenity landmark by name.
func DeleteAmenity(name string) error {
	amenityLock.Lock()
	defer amenityLock.Unlock()

	if amenityConfig == nil {
		return fmt.Errorf("no amenity configuration loaded")
	}

	for i, a := range amenityConfig.Amenities {
		if a.Name == name {
			amenityConfig.Amenities = append(
				amenityConfig.Amenities[:i],
				amenityConfig.Amenities[i+1:]...,
			)
			return saveAmenityConfigLocked()
		}
	}

	return fmt.Errorf("amenity not found: %s", name)
}
