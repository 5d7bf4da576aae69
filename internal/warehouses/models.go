package warehouses

import "time"

// Warehouse describes one physical site and the addressing grid its robots
// navigate (cities > districts > streets > buildings, across levels).
type Warehouse struct {
	ID                 string
	Code               string
	Name               string
	Levels             string
	Cities             int
	DistrictsPerCity   int
	StreetsPerDistrict int
	BuildingsPerStreet int
	Barcode            string
	Active             bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
