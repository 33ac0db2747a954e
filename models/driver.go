package models

// GeoPoint follows GeoJSON: Coordinates is [longitude, latitude].
type GeoPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

func NewGeoPoint(lat, lon float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: [2]float64{lon, lat}}
}

func (p GeoPoint) Longitude() float64 { return p.Coordinates[0] }
func (p GeoPoint) Latitude() float64  { return p.Coordinates[1] }

type VehicleType string

const (
	VehicleBicycle    VehicleType = "bicycle"
	VehicleMotorcycle VehicleType = "motorcycle"
	VehicleCar        VehicleType = "car"
	VehicleVan        VehicleType = "van"
)

type Driver struct {
	ID              string      `json:"id"`
	UserID          string      `json:"userId"`
	VehicleType     VehicleType `json:"vehicleType"`
	VehicleNumber   string      `json:"vehicleNumber"`
	LicenseNumber   string      `json:"licenseNumber"`
	Location        *GeoPoint   `json:"location,omitempty"`
	IsAvailable     bool        `json:"isAvailable"`
	CurrentDelivery *string     `json:"currentDelivery"`
}

// CurrentDeliveryID returns "" when no delivery is assigned.
func (d *Driver) CurrentDeliveryID() string {
	if d == nil || d.CurrentDelivery == nil {
		return ""
	}
	return *d.CurrentDelivery
}
