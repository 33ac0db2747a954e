package forms

import "github.com/yeremiapane/food-delivery-web/models"

const (
	FieldVehicleType   Field = "vehicleType"
	FieldVehicleNumber Field = "vehicleNumber"
	FieldLicenseNumber Field = "licenseNumber"
)

type DriverRegistration struct {
	VehicleType   string `json:"vehicleType"`
	VehicleNumber string `json:"vehicleNumber"`
	LicenseNumber string `json:"licenseNumber"`
}

func (d *DriverRegistration) Fields() []Field {
	return []Field{FieldVehicleType, FieldVehicleNumber, FieldLicenseNumber}
}

func (d *DriverRegistration) Validate() Errors {
	e := Errors{}
	if required(e, FieldVehicleType, d.VehicleType, "Vehicle type") {
		switch models.VehicleType(d.VehicleType) {
		case models.VehicleBicycle, models.VehicleMotorcycle, models.VehicleCar, models.VehicleVan:
		default:
			e.Add(FieldVehicleType, "Vehicle type must be bicycle, motorcycle, car or van")
		}
	}
	required(e, FieldVehicleNumber, d.VehicleNumber, "Vehicle number")
	required(e, FieldLicenseNumber, d.LicenseNumber, "License number")
	return e
}
