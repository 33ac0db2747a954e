package forms

import "strings"

// AllowedCountry is the only market accepted at registration.
const AllowedCountry = "Sri Lanka"

const (
	FieldRestaurantName        Field = "restaurantName"
	FieldOwnerName             Field = "ownerName"
	FieldEmail                 Field = "email"
	FieldPhone                 Field = "phone"
	FieldPassword              Field = "password"
	FieldConfirmPassword       Field = "confirmPassword"
	FieldCuisineType           Field = "cuisineType"
	FieldDescription           Field = "description"
	FieldStreet                Field = "street"
	FieldCity                  Field = "city"
	FieldProvince              Field = "province"
	FieldPostalCode            Field = "postalCode"
	FieldCountry               Field = "country"
	FieldBusinessLicense       Field = "businessLicense"
	FieldFoodSafetyCertificate Field = "foodSafetyCertificate"
)

type RestaurantRegistration struct {
	RestaurantName  string `form:"restaurantName"`
	OwnerName       string `form:"ownerName"`
	Email           string `form:"email"`
	Phone           string `form:"phone"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirmPassword"`
	CuisineType     string `form:"cuisineType"`
	Description     string `form:"description"`
	Street          string `form:"street"`
	City            string `form:"city"`
	Province        string `form:"province"`
	PostalCode      string `form:"postalCode"`
	Country         string `form:"country"`

	BusinessLicense       *Upload `form:"-"`
	FoodSafetyCertificate *Upload `form:"-"`
}

func (r *RestaurantRegistration) Fields() []Field {
	return []Field{
		FieldRestaurantName, FieldOwnerName, FieldEmail, FieldPhone, FieldPassword,
		FieldConfirmPassword, FieldCuisineType, FieldDescription, FieldStreet, FieldCity,
		FieldProvince, FieldPostalCode, FieldCountry, FieldBusinessLicense,
		FieldFoodSafetyCertificate,
	}
}

func (r *RestaurantRegistration) Validate() Errors {
	e := Errors{}
	required(e, FieldRestaurantName, r.RestaurantName, "Restaurant name")
	required(e, FieldOwnerName, r.OwnerName, "Owner name")
	email(e, FieldEmail, r.Email)
	phone(e, FieldPhone, r.Phone)
	password(e, FieldPassword, r.Password)
	if required(e, FieldConfirmPassword, r.ConfirmPassword, "Password confirmation") &&
		strings.TrimSpace(r.Password) != "" && r.ConfirmPassword != r.Password {
		e.Add(FieldConfirmPassword, "Passwords do not match")
	}
	required(e, FieldCuisineType, r.CuisineType, "Cuisine type")
	maxLength(e, FieldDescription, r.Description, "Description", 1000)
	validateAddress(e, r.Street, r.City, r.Province, r.PostalCode, r.Country)
	checkFile(e, FieldBusinessLicense, r.BusinessLicense, "Business license", DocumentTypes, false)
	checkFile(e, FieldFoodSafetyCertificate, r.FoodSafetyCertificate, "Food safety certificate", DocumentTypes, false)
	return e
}

func validateAddress(e Errors, street, city, province, postal, country string) {
	required(e, FieldStreet, street, "Street address")
	required(e, FieldCity, city, "City")
	required(e, FieldProvince, province, "Province")
	required(e, FieldPostalCode, postal, "Postal code")
	if required(e, FieldCountry, country, "Country") && strings.TrimSpace(country) != AllowedCountry {
		e.Add(FieldCountry, "Only "+AllowedCountry+" is allowed")
	}
}

// RestaurantProfile is the back-office edit of an existing restaurant.
type RestaurantProfile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CuisineType string `json:"cuisineType"`
	Phone       string `json:"phone"`
	Street      string `json:"street"`
	City        string `json:"city"`
	Province    string `json:"province"`
	PostalCode  string `json:"postalCode"`
	Country     string `json:"country"`
}

const FieldName Field = "name"

func (p *RestaurantProfile) Fields() []Field {
	return []Field{
		FieldName, FieldDescription, FieldCuisineType, FieldPhone, FieldStreet,
		FieldCity, FieldProvince, FieldPostalCode, FieldCountry,
	}
}

func (p *RestaurantProfile) Validate() Errors {
	e := Errors{}
	required(e, FieldName, p.Name, "Restaurant name")
	required(e, FieldCuisineType, p.CuisineType, "Cuisine type")
	phone(e, FieldPhone, p.Phone)
	maxLength(e, FieldDescription, p.Description, "Description", 1000)
	validateAddress(e, p.Street, p.City, p.Province, p.PostalCode, p.Country)
	return e
}
