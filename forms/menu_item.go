package forms

const (
	FieldPrice       Field = "price"
	FieldCategory    Field = "categoryId"
	FieldIsAvailable Field = "isAvailable"
	FieldMainImage   Field = "mainImage"
	FieldThumbnail   Field = "thumbnail"
)

// MenuItem backs both the create and the edit modal. Editing relaxes the main image.
type MenuItem struct {
	Name        string `form:"name"`
	Description string `form:"description"`
	Price       string `form:"price"`
	CategoryID  string `form:"categoryId"`
	IsAvailable bool   `form:"isAvailable"`

	MainImage *Upload `form:"-"`
	Thumbnail *Upload `form:"-"`
	Editing   bool    `form:"-"`
}

func (m *MenuItem) Fields() []Field {
	return []Field{FieldName, FieldDescription, FieldPrice, FieldCategory, FieldIsAvailable, FieldMainImage, FieldThumbnail}
}

func (m *MenuItem) Validate() Errors {
	e := Errors{}
	required(e, FieldName, m.Name, "Name")
	maxLength(e, FieldDescription, m.Description, "Description", 1000)
	if required(e, FieldPrice, m.Price, "Price") {
		if _, ok := ParsePositive(m.Price); !ok {
			e.Add(FieldPrice, "Price must be a positive number")
		}
	}
	required(e, FieldCategory, m.CategoryID, "Category")
	checkFile(e, FieldMainImage, m.MainImage, "Main image", ImageTypes, !m.Editing)
	checkFile(e, FieldThumbnail, m.Thumbnail, "Thumbnail", ImageTypes, false)
	return e
}

// PriceValue is only meaningful after Validate passed.
func (m *MenuItem) PriceValue() float64 {
	v, _ := ParsePositive(m.Price)
	return v
}
