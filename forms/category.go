package forms

const maxCategoryDescription = 500

type Category struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (c *Category) Fields() []Field { return []Field{FieldName, FieldDescription} }

func (c *Category) Validate() Errors {
	e := Errors{}
	required(e, FieldName, c.Name, "Category name")
	maxLength(e, FieldDescription, c.Description, "Description", maxCategoryDescription)
	return e
}
