package forms

type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (l *Login) Fields() []Field { return []Field{FieldEmail, FieldPassword} }

func (l *Login) Validate() Errors {
	e := Errors{}
	email(e, FieldEmail, l.Email)
	password(e, FieldPassword, l.Password)
	return e
}
