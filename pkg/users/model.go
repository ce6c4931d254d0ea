package users

import (
	"github.com/vango-dev/userboard/pkg/features/form"
)

// User is a user record as returned by the API.
type User struct {
	ID       int     `json:"id" form:"id"`
	Name     string  `json:"name" form:"name"`
	Username string  `json:"username" form:"username"`
	Email    string  `json:"email" form:"email"`
	Language *string `json:"language,omitempty" form:"language"`
}

// UserForm is the input for creating a user. Language is required here.
type UserForm struct {
	Name     string `json:"name" form:"name"`
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Language string `json:"language" form:"language"`
}

// Preview builds the user shown while the form is being submitted.
func (f UserForm) Preview(id int) User {
	lang := f.Language
	return User{
		ID:       id,
		Name:     f.Name,
		Username: f.Username,
		Email:    f.Email,
		Language: &lang,
	}
}

const (
	msgNameRequired     = "Name is required"
	msgNameTooLong      = "Name can max be 50 characters"
	msgUsernameRequired = "Username is required"
	msgUsernameTooLong  = "Username can max be 50 characters"
	msgInvalidEmail     = "Invalid email address"
	msgSelectLanguage   = "Select a language"
)

var (
	userSchema = form.NewSchema[User]().
		Rule("name", form.Required(msgNameRequired), form.MaxLength(50, msgNameTooLong)).
		Rule("username", form.Required(msgUsernameRequired), form.MaxLength(50, msgUsernameTooLong)).
		Rule("email", form.Required(msgInvalidEmail), form.Email(msgInvalidEmail)).
		Rule("language", form.OneOf(LanguageValues(), msgSelectLanguage))

	formSchema = form.NewSchema[UserForm]().
		Rule("name", form.Required(msgNameRequired), form.MaxLength(50, msgNameTooLong)).
		Rule("username", form.Required(msgUsernameRequired), form.MaxLength(50, msgUsernameTooLong)).
		Rule("email", form.Required(msgInvalidEmail), form.Email(msgInvalidEmail)).
		Rule("language", form.OneOf(LanguageValues(), msgSelectLanguage))
)

// Validate checks a decoded user against the record rules.
func (u User) Validate() error {
	_, errs := userSchema.Validate(u)
	return errs.Err()
}

// Validate normalizes and checks the form. It returns the normalized form.
func (f UserForm) Validate() (UserForm, form.Errors) {
	return formSchema.Validate(f)
}

// UserList is the decoded body of GET /users.
type UserList []User

// Validate checks every user in the list.
func (l UserList) Validate() error {
	for _, u := range l {
		if err := u.Validate(); err != nil {
			return err
		}
	}
	return nil
}
