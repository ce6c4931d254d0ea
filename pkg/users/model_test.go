package users

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validForm() UserForm {
	return UserForm{Name: "Ada", Username: "ada", Email: "ada@example.com", Language: "en"}
}

func TestUserFormValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*UserForm)
		fields []string
	}{
		{name: "valid", modify: func(*UserForm) {}},
		{name: "empty name", modify: func(f *UserForm) { f.Name = "" }, fields: []string{"name"}},
		{name: "blank username", modify: func(f *UserForm) { f.Username = "   " }, fields: []string{"username"}},
		{name: "name too long", modify: func(f *UserForm) { f.Name = strings.Repeat("a", 51) }, fields: []string{"name"}},
		{name: "bad email", modify: func(f *UserForm) { f.Email = "not-an-email" }, fields: []string{"email"}},
		{name: "unknown language", modify: func(f *UserForm) { f.Language = "de" }, fields: []string{"language"}},
		{name: "missing language", modify: func(f *UserForm) { f.Language = "" }, fields: []string{"language"}},
		{
			name: "everything wrong",
			modify: func(f *UserForm) {
				*f = UserForm{Email: "x"}
			},
			fields: []string{"email", "language", "name", "username"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.modify(&f)
			_, errs := f.Validate()
			if tt.fields == nil {
				assert.NoError(t, errs.Err())
				return
			}
			assert.Equal(t, tt.fields, errs.Fields())
		})
	}
}

func TestUserFormValidateMessages(t *testing.T) {
	_, errs := UserForm{Email: "x", Language: "de"}.Validate()

	assert.Equal(t, []string{"Name is required"}, errs["name"])
	assert.Equal(t, []string{"Username is required"}, errs["username"])
	assert.Equal(t, []string{"Invalid email address"}, errs["email"])
	assert.Equal(t, []string{"Select a language"}, errs["language"])
}

func TestUserFormValidateNormalizes(t *testing.T) {
	clean, errs := UserForm{Name: " Ada ", Username: "ada\t", Email: " ada@example.com", Language: "nl"}.Validate()

	assert.NoError(t, errs.Err())
	assert.Equal(t, UserForm{Name: "Ada", Username: "ada", Email: "ada@example.com", Language: "nl"}, clean)
}

func TestUserValidateLanguageIsOptional(t *testing.T) {
	u := User{ID: 1, Name: "Ada", Username: "ada", Email: "ada@example.com"}
	assert.NoError(t, u.Validate())

	fr := "fr"
	u.Language = &fr
	assert.NoError(t, u.Validate())

	xx := "xx"
	u.Language = &xx
	assert.Error(t, u.Validate())
}

func TestUserListValidate(t *testing.T) {
	ok := User{ID: 1, Name: "Ada", Username: "ada", Email: "ada@example.com"}
	bad := User{ID: 2, Name: "", Username: "x", Email: "x@example.com"}

	assert.NoError(t, UserList{ok}.Validate())
	assert.Error(t, UserList{ok, bad}.Validate())
	assert.NoError(t, UserList{}.Validate())
}

func TestPreview(t *testing.T) {
	u := validForm().Preview(-3)

	assert.Equal(t, -3, u.ID)
	assert.Equal(t, "Ada", u.Name)
	if assert.NotNil(t, u.Language) {
		assert.Equal(t, "en", *u.Language)
	}
}

func TestLanguageLabel(t *testing.T) {
	label, ok := LanguageLabel("nl")
	assert.True(t, ok)
	assert.Equal(t, "Dutch", label)

	_, ok = LanguageLabel("de")
	assert.False(t, ok)

	assert.Equal(t, []string{"auto", "en", "nl", "fr"}, LanguageValues())
}
