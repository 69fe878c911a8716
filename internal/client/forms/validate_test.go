package forms

import (
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type names struct {
	First string `form:"firstName" validate:"min=2,personname"`
	Last  string `form:"lastName" validate:"min=2,personname"`
}

type passwords struct {
	New     string `form:"newPassword" validate:"min=8"`
	Confirm string `form:"confirmPassword" validate:"eqfield=New"`
}

func TestStruct_PersonName(t *testing.T) {
	tests := []struct {
		first, last string
		ok          bool
	}{
		{"Al", "Lee", true},
		{"Mary Ann", "O'Neil-Smith", true},
		{"A", "Lee", false},
		{"Al", "L3e", false},
		{"Zoë", "Lee", false},
	}
	for _, tt := range tests {
		err := Struct(names{tt.first, tt.last}, Messages{"firstName": "bad names", "lastName": "bad names"})
		if tt.ok {
			assert.NoError(t, err, "%s %s", tt.first, tt.last)
			continue
		}
		require.ErrorIs(t, err, common.ErrValidation, "%s %s", tt.first, tt.last)
		assert.Equal(t, "bad names", err.Error())
	}
}

func TestStruct_FieldTagOverrideAndDefault(t *testing.T) {
	err := Struct(passwords{"short", "short"}, Messages{"newPassword.min": "too short"})
	require.Error(t, err)
	assert.Equal(t, "too short", err.Error())

	err = Struct(passwords{"Abc12345", "Abc12346"}, nil)
	var ve *common.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "confirmPassword", ve.Field)
	assert.Equal(t, "confirmPassword does not match", ve.Message)

	assert.NoError(t, Struct(passwords{"Abc12345", "Abc12345"}, nil))
}

func TestVar_Email(t *testing.T) {
	assert.NoError(t, Var("email", "a@b.co", "required,email", nil))

	err := Var("email", "not-an-email", "required,email", nil)
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, "email must be a valid email", err.Error())

	err = Var("email", "", "required,email", Messages{"email.required": "Email is required"})
	assert.Equal(t, "Email is required", err.Error())
}
