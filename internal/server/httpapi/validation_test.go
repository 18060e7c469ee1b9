package httpapi

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalString(t *testing.T) {
	var v struct {
		A optionalString `json:"a"`
		B optionalString `json:"b"`
		C optionalString `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"x","b":null}`), &v))

	assert.True(t, v.A.Set)
	require.NotNil(t, v.A.Value)
	assert.Equal(t, "x", *v.A.Value)

	assert.True(t, v.B.Set)
	assert.Nil(t, v.B.Value)

	assert.False(t, v.C.Set)
}

func TestFieldMessage(t *testing.T) {
	tests := []struct {
		field, tag, param string
		want              string
	}{
		{"name", "required", "", "The name field is required."},
		{"email", "email", "", "The email field must be a valid email address."},
		{"industry", "max", "100", "The industry field must not be greater than 100 characters."},
		{"password", "min", "6", "The password field must be at least 6 characters."},
		{"active_company", "uuid", "", "The active company field is invalid."},
	}

	for _, tt := range tests {
		t.Run(tt.field+"/"+tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, fieldMessage(tt.field, tt.tag, tt.param))
		})
	}
}

func TestNullableTrimmed(t *testing.T) {
	assert.Nil(t, nullableTrimmed(nil))
	assert.Nil(t, nullableTrimmed(strptr("   ")))
	assert.Equal(t, "Main St", *nullableTrimmed(strptr("  Main St ")))
}

func TestBodyErrors(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	err := json.Unmarshal([]byte(`{"name":true}`), &dst)
	require.Error(t, err)
	assert.Equal(t, fieldErrors{"name": {"The name field must be a string."}}, bodyErrors(err))

	assert.Equal(t,
		fieldErrors{"body": {"The request body must be a valid JSON object."}},
		bodyErrors(errors.New("unexpected EOF")))
}

func TestValidateStruct(t *testing.T) {
	ok := registerRequest{Name: "Alice", Email: "alice@example.com", Password: "secret1"}
	assert.Nil(t, validateStruct(ok))

	errs := validateStruct(registerRequest{Email: "alice@example.com", Password: "secret1"})
	assert.Equal(t, fieldErrors{"name": {"The name field is required."}}, errs)
}
