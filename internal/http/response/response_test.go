package response

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeShapes(t *testing.T) {
	raw, err := json.Marshal(OK("account created"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"message":"account created"}`, string(raw))

	raw, err = json.Marshal(Error("invalid request body"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"message":"invalid request body"}`, string(raw))

	raw, err = json.Marshal(OKWithData(map[string]string{"token": "abc"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":{"token":"abc"}}`, string(raw))
}

func TestValidationError(t *testing.T) {
	type req struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required,min=6"`
	}

	err := validator.New().Struct(req{Email: "not-an-email", Password: "x"})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "Email")
	assert.Contains(t, resp.Message, "Password")
}
