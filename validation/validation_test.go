package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type personSchema struct {
	FirstName string  `json:"first_name" validate:"required,max=5"`
	LastName  *string `json:"last_name" validate:"omitnil,min=1,max=255"`
	Email     *string `json:"email" validate:"omitnil,email"`
	Website   *string `json:"website" validate:"omitnil,url"`
	Born      *string `json:"date_of_birth" validate:"omitnil,datetime=2006-01-02"`
	Quantity  *int64  `json:"available_quantity" validate:"required,min=0"`
}

func ptr[T any](v T) *T { return &v }

func TestValidator_FieldErrorsUseJSONNames(t *testing.T) {
	v := New()

	err := v.Struct(personSchema{
		FirstName: "",
		LastName:  ptr(""),
		Email:     ptr("not-an-email"),
		Website:   ptr("nope"),
		Born:      ptr("1990-13-40"),
		Quantity:  ptr(int64(-1)),
	})
	verr, ok := AsErrors(err)
	require.True(t, ok)

	assert.Equal(t, []string{"The first name field is required."}, verr.Fields["first_name"])
	assert.Equal(t, []string{"The last name field is required."}, verr.Fields["last_name"])
	assert.Equal(t, []string{"The email field must be a valid email address."}, verr.Fields["email"])
	assert.Equal(t, []string{"The website field must be a valid URL."}, verr.Fields["website"])
	assert.Equal(t, []string{"The date of birth field must be a valid date."}, verr.Fields["date_of_birth"])
	assert.Equal(t, []string{"The available quantity field must be at least 0."}, verr.Fields["available_quantity"])
}

func TestValidator_OptionalFieldsSkipWhenNil(t *testing.T) {
	v := New()
	require.NoError(t, v.Struct(personSchema{FirstName: "Jane", Quantity: ptr(int64(0))}))

	err := v.Struct(personSchema{FirstName: "Janette", Quantity: ptr(int64(1))})
	verr, ok := AsErrors(err)
	require.True(t, ok)
	assert.Equal(t, []string{"The first name field must not be greater than 5 characters."}, verr.Fields["first_name"])
}

func TestValidator_Merge(t *testing.T) {
	v := New()
	extra := Single("email", "The email has already been taken.")

	err := v.Merge(personSchema{FirstName: "Jane", Quantity: ptr(int64(1))}, extra)
	verr, ok := AsErrors(err)
	require.True(t, ok)
	assert.Equal(t, []string{"The email has already been taken."}, verr.Fields["email"])

	err = v.Merge(personSchema{Quantity: ptr(int64(1))}, extra)
	verr, ok = AsErrors(err)
	require.True(t, ok)
	assert.Len(t, verr.Fields, 2)

	assert.NoError(t, v.Merge(personSchema{FirstName: "Jane", Quantity: ptr(int64(1))}, &Errors{}))
	assert.NoError(t, v.Merge(personSchema{FirstName: "Jane", Quantity: ptr(int64(1))}, nil))
}

func TestNullKeysAndNullableText(t *testing.T) {
	nulls, err := NullKeys([]byte(`{"email": null, "address": "", "phone_number": "123"}`))
	require.NoError(t, err)
	assert.True(t, nulls["email"])
	assert.False(t, nulls["address"])

	_, err = NullKeys([]byte(`[1,2]`))
	assert.Error(t, err)

	current := ptr("old@example.com")
	NullableText(&current, nil, "email", nulls)
	assert.Nil(t, current, "explicit null clears")

	current = ptr("somewhere")
	NullableText(&current, ptr("  "), "address", nulls)
	assert.Nil(t, current, "blank clears")

	current = ptr("555")
	NullableText(&current, nil, "phone_number", Nulls{})
	require.NotNil(t, current)
	assert.Equal(t, "555", *current, "absent leaves untouched")

	NullableText(&current, ptr("123"), "phone_number", Nulls{})
	assert.Equal(t, "123", *current)

	errs := &Errors{}
	nulls.RequireIfPresent(errs, "email", "first_name")
	assert.Equal(t, map[string][]string{"email": {"The email field is required."}}, errs.Fields)

	assert.Nil(t, Trimmed(ptr(" ")))
	assert.Equal(t, "x", *Trimmed(ptr("x")))
}

func TestErrorsMessage(t *testing.T) {
	e := &Errors{}
	assert.False(t, e.Has())
	assert.NoError(t, e.OrNil())
	e.Add("b", "second")
	e.Add("a", "first")
	assert.Equal(t, "validation failed: a: first, b: second", e.Error())
}
