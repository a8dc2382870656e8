package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/storefront/pkg/validate"
)

type productInput struct {
	Title       string   `json:"title"       validate:"required,max=100"`
	Price       int      `json:"price"       validate:"gte=0"`
	Description string   `json:"description" validate:"nullable,max=2000"`
	Tags        []string `json:"tags"        validate:"nullable,max=10"`
}

type reviewInput struct {
	Rating float64 `json:"rating" validate:"required,between=0.5,5,step=0.5"`
}

type userPatch struct {
	Username *string `json:"username" validate:"required,username,max=150"`
	Email    *string `json:"email"    validate:"nullable,email"`
}

func TestValidProduct(t *testing.T) {
	errs := validate.Struct(productInput{Title: "Kettle", Price: 0})
	assert.False(t, validate.HasErrors(errs), "got %v", errs)
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(productInput{Price: 10})
	assert.Equal(t, "This field is required.", errs["title"])
}

func TestNegativePriceFails(t *testing.T) {
	errs := validate.Struct(productInput{Title: "Kettle", Price: -1})
	assert.Contains(t, errs, "price")
}

func TestMaxLength(t *testing.T) {
	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}
	errs := validate.Struct(productInput{Title: string(long)})
	assert.Contains(t, errs["title"], "no more than 100")
}

func TestSliceLength(t *testing.T) {
	errs := validate.Struct(productInput{Title: "t", Tags: make([]string, 11)})
	assert.Contains(t, errs, "tags")
}

func TestRatingHalfSteps(t *testing.T) {
	cases := map[float64]bool{
		0:    false,
		0.25: false,
		0.5:  true,
		3:    true,
		4.5:  true,
		4.75: false,
		5:    true,
		5.5:  false,
	}
	for rating, ok := range cases {
		errs := validate.Struct(reviewInput{Rating: rating})
		assert.Equal(t, ok, !validate.HasErrors(errs), "rating %v: %v", rating, errs)
	}
}

func TestPointerFieldsArePartial(t *testing.T) {
	errs := validate.Struct(userPatch{})
	assert.Equal(t, "This field is required.", errs["username"])
	assert.NotContains(t, errs, "email")

	bad := "not an email"
	name := "jane.doe+shop"
	errs = validate.Struct(userPatch{Username: &name, Email: &bad})
	assert.NotContains(t, errs, "username")
	assert.Contains(t, errs, "email")
}

func TestUsernameRule(t *testing.T) {
	name := "jane doe!"
	errs := validate.Struct(userPatch{Username: &name})
	assert.Contains(t, errs, "username")
}

func TestInRule(t *testing.T) {
	type in struct {
		Ordering string `json:"ordering" validate:"required,in=title,-title,price,max=10"`
	}
	assert.True(t, validate.HasErrors(validate.Struct(in{Ordering: "rating"})))
	assert.False(t, validate.HasErrors(validate.Struct(in{Ordering: "-title"})))
}

func TestNullableSkipsRules(t *testing.T) {
	type in struct {
		Website string `json:"website" validate:"nullable,url"`
	}
	assert.False(t, validate.HasErrors(validate.Struct(in{})))
	assert.True(t, validate.HasErrors(validate.Struct(in{Website: "not-a-url"})))
	assert.False(t, validate.HasErrors(validate.Struct(in{Website: "https://shop.example.com/products/1/"})))
}

func TestRegexRule(t *testing.T) {
	type in struct {
		Code string `json:"code" validate:"required,regex=^[A-Z]{3}$"`
	}
	assert.False(t, validate.HasErrors(validate.Struct(in{Code: "ABC"})))
	assert.True(t, validate.HasErrors(validate.Struct(in{Code: "abc"})))
}
