package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signUp struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=40"`
	FirstName string `json:"firstName" validate:"required,not-blank"`
	Role      string `json:"role" validate:"required,user-role"`
}

type taskQuery struct {
	Limit          int    `form:"limit" validate:"omitempty,min=1,max=200"`
	SubCategoryIDs string `form:"subCategoryIds" validate:"omitempty,id-list"`
	Sort           string `form:"sort" validate:"omitempty,task-sort"`
	Status         string `form:"status" validate:"omitempty,task-status"`
}

func TestValidate_ValidStruct(t *testing.T) {
	v := New()

	err := v.Validate(signUp{
		Email:     "user@example.com",
		Password:  "Secret123!",
		FirstName: "Ivan",
		Role:      "freelancer",
	})

	assert.NoError(t, err)
}

func TestValidate_CollectsAllFieldsByJSONName(t *testing.T) {
	v := New()

	err := v.Validate(signUp{
		Email:     "not-an-email",
		Password:  "weak",
		FirstName: "   ",
		Role:      "admin",
	})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Errors, 4)
	assert.Equal(t, "Must be a valid email address", vErr.Errors["email"])
	assert.Equal(t, "Must be at least 8 items/characters long", vErr.Errors["password"])
	assert.Equal(t, "Must not be blank", vErr.Errors["firstName"])
	assert.Equal(t, "Invalid role", vErr.Errors["role"])
}

func TestValidate_QueryRulesUseFormNames(t *testing.T) {
	v := New()

	err := v.Validate(taskQuery{
		Limit:          500,
		SubCategoryIDs: "1,abc",
		Sort:           "price-asc,title-desc",
		Status:         "archived",
	})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Must be at most 200", vErr.Errors["limit"])
	assert.Contains(t, vErr.Errors, "subCategoryIds")
	assert.Contains(t, vErr.Errors, "sort")
	assert.Equal(t, "Invalid task status", vErr.Errors["status"])
}

func TestParseIDList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []int64
		ok    bool
	}{
		{"single", "7", []int64{7}, true},
		{"several with spaces", "1, 2,3", []int64{1, 2, 3}, true},
		{"zero", "0", nil, false},
		{"negative", "4,-1", nil, false},
		{"empty element", "1,,2", nil, false},
		{"not a number", "x", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseIDList(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSortList(t *testing.T) {
	got, ok := ParseSortList("price-desc,createdAt-asc")
	require.True(t, ok)
	assert.Equal(t, []string{"price-desc", "createdAt-asc"}, got)

	_, ok = ParseSortList("price-desc,id-asc")
	assert.False(t, ok)
}
