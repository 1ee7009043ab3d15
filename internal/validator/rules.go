package validator

import (
	"log"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"netowork_backend/internal/models"
)

// TaskSortValues - допустимые значения сортировки списка задач
var TaskSortValues = []string{"createdAt-asc", "createdAt-desc", "price-asc", "price-desc"}

func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// роль при регистрации: admin не регистрируется
	mustRegister("user-role", validateUserRole)
	mustRegister("task-status", validateTaskStatus)
	mustRegister("task-sort", validateTaskSort)
	mustRegister("id-list", validateIDList)
	mustRegister("not-blank", validateNotBlank)
}

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // для этого есть 'required'
	}
	for _, r := range models.RegistrableRoles {
		if models.UserRole(value) == r {
			return true
		}
	}
	return false
}

func validateTaskStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return models.TaskStatus(value).IsValid()
}

func validateTaskSort(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, ok := ParseSortList(value)
	return ok
}

func validateIDList(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, ok := ParseIDList(value)
	return ok
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// ParseIDList разбирает "1,2,3" в список положительных id.
// Пустые элементы и не-числа делают весь список невалидным.
func ParseIDList(value string) ([]int64, bool) {
	parts := strings.Split(value, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || id <= 0 {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

// ParseSortList разбирает "price-desc,createdAt-asc" с сохранением порядка
func ParseSortList(value string) ([]string, bool) {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if !isTaskSort(p) {
			return nil, false
		}
		out = append(out, p)
	}
	return out, true
}

func isTaskSort(value string) bool {
	for _, s := range TaskSortValues {
		if s == value {
			return true
		}
	}
	return false
}
