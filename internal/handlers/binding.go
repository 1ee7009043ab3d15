package handlers

import (
	"encoding/json"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"netowork_backend/pkg/apperrors"
)

const invalidValueMessage = "Invalid value"

// bindBody разбирает тело по Content-Type. Поля, значения которых не
// приводятся к типу, возвращаются картой ошибок, а не общей ошибкой.
func bindBody(c *gin.Context, obj any) (map[string]string, error) {
	switch c.ContentType() {
	case binding.MIMEJSON:
		return bindJSON(c, obj)
	case binding.MIMEMultipartPOSTForm:
		form, err := c.MultipartForm()
		if err != nil {
			return nil, err
		}
		return bindForm(obj, form.Value)
	default:
		if err := c.Request.ParseForm(); err != nil {
			return nil, err
		}
		return bindForm(obj, c.Request.Form)
	}
}

// bindJSON: encoding/json пропускает поле с чужим типом и сообщает
// только о первом таком поле
func bindJSON(c *gin.Context, obj any) (map[string]string, error) {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return nil, nil
	}
	var typeErr *json.UnmarshalTypeError
	if apperrors.As(err, &typeErr) && typeErr.Field != "" {
		return map[string]string{typeErr.Field: invalidValueMessage}, nil
	}
	return nil, err
}

// bindForm привязывает значения по тегу form. Каждый параметр сначала
// пробуется на пустой копии obj, неприводимые попадают в карту ошибок,
// остальные привязываются к obj.
func bindForm(obj any, values map[string][]string) (map[string]string, error) {
	objType := reflect.TypeOf(obj)
	if objType.Kind() != reflect.Ptr || objType.Elem().Kind() != reflect.Struct {
		return nil, binding.MapFormWithTag(obj, values, "form")
	}

	fieldErrs := make(map[string]string)
	accepted := make(map[string][]string, len(values))
	for key, vals := range values {
		scratch := reflect.New(objType.Elem()).Interface()
		if err := binding.MapFormWithTag(scratch, map[string][]string{key: vals}, "form"); err != nil {
			fieldErrs[key] = invalidValueMessage
			continue
		}
		accepted[key] = vals
	}

	if err := binding.MapFormWithTag(obj, accepted, "form"); err != nil {
		return nil, err
	}
	return fieldErrs, nil
}
