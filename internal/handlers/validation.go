package handlers

import (
	"errors"
	"fmt"

	"bloodlink/internal/rules"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the custom binding tags to gin's validator
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}
	return v.RegisterValidation("bloodtype", func(fl validator.FieldLevel) bool {
		_, err := rules.ParseBloodType(fl.Field().String())
		return err == nil
	})
}

// validationDetails maps field names to the failing rule
func validationDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": err.Error()}
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			details[fe.Field()] = fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
			continue
		}
		details[fe.Field()] = fe.Tag()
	}
	return details
}
