package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/endosim/pk-api/internal/model"
)

// The route tag rejects unknown administration routes at bind time,
// before a request reaches the services.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("route", func(fl validator.FieldLevel) bool {
			return model.RouteType(fl.Field().String()).Valid()
		})
	}
}
