package ez

import (
	"errors"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"entity-api/internal/domain"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators adds the custom binding tags used by the domain models
// to gin's validator. It must run before the first request is bound.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("ez: gin validator is not validator/v10")
			return
		}
		registerErr = v.RegisterValidation("fullname", func(fl validator.FieldLevel) bool {
			return domain.FullNamePattern.MatchString(fl.Field().String())
		})
	})
	return registerErr
}
