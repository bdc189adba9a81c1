package handlers

import (
	"sync"
	"time"

	"github.com/SscSPs/billing_dashboard/internal/core/domain"
	"github.com/SscSPs/billing_dashboard/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerValidatorsOnce sync.Once

// registerValidators adds the custom binding tags used by the request DTOs.
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("plan", validatePlan)
		_ = v.RegisterValidation("yearmonth", validateYearMonth)
	})
}

// plan: one of the catalogue plan names.
func validatePlan(fl validator.FieldLevel) bool {
	_, ok := domain.FindPlan(domain.PlanName(fl.Field().String()))
	return ok
}

// yearmonth: YYYY-MM.
func validateYearMonth(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01", fl.Field().String())
	return err == nil
}

func userEmail(c *gin.Context) (string, bool) {
	return middleware.GetUserEmailFromContext(c)
}
