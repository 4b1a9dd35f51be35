package handler

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"firstlook/internal/models"
)

var registerOnce sync.Once

// RegisterValidators adds the custom tags used by request structs to gin's
// validator. Safe to call more than once.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		err = v.RegisterValidation("subgenre", func(fl validator.FieldLevel) bool {
			return models.Subgenre(fl.Field().String()).IsValid()
		})
	})
	return err
}

type listStoriesQuery struct {
	Subgenre string `form:"subgenre" binding:"omitempty,subgenre"`
	Limit    int    `form:"limit" binding:"omitempty,min=0"`
	Offset   int    `form:"offset" binding:"omitempty,min=0"`
}

type preferencesRequest struct {
	Subgenres []models.Subgenre `json:"subgenres" binding:"dive,subgenre"`
}

type checkoutRequest struct {
	PackageID string `json:"packageId" binding:"required"`
}

type pricesRequest struct {
	Prices map[string]int `json:"prices" binding:"required,min=1,dive,min=0"`
}

type generateRequest struct {
	SeedTitle string `json:"seedTitle"`
}

type enqueueRequest struct {
	Count int `json:"count" binding:"required,min=1,max=50"`
}

type maintenanceQuery struct {
	DryRun bool `form:"dryRun"`
}
