package config

import (
	validator "github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/cloudstore/internal/logging"
)

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	_, err := logging.ParseLevel(fieldLevel.Field().String())
	return err == nil
}

// Validate checks the assembled configuration.
func (c *Config) Validate() error {
	validate := validator.New()

	if err := validate.RegisterValidation("loglevel", validateLogLevel); err != nil {
		return err
	}

	return validate.Struct(c)
}
