package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pullbill/pullbill/internal/types"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Billing    BillingConfig    `validate:"required"`
	Webhook    WebhookConfig    `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

// BillingConfig carries the deployment policy of the billing engine.
type BillingConfig struct {
	// Admin is the administrator account controlling rates and the
	// executor allow-list.
	Admin string `validate:"required"`
	// AllowExecutorExecution additionally lets allow-listed executors
	// relay execute calls; beneficiaries can always execute their own
	// subscriptions.
	AllowExecutorExecution bool
}

type WebhookConfig struct {
	Topic string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pullbill")

	// Set up environment variables support
	v.SetEnvPrefix("PULLBILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, ok := types.ParseAddress(c.Billing.Admin); !ok {
		return fmt.Errorf("billing.admin is not a valid address: %q", c.Billing.Admin)
	}
	return nil
}

// AdminAddress returns the parsed administrator account. Validate has
// already established that the configured value parses.
func (c Configuration) AdminAddress() types.Address {
	admin, _ := types.ParseAddress(c.Billing.Admin)
	return admin
}

// GetDefaultConfig returns a default configuration for local development
// and the test harness.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Billing: BillingConfig{
			Admin:                  "0x0000000000000000000000000000000000000001",
			AllowExecutorExecution: true,
		},
		Webhook: WebhookConfig{Topic: "pullbill.events"},
		Logging: LoggingConfig{Level: types.LogLevelDebug},
	}
}
