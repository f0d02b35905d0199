// Package config reads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every runtime knob of the order service. Empty collaborator
// URLs select the in-process stand-ins.
type Config struct {
	ServiceName     string
	Env             string
	LogLevel        string
	HTTPAddr        string
	ShutdownTimeout time.Duration

	ProductServiceURL string
	PaymentServiceURL string
	ClientTimeout     time.Duration

	DatabaseURL string

	KafkaBrokers string
	KafkaTopic   string

	OTLPEndpoint string

	SimulatedPaymentSuccessRate float64
	SeedProducts                string
}

const defaultSeedProducts = "1:Laptop:1200:50,2:Phone:800:100,10:Keyboard:250:100"

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func floatenv(key string, def float64) float64 {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func durenvms(key string, defMs int) time.Duration {
	return time.Duration(atoienv(key, defMs)) * time.Millisecond
}

func durenvs(key string, defSec int) time.Duration {
	return time.Duration(atoienv(key, defSec)) * time.Second
}

// Load collects configuration from environment with defaults.
func Load() Config {
	return Config{
		ServiceName:                 getenv("SERVICE_NAME", "order-service"),
		Env:                         getenv("ENV", "dev"),
		LogLevel:                    getenv("LOG_LEVEL", "info"),
		HTTPAddr:                    getenv("HTTP_ADDR", ":8082"),
		ShutdownTimeout:             durenvs("SHUTDOWN_TIMEOUT", 10),
		ProductServiceURL:           getenv("PRODUCT_SERVICE_URL", ""),
		PaymentServiceURL:           getenv("PAYMENT_SERVICE_URL", ""),
		ClientTimeout:               durenvms("CLIENT_TIMEOUT_MS", 5000),
		DatabaseURL:                 getenv("DATABASE_URL", ""),
		KafkaBrokers:                getenv("KAFKA_BROKERS", ""),
		KafkaTopic:                  getenv("KAFKA_TOPIC", "order-outcomes"),
		OTLPEndpoint:                getenv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		SimulatedPaymentSuccessRate: floatenv("SIMULATED_PAYMENT_SUCCESS_RATE", 0.7),
		SeedProducts:                getenv("SEED_PRODUCTS", defaultSeedProducts),
	}
}

// Validate reports every inconsistent value at once.
func (c Config) Validate() error {
	var errs []error
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("HTTP_ADDR must not be empty"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}
	if c.ClientTimeout <= 0 {
		errs = append(errs, errors.New("CLIENT_TIMEOUT_MS must be positive"))
	}
	if c.SimulatedPaymentSuccessRate < 0 || c.SimulatedPaymentSuccessRate > 1 {
		errs = append(errs, fmt.Errorf("SIMULATED_PAYMENT_SUCCESS_RATE must be within [0,1], got %v", c.SimulatedPaymentSuccessRate))
	}
	for key, raw := range map[string]string{
		"PRODUCT_SERVICE_URL": c.ProductServiceURL,
		"PAYMENT_SERVICE_URL": c.PaymentServiceURL,
	} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s must be an absolute URL, got %q", key, raw))
		}
	}
	if c.KafkaBrokers != "" && c.KafkaTopic == "" {
		errs = append(errs, errors.New("KAFKA_TOPIC must be set when KAFKA_BROKERS is"))
	}
	return errors.Join(errs...)
}

// StandaloneInventory reports whether stock and product metadata are served
// by the in-process catalog.
func (c Config) StandaloneInventory() bool { return c.ProductServiceURL == "" }

// StandalonePayment reports whether payments go to the simulator.
func (c Config) StandalonePayment() bool { return c.PaymentServiceURL == "" }
