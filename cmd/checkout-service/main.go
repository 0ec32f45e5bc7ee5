package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/app"
)

const (
	envHTTPAddr              = "CHECKOUT_HTTP_ADDR"
	envMetricsAddr           = "CHECKOUT_METRICS_ADDR"
	envGatewayBaseURL        = "CHECKOUT_GATEWAY_BASE_URL"
	envGatewayToken          = "CHECKOUT_GATEWAY_TOKEN"
	envFreeShippingThreshold = "CHECKOUT_FREE_SHIPPING_THRESHOLD_MINOR"
	envSessionTTL            = "CHECKOUT_SESSION_TTL"
	envSessionSweepInterval  = "CHECKOUT_SESSION_SWEEP_INTERVAL"
	envKafkaBrokers          = "KAFKA_BROKERS"
)

type envLookup func(key string) (string, bool)

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
}

// readConfigFromEnv формирует конфигурацию приложения из переменных окружения.
// Невалидные значения не прерывают запуск, а возвращаются как предупреждения.
func readConfigFromEnv(lookup envLookup) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string

	if v, ok := lookup(envHTTPAddr); ok && strings.TrimSpace(v) != "" {
		cfg.HTTPAddr = strings.TrimSpace(v)
	}
	if v, ok := lookup(envMetricsAddr); ok && strings.TrimSpace(v) != "" {
		cfg.MetricsAddr = strings.TrimSpace(v)
	}
	if v, ok := lookup(envGatewayBaseURL); ok {
		cfg.GatewayBaseURL = strings.TrimSpace(v)
	}
	if v, ok := lookup(envGatewayToken); ok {
		cfg.GatewayToken = strings.TrimSpace(v)
	}
	if v, ok := lookup(envFreeShippingThreshold); ok {
		if threshold, err := parseInt64(v, func(value int64) bool { return value >= 0 }, "must be >= 0"); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", envFreeShippingThreshold, err))
		} else {
			cfg.FreeShippingThresholdMinor = threshold
		}
	}
	if v, ok := lookup(envSessionTTL); ok {
		if ttl, err := parseDuration(v, func(value time.Duration) bool { return value > 0 }, "must be > 0"); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", envSessionTTL, err))
		} else {
			cfg.SessionTTL = ttl
		}
	}
	if v, ok := lookup(envSessionSweepInterval); ok {
		if interval, err := parseDuration(v, func(value time.Duration) bool { return value > 0 }, "must be > 0"); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", envSessionSweepInterval, err))
		} else {
			cfg.SessionSweepInterval = interval
		}
	}
	if v, ok := lookup(envKafkaBrokers); ok {
		cfg.KafkaBrokers = strings.TrimSpace(v)
	}

	return cfg, warnings
}

func parseInt64(raw string, valid func(int64) bool, constraint string) (int64, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", raw)
	}
	if !valid(value) {
		return 0, fmt.Errorf("value %d %s", value, constraint)
	}
	return value, nil
}

func parseDuration(raw string, valid func(time.Duration) bool, constraint string) (time.Duration, error) {
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", raw)
	}
	if !valid(value) {
		return 0, fmt.Errorf("value %s %s", value, constraint)
	}
	return value, nil
}

func main() {
	setupLogger()

	cfg, warnings := readConfigFromEnv(os.LookupEnv)
	for _, warning := range warnings {
		log.Warn(warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"http_addr":    cfg.HTTPAddr,
		"metrics_addr": cfg.MetricsAddr,
	}).Info("запускаем CheckoutService")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("CheckoutService остановлен")
}
