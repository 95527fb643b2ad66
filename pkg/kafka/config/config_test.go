package kafka_config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv(EnvKafkaBrokers, "k1:9092, k2:9092")
	t.Setenv(EnvKafkaProducerCompression, "zstd")
	t.Setenv(EnvKafkaProducerWriteTimeout, "2s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Brokers) != 2 || cfg.Brokers[1] != "k2:9092" {
		t.Errorf("brokers not trimmed: %v", cfg.Brokers)
	}
	if cfg.ProducerCompression != "zstd" {
		t.Errorf("expected zstd, got %s", cfg.ProducerCompression)
	}
	if cfg.ProducerWriteTimeout != 2*time.Second {
		t.Errorf("expected 2s write timeout, got %s", cfg.ProducerWriteTimeout)
	}
}

func TestValidate_Aggregates(t *testing.T) {
	cfg := &Config{
		Brokers:             []string{""},
		ProducerCompression: "brotli",
		ProducerRequireAcks: 2,
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"Broker 0", "ProducerMaxAttempts", "ProducerCompression", "ProducerRequireAcks"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}
