package kafka

import (
	"testing"

	"github.com/segmentio/kafka-go"
)

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(); err == nil {
		t.Fatalf("expected error without brokers")
	}
	p, err := NewProducer(WithBrokers([]string{"localhost:9092"}), WithCompression("zstd"), WithHashByKey(true))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Close()
	if _, ok := p.writer.Balancer.(*kafka.Hash); !ok {
		t.Fatalf("expected hash balancer")
	}
	if p.writer.Compression != kafka.Zstd {
		t.Fatalf("expected zstd compression")
	}
}

func TestParseCompressionDefaultsToGzip(t *testing.T) {
	if parseCompression("brotli") != kafka.Gzip {
		t.Fatalf("expected gzip fallback")
	}
}

func TestProducerConfigValidate(t *testing.T) {
	cfg := DefaultProducerConfig()
	cfg.Brokers = []string{"localhost:9092"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	cfg.RequiredAcks = 2
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected acks error")
	}
}
