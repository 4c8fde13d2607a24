package kafka

import (
	"errors"
	"testing"

	"github.com/DRSN-tech/product-catalog/internal/cfg"
	"github.com/DRSN-tech/product-catalog/internal/usecase"
	"github.com/DRSN-tech/product-catalog/pkg/e"
	"github.com/DRSN-tech/product-catalog/pkg/logger"
)

func TestNewMessage(t *testing.T) {
	msg := newMessage(usecase.NewWriteRawMessageReq(42, usecase.ProductUpdated, []byte("payload")))

	if string(msg.Key) != "42" {
		t.Errorf("key = %q, want 42", msg.Key)
	}
	if string(msg.Value) != "payload" {
		t.Errorf("value = %q, want payload", msg.Value)
	}
	if len(msg.Headers) != 1 || msg.Headers[0].Key != eventTypeHeader || string(msg.Headers[0].Value) != "product.updated" {
		t.Errorf("headers = %+v", msg.Headers)
	}
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(logger.NewNopLogger(), &cfg.KafkaCfg{Topic: "t"})
	if !errors.Is(err, e.ErrIncorrectEnvVariable) {
		t.Fatalf("NewProducer() error = %v, want ErrIncorrectEnvVariable", err)
	}

	p, err := NewProducer(logger.NewNopLogger(), &cfg.KafkaCfg{Topic: "t", Brokers: []string{"localhost:9092"}})
	if err != nil {
		t.Fatalf("NewProducer() error = %v", err)
	}
	_ = p.Close()
}
