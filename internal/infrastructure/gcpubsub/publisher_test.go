package gcpubsub

import (
	"context"
	"testing"

	"github.com/go-kratos/kratos/v2/log"

	loader "github.com/streamspace/streamspace-services-content/internal/infrastructure/config_loader"
)

func TestNewPublisherWithoutTopicIsNoop(t *testing.T) {
	pub, cleanup, err := NewPublisher(context.Background(), loader.PubSub{}, log.DefaultLogger)
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	defer cleanup()

	if _, ok := pub.(noopPublisher); !ok {
		t.Fatalf("expected noop publisher, got %T", pub)
	}

	id, err := pub.Publish(context.Background(), Message{Data: []byte("{}")})
	if err != nil {
		t.Fatalf("noop publish: %v", err)
	}
	if id != "" {
		t.Fatalf("noop publish returned id %q", id)
	}
}

func TestNewPublisherRequiresProject(t *testing.T) {
	_, _, err := NewPublisher(context.Background(), loader.PubSub{TopicID: "content-events"}, log.DefaultLogger)
	if err == nil {
		t.Fatal("expected error when topic is set without a project id")
	}
}
