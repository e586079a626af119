package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iamail/mailgate/internal/logger"
)

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
	})
	appLogger.InitLogger()
	return appLogger
}

func TestStartReconnectWatcher_SpawnsAtMostOnce(t *testing.T) {
	// Arrange
	publisher := &RabbitMQPublisher{
		url:    "amqp://localhost:5672",
		logger: getLogger(),
		config: PublisherConfig{
			ReconnectBackoff:    time.Second,
			MaxReconnectBackoff: time.Second,
		},
	}

	// Act - every reconnect cycle goes through connect, which must not
	// stack up additional watcher goroutines.
	publisher.connectionMutex.Lock()
	first := publisher.startReconnectWatcher()
	second := publisher.startReconnectWatcher()
	third := publisher.startReconnectWatcher()
	publisher.connectionMutex.Unlock()

	// Assert
	assert.True(t, first)
	assert.False(t, second)
	assert.False(t, third)
}
