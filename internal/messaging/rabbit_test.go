package messaging

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"

	"multi-tenant-booking/internal/metrics"
)

func TestWatchCloseMarksRelayDown(t *testing.T) {
	up := metrics.RelayUp.WithLabelValues(backendRabbit)

	up.Set(1)
	closed := make(chan *amqp.Error, 1)
	closed <- &amqp.Error{Code: amqp.ConnectionForced, Reason: "broker shutdown"}
	watchClose(closed)
	assert.Equal(t, 0.0, testutil.ToFloat64(up))

	up.Set(1)
	graceful := make(chan *amqp.Error)
	close(graceful)
	watchClose(graceful)
	assert.Equal(t, 0.0, testutil.ToFloat64(up))
}

func TestNatsConnectionStateTracked(t *testing.T) {
	up := metrics.RelayUp.WithLabelValues(backendNATS)

	natsDisconnected(nil, assert.AnError)
	assert.Equal(t, 0.0, testutil.ToFloat64(up))

	natsReconnected(nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(up))

	natsDisconnected(nil, nil)
	assert.Equal(t, 0.0, testutil.ToFloat64(up))
}
