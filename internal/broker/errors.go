package broker

import "github.com/fuel-streams/streams/pkg/errors"

// Error codes for broker operations, following the same CODE_STYLE as
// pkg/messaging/errors.go.
const (
	CodeConnectionFailed = "BROKER_CONN_FAILED"
	CodePublishFailed    = "BROKER_PUBLISH_FAILED"
	CodeConsumeFailed    = "BROKER_CONSUME_FAILED"
	CodeAckFailed        = "BROKER_ACK_FAILED"
	CodeClosed           = "BROKER_CLOSED"
)

func ErrConnectionFailed(err error) *errors.AppError {
	return errors.New(CodeConnectionFailed, "failed to connect to broker", err)
}

func ErrPublishFailed(err error) *errors.AppError {
	return errors.New(CodePublishFailed, "failed to publish message", err)
}

func ErrConsumeFailed(err error) *errors.AppError {
	return errors.New(CodeConsumeFailed, "failed to consume message", err)
}

func ErrAckFailed(err error) *errors.AppError {
	return errors.New(CodeAckFailed, "failed to ack/nack message", err)
}

func ErrClosed(err error) *errors.AppError {
	return errors.New(CodeClosed, "broker connection is closed", err)
}
