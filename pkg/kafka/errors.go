package kafka

import "errors"

var (
	ErrProducerClosed = errors.New("kafka producer is closed")
	ErrNilValue       = errors.New("message value is nil, payload failed to encode")
)
