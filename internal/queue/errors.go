package queue

import "errors"

var (
	ErrNoURLs      = errors.New("no urls provided")
	ErrJobNotFound = errors.New("job not found")
	ErrJobFinished = errors.New("job already finished")
	ErrQueueFull   = errors.New("queue is full")
)
