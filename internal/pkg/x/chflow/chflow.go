// Package chflow provides helpers for receiving from and sending to Go
// channels without blocking past a context or a full buffer.
package chflow

import "context"

// Receive waits to receive a value from the provided channel or for the context to be canceled.
// It returns the value (zero value if canceled) and a boolean indicating if the receive was successful.
func Receive[T any](ctx context.Context, ch <-chan T) (T, bool) {
	var data T
	select {
	case <-ctx.Done():
		return data, false
	case data, ok := <-ch:
		return data, ok
	}
}

// Offer sends data only if ch can accept it immediately.
// Used for wake-up signals where a pending signal already covers the new one.
func Offer[T any](ch chan<- T, data T) bool {
	select {
	case ch <- data:
		return true
	default:
		return false
	}
}

// Replace delivers data to a buffered channel, discarding a value still
// waiting in the buffer so that readers always observe the latest one.
// It never blocks as long as ch has a buffer and a single producer.
func Replace[T any](ch chan T, data T) {
	for {
		select {
		case ch <- data:
			return
		default:
		}

		select {
		case <-ch:
		default:
		}
	}
}
