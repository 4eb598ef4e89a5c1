package apperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Error(t *testing.T) {
	testCases := map[string]struct {
		err      error
		expected string
	}{
		"should format validation error with field": {
			err:      &ValidationError{Field: "line_items", Reason: "must not be empty"},
			expected: "validation failed: line_items: must not be empty",
		},
		"should format validation error without field": {
			err:      &ValidationError{Reason: "malformed body"},
			expected: "validation failed: malformed body",
		},
		"should format authorization error": {
			err:      &AuthorizationError{Role: "customer", Operation: "list all orders"},
			expected: "role customer is not authorized to list all orders",
		},
		"should format invalid transition error": {
			err:      &InvalidTransitionError{From: "shipped", To: "cancelled"},
			expected: "cannot transition order from shipped to cancelled",
		},
		"should format invalid state error": {
			err:      &InvalidStateError{Status: "delivered", Operation: "assign vendor"},
			expected: "cannot assign vendor while order is delivered",
		},
		"should format not found error": {
			err:      &NotFoundError{Resource: "vendor", Key: "id", Value: "v-1"},
			expected: "vendor with id v-1 not found",
		},
		"should format transient error with cause": {
			err:      &TransientError{Op: "get order", Err: context.DeadlineExceeded},
			expected: "get order: transient failure: context deadline exceeded",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.err.Error())
		})
	}
}

func TestIsRetryable(t *testing.T) {
	testCases := map[string]struct {
		err      error
		expected bool
	}{
		"transient is retryable": {
			err:      &TransientError{Op: "insert", Err: errors.New("connection reset")},
			expected: true,
		},
		"wrapped concurrent modification is retryable": {
			err:      fmt.Errorf("transition: %w", &ConcurrentModificationError{Resource: "order", ID: "1", Expected: "pending"}),
			expected: true,
		},
		"validation is not retryable": {
			err:      &ValidationError{Reason: "bad"},
			expected: false,
		},
		"plain error is not retryable": {
			err:      errors.New("boom"),
			expected: false,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsRetryable(tc.err))
		})
	}
}

func TestTransientError_Unwrap(t *testing.T) {
	err := fmt.Errorf("outer: %w", &TransientError{Op: "get", Err: context.DeadlineExceeded})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.True(t, IsTransient(err))
}

func TestStatusCode(t *testing.T) {
	testCases := map[string]struct {
		err      error
		expected int
	}{
		"validation":    {err: &ValidationError{Reason: "x"}, expected: http.StatusBadRequest},
		"authorization": {err: &AuthorizationError{Operation: "x"}, expected: http.StatusForbidden},
		"not found":     {err: &NotFoundError{Resource: "order"}, expected: http.StatusNotFound},
		"transition":    {err: &InvalidTransitionError{}, expected: http.StatusUnprocessableEntity},
		"state":         {err: fmt.Errorf("wrap: %w", &InvalidStateError{}), expected: http.StatusUnprocessableEntity},
		"conflict":      {err: &ConcurrentModificationError{}, expected: http.StatusConflict},
		"transient":     {err: &TransientError{Err: errors.New("x")}, expected: http.StatusServiceUnavailable},
		"unknown":       {err: errors.New("boom"), expected: http.StatusInternalServerError},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, StatusCode(tc.err))
		})
	}
}
