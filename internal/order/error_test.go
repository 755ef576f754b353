package order

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want Class
	}{
		{nil, ""},
		{ErrNotFound, ClassNotFound},
		{ErrForbidden, ClassForbidden},
		{ErrSlotConflict, ClassConflict},
		{ErrConflict, ClassConflict},
		{ErrInvalidTransition, ClassConflict},
		{ErrInvalidState, ClassConflict},
		{fmt.Errorf("%w: patient name is required", ErrInvalidInput), ClassInvalidInput},
		{fmt.Errorf("%w: disk full", ErrUploadFailed), ClassInternal},
		{errors.New("connection reset"), ClassInternal},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.err), "%v", tt.err)
	}
}
