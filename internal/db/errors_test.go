package db

import (
	"errors"
	"testing"
)

func TestError_Unwrap(t *testing.T) {
	err := error(&Error{Op: OpGet, Err: ErrKeyNotFound})
	if !errors.Is(err, ErrKeyNotFound) {
		t.Error("errors.Is through db.Error failed")
	}
	if err.Error() != "GET: db: key not found" {
		t.Errorf("Error() = %q", err.Error())
	}
}
