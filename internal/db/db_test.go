package db

import (
	"errors"
	"testing"
)

func TestOpenMissingURL(t *testing.T) {
	conn, err := Open("")
	if !errors.Is(err, ErrMissingDatabaseURL) {
		t.Errorf("Open(\"\") error = %v, want ErrMissingDatabaseURL", err)
	}
	if conn != nil {
		t.Error("Open(\"\") returned a connection")
	}
}
