package monitoring

import (
	"fmt"
	"log"
	"testing"
)

func TestSetLogger(t *testing.T) {
	defer SetLogger(log.Printf)

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})
	Logf("run %s finished", "abc")
	if got != "run abc finished" {
		t.Errorf("captured %q", got)
	}
}

func TestSetLoggerNilIsNoOp(t *testing.T) {
	defer SetLogger(log.Printf)

	SetLogger(nil)
	// Must not panic.
	Logf("dropped %d", 1)
}
