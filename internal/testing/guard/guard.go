// Package guard flips the application into test mode when imported
// from a test binary, so main() never starts real servers under test.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("TELARIS_TEST_MODE") == "" {
			_ = os.Setenv("TELARIS_TEST_MODE", "1")
		}
	})
}
