//go:build !linux

package cmd

import (
	"fmt"
	"runtime"
)

func countInstructions(f func() error) (count uint64, err error) {
	err = fmt.Errorf("instruction counting is not available on %s", runtime.GOOS)
	return
}
