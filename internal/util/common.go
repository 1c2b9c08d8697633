package util

import (
	"fmt"
	"os"
)

// CloseQuietly closes f, logging any error instead of returning it. Used on
// cleanup paths where the caller has already committed to a different
// return value.
func CloseQuietly(f *os.File) {
	if err := f.Close(); err != nil {
		fmt.Println(err)
	}
}
