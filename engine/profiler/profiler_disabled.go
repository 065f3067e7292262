//go:build !profile

package profiler

import (
	"errors"
	"io"
)

// Enabled reports whether spans are recorded in this build.
const Enabled = false

var errDisabled = errors.New("profiler: built without the profile tag")

func Init(capacity int) {}

func Start(name string) func() { return func() {} }

func Dump(w io.Writer) error { return errDisabled }

func OpenGraph() (string, error) { return "", errDisabled }
