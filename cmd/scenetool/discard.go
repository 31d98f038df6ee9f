package main

import (
	"unsafe"

	"github.com/Faultbox/nevk-scene/internal/engine/gpubuf"
)

// discard is a gpubuf.Device that drops all data, for measuring uploads
// without a GL context.
type discard struct{}

func (discard) Allocate(gpubuf.Buffer, int) {}
func (discard) Write(gpubuf.Buffer, int, int, unsafe.Pointer) {}
