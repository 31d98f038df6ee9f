package scene

import "errors"

// Scene errors. All of them are returned wrapped with the offending id;
// compare with errors.Is.
var (
	ErrInvalidHandle    = errors.New("invalid handle")
	ErrOutOfFrameUpdate = errors.New("instance update outside of a frame")
	ErrFrameState       = errors.New("frame markers out of order")
	ErrHandleInUse      = errors.New("handle referenced by a live instance")
	ErrIndexOutOfRange  = errors.New("index references a vertex outside the mesh")
	ErrBufferExhausted  = errors.New("global buffer exceeds uint32 range")
)
