package draw

import "strconv"

// Handle is an opaque logical resource id issued by a renderer.
// The zero Handle never refers to a resource.
type Handle uint64

// FontHandle names a registered font.
type FontHandle Handle

// ImageHandle names a registered image.
type ImageHandle Handle

func (h Handle) Valid() bool      { return h != 0 }
func (h FontHandle) Valid() bool  { return h != 0 }
func (h ImageHandle) Valid() bool { return h != 0 }

func (h FontHandle) Handle() Handle  { return Handle(h) }
func (h ImageHandle) Handle() Handle { return Handle(h) }

func (h Handle) String() string      { return "h" + strconv.FormatUint(uint64(h), 10) }
func (h FontHandle) String() string  { return "font:" + strconv.FormatUint(uint64(h), 10) }
func (h ImageHandle) String() string { return "image:" + strconv.FormatUint(uint64(h), 10) }
