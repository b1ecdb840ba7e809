package detect

// Camera controls the live video stream behind the detection overlay. The
// detector never reads frame content; the stream exists for display only.
type Camera interface {
	// Start opens the stream
	Start() error
	// Stop releases the stream
	Stop()
}

// NopCamera stands in where no camera hardware is available
type NopCamera struct{}

func (NopCamera) Start() error { return nil }
func (NopCamera) Stop()        {}
