package snippet

// InertPath runs closures without measuring them and hands out NoOpToken.
// It is the active path until Install is called.
type InertPath struct{}

var _ ExecutionPath = InertPath{}

// Capture runs fn and returns EmptyRecord.
func (InertPath) Capture(fn func()) Record {
	if fn != nil {
		fn()
	}
	return EmptyRecord
}

// CaptureWithMessage runs fn and returns EmptyRecord.
func (InertPath) CaptureWithMessage(_ string, fn func()) Record {
	if fn != nil {
		fn()
	}
	return EmptyRecord
}

func (InertPath) StartCapture() Token           { return NoOpToken }
func (InertPath) StartCaptureWithTag(Tag) Token { return NoOpToken }
func (InertPath) Find(Tag) Token                { return NoOpToken }
