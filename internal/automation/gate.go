package automation

import "errors"

var (
	// ErrNotConfirmed means the caller did not set confirm=true.
	ErrNotConfirmed = errors.New("confirm=true is required to execute commands")
	// ErrAutomationDisabled means automation is switched off in configuration.
	ErrAutomationDisabled = errors.New("automation disabled")
)

// Gate guards remotely requested actions. Confirmation is checked first.
type Gate struct {
	Enabled bool
}

func (g Gate) Check(confirm bool) error {
	if !confirm {
		return ErrNotConfirmed
	}
	if !g.Enabled {
		return ErrAutomationDisabled
	}
	return nil
}
