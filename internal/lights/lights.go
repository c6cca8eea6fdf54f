package lights

import (
	"context"
	"fmt"

	"github.com/scheerer/ambient-screen-colors/internal/colors"
)

// State is the change pushed to one light. Nil fields are left untouched.
type State struct {
	Color      colors.Color
	XY         *colors.Chromaticity
	Brightness *int
}

// Controller is implemented by every supported light backend.
type Controller interface {
	SetLightState(ctx context.Context, id string, state State) error
	BrightnessRange() colors.Range
}

// CommunicationError reports a failed update of a single light.
type CommunicationError struct {
	LightID string
	Err     error
}

func (e *CommunicationError) Error() string {
	return fmt.Sprintf("light %s: %v", e.LightID, e.Err)
}

func (e *CommunicationError) Unwrap() error {
	return e.Err
}
