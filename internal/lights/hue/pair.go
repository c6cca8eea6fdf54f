package hue

import (
	"context"
	"fmt"

	"github.com/amimof/huego"
)

const deviceType = "amby#screen-colors"

// CreateUser registers a new application user on the bridge. The link button
// on the bridge must have been pressed shortly before.
func CreateUser(ctx context.Context, address string) (string, error) {
	username, err := huego.New(address, "").CreateUserContext(ctx, deviceType)
	if err != nil {
		return "", fmt.Errorf("creating user on bridge %s: %w", address, err)
	}
	return username, nil
}
