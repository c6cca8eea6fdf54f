package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/scheerer/ambient-screen-colors/internal/credentials"
)

var errPairingDeclined = errors.New("pairing declined")

type pairing struct {
	store      *credentials.Store
	in         io.Reader
	out        io.Writer
	createUser func(ctx context.Context, address string) (string, error)
}

// username picks the explicit username, then the stored one, and finally
// offers to pair with the bridge and stores the new username.
func (p *pairing) username(ctx context.Context, bridge, explicit string) (string, error) {
	if u := strings.TrimSpace(explicit); u != "" {
		return u, nil
	}

	stored, found, err := p.store.Load(bridge)
	if err != nil {
		logger.With(zap.Error(err), zap.String("path", p.store.Path())).Warn("Ignoring unreadable credentials")
	} else if found {
		logger.With(zap.String("bridge", bridge)).Debug("Using stored username")
		return stored, nil
	}

	ok, err := p.confirm(ctx, fmt.Sprintf("No username stored for bridge %s. Press the link button on the bridge, then confirm to pair [Y/n]: ", bridge))
	if err != nil {
		return "", &credentials.CredentialError{Bridge: bridge, Err: err}
	}
	if !ok {
		return "", &credentials.CredentialError{Bridge: bridge, Err: errPairingDeclined}
	}

	username, err := p.createUser(ctx, bridge)
	if err != nil {
		return "", &credentials.CredentialError{Bridge: bridge, Err: err}
	}
	if username == "" {
		return "", &credentials.CredentialError{Bridge: bridge}
	}

	if err := p.store.Save(bridge, username); err != nil {
		logger.With(zap.Error(err)).Warn("Failed to store username, pairing will be needed again next time")
	} else {
		logger.With(zap.String("path", p.store.Path())).Info("Stored bridge username")
	}
	return username, nil
}

// confirm defaults to yes on an empty answer and to no on EOF. It gives up
// when ctx is done; the pending read is left to the exiting process.
func (p *pairing) confirm(ctx context.Context, prompt string) (bool, error) {
	fmt.Fprint(p.out, prompt)

	answers := make(chan string, 1)
	go func() {
		answer, err := bufio.NewReader(p.in).ReadString('\n')
		if err != nil && answer == "" {
			close(answers)
			return
		}
		answers <- answer
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(p.out)
		return false, ctx.Err()
	case answer, ok := <-answers:
		if !ok {
			return false, nil
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "", "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}
