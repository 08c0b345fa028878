package bootstrap

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// PausePrompt is printed before waiting for acknowledgment.
const PausePrompt = "Press Enter to continue..."

// Pauser blocks until the user acknowledges a message.
type Pauser interface {
	Pause() error
}

// ConsolePauser prompts on Out and waits for a line on In.
// EOF counts as acknowledgment, so a closed or redirected stdin never hangs.
type ConsolePauser struct {
	In  io.Reader
	Out io.Writer
}

// NewConsolePauser creates a ConsolePauser.
func NewConsolePauser(in io.Reader, out io.Writer) *ConsolePauser {
	return &ConsolePauser{In: in, Out: out}
}

// Pause implements Pauser.
func (p *ConsolePauser) Pause() error {
	if _, err := fmt.Fprint(p.Out, PausePrompt); err != nil {
		return err
	}
	_, err := bufio.NewReader(p.In).ReadString('\n')
	fmt.Fprintln(p.Out)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read acknowledgment: %w", err)
	}
	return nil
}

// NoPause is a Pauser that returns immediately.
type NoPause struct{}

// Pause implements Pauser.
func (NoPause) Pause() error { return nil }
