package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

// PromptEnter blocks until the operator presses Enter or the context is
// cancelled. The block recovery flow parks here while a human solves the
// challenge in the browser window.
func PromptEnter(ctx context.Context, message string) error {
	return promptEnter(ctx, os.Stdin, message)
}

func promptEnter(ctx context.Context, r io.Reader, message string) error {
	fmt.Printf("\n%s %s", Magenta("[ACTION REQUIRED]"), Yellow(message))

	done := make(chan error, 1)
	go func() {
		reader := bufio.NewReader(r)
		_, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) {
			// Closed stdin counts as acknowledgement so piped runs
			// do not wedge
			err = nil
		}
		done <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
