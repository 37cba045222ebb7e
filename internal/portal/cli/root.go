package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

func (a *App) getStatus() string {
	p := a.state.Profile()
	if p == nil {
		return "(guest)"
	}
	return fmt.Sprintf("(%s %s)", p.Name(), string(p.Role))
}

// Root runs the interactive loop over stdin until the user exits.
func (a *App) Root(ctx context.Context) {
	printlnFn("Clinic portal CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
