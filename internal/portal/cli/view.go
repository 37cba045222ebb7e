package cli

import (
	"context"
	"fmt"
)

// Profile prints the authenticated user's profile.
func (a *App) Profile(ctx context.Context) error {
	p := a.state.Profile()
	if p == nil {
		printlnFn("Not logged in")
		return nil
	}

	printlnFn("Role:", string(p.Role))
	printlnFn("Name:", p.Name())
	if from, to := a.state.YearBounds(); from != "" || to != "" {
		printlnFn("Current year:", from, "..", to)
	}
	return nil
}

// Collections prints a summary of the hydrated client collections.
func (a *App) Collections(ctx context.Context) error {
	cols := a.state.Collections()
	if cols == nil {
		if err := a.state.HydrationErr(); err != nil {
			printlnFn("Data not loaded:", err.Error())
		} else {
			printlnFn("Data not loaded yet")
		}
		return nil
	}

	printlnFn(fmt.Sprintf("Consultations: %d", len(cols.Consultations)))
	printlnFn(fmt.Sprintf("Drugs:         %d", len(cols.Drugs)))
	printlnFn(fmt.Sprintf("Orders:        %d", len(cols.Orders)))
	printlnFn(fmt.Sprintf("Messages:      %d", len(cols.Messages)))
	printlnFn(fmt.Sprintf("Diet plans:    %d", len(cols.DietPlans)))
	return nil
}

// ServerTime prints the gateway's current date and timestamp.
func (a *App) ServerTime(ctx context.Context) error {
	st, err := a.ctrl.ServerTime(ctx)
	if err != nil {
		printlnFn("Could not reach the gateway")
		return err
	}
	printlnFn("Server date:", st.CurrentDate)
	return nil
}
