// Package tui provides the terminal prompt used by interactive learning runs.
//
// Prompter implements experiment.Prompter with small bubbletea programs:
// one text input per counterexample request and a y/N dialog when the user
// wants to stop. Above each prompt a round summary is rendered from the
// loop events.
//
// Usage:
//
//	p := tui.NewPrompter(os.Stdin, os.Stdout)
//	res, err := experiment.Run(ctx, mq, open, experiment.Options[bool]{
//	    Target:      target,
//	    Interactive: true,
//	    Prompter:    p,
//	    OnEvent:     p.Observe,
//	})
//
// Notifications are printed below the last prompt and repeated in the next
// one.
package tui
