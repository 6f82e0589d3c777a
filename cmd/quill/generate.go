package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/quill/internal/render"
	"github.com/dusk-indust/quill/internal/server"
	"github.com/dusk-indust/quill/internal/tui"
	"github.com/dusk-indust/quill/internal/workflow"
)

type generateFlags struct {
	noCache   bool
	useTUI    bool
	render    bool
	output    string
	htmlPath  string
	serverURL string
}

func newGenerateCmd(a *app) *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "generate <topic>",
		Short: "Run the pipeline for a topic and print the post",
		Example: `  quill generate "electric vehicles"
  quill generate --no-cache --render "sourdough baking"
  quill generate --server http://localhost:8080 "tidal power"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGenerate(cmd, strings.Join(args, " "), f)
		},
	}
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "ignore any cached post and regenerate")
	cmd.Flags().BoolVar(&f.useTUI, "tui", false, "show an interactive progress view")
	cmd.Flags().BoolVar(&f.render, "render", false, "render the post for the terminal instead of printing markdown")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "write the markdown to a file")
	cmd.Flags().StringVar(&f.htmlPath, "html", "", "also write the post as a standalone HTML page")
	cmd.Flags().StringVar(&f.serverURL, "server", "", "run on a remote quill server instead of in-process")
	return cmd
}

func (a *app) runGenerate(cmd *cobra.Command, input string, f generateFlags) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var events <-chan workflow.Event
	if f.serverURL != "" {
		frames, err := server.NewClient(f.serverURL, nil).Generate(ctx, input, !f.noCache)
		if err != nil {
			return err
		}
		events = fromFrames(ctx, frames)
	} else {
		ctrl, closeStore, err := a.controller(ctx)
		if err != nil {
			return err
		}
		defer closeStore()
		stream := ctrl.Generate(ctx, input, !f.noCache)
		defer func() {
			stream.Close()
			<-stream.Done()
		}()
		events = stream.Events()
	}

	var (
		final workflow.Event
		ok    bool
	)
	if f.useTUI {
		var err error
		final, ok, err = tui.Run(ctx, input, events, cancel)
		if err != nil {
			return err
		}
	} else {
		final, ok = printProgress(cmd.ErrOrStderr(), events)
	}

	if !ok {
		if err := ctx.Err(); err != nil {
			return err
		}
		return errors.New("run ended without a result")
	}
	if final.Kind == workflow.EventWorkflowFailed {
		return fmt.Errorf("%s: %s", final.Message, final.Error)
	}
	return writePost(cmd.OutOrStdout(), final.Content, f)
}

// printProgress writes one status line per event and returns the terminal
// event.
func printProgress(w io.Writer, events <-chan workflow.Event) (workflow.Event, bool) {
	for ev := range events {
		fmt.Fprintln(w, workflow.FormatEvent(ev))
		if ev.Terminal() {
			return ev, true
		}
	}
	return workflow.Event{}, false
}

func writePost(w io.Writer, post string, f generateFlags) error {
	if f.output != "" {
		if err := os.WriteFile(f.output, []byte(post), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f.output, err)
		}
	}
	if f.htmlPath != "" {
		page, err := render.Page(post)
		if err != nil {
			return err
		}
		if err := os.WriteFile(f.htmlPath, []byte(page), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f.htmlPath, err)
		}
	}

	out := post
	if f.render {
		rendered, err := render.Terminal(post, 0)
		if err != nil {
			return err
		}
		out = rendered
	}
	if f.output != "" && !f.render {
		return nil
	}
	_, err := io.WriteString(w, out)
	return err
}

// fromFrames adapts a remote event stream to the in-process event channel.
// A malformed frame ends the stream with a workflow_failed event.
func fromFrames(ctx context.Context, frames <-chan server.Frame) <-chan workflow.Event {
	out := make(chan workflow.Event)
	go func() {
		defer close(out)
		for f := range frames {
			ev := f.Event
			if f.Err != nil {
				ev = workflow.Event{Kind: workflow.EventWorkflowFailed, Message: "Received an invalid event from the server", Error: f.Err.Error()}
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
			if f.Err != nil || ev.Terminal() {
				return
			}
		}
	}()
	return out
}
