package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/quill/internal/render"
	"github.com/dusk-indust/quill/internal/server"
)

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect cached posts",
	}

	var format, serverURL string
	get := &cobra.Command{
		Use:   "get <topic>",
		Short: "Print the cached post for an exact input",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := strings.Join(args, " ")

			var (
				post  string
				found bool
			)
			if serverURL != "" {
				resp, ok, err := server.NewClient(serverURL, nil).Post(cmd.Context(), input)
				if err != nil {
					return err
				}
				post, found = resp.Content, ok
			} else {
				ctrl, closeStore, err := a.controller(cmd.Context())
				if err != nil {
					return err
				}
				defer closeStore()
				post, found, err = ctrl.Cached(cmd.Context(), input)
				if err != nil {
					return err
				}
			}
			if !found {
				return fmt.Errorf("no cached post for %q", input)
			}
			return printCached(cmd.OutOrStdout(), post, format)
		},
	}
	get.Flags().StringVar(&format, "format", "markdown", "output format: markdown, html or terminal")
	get.Flags().StringVar(&serverURL, "server", "", "read from a remote quill server")

	cmd.AddCommand(get)
	return cmd
}

func printCached(w io.Writer, post, format string) error {
	var (
		out string
		err error
	)
	switch strings.ToLower(format) {
	case "", "markdown", "md":
		out = post
	case "html":
		out, err = render.Page(post)
	case "terminal":
		out, err = render.Terminal(post, 0)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
