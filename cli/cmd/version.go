package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/webasset/types"
)

// VersionResponse is the response for the version command.
type VersionResponse struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

// VersionCommand returns the version command.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Emit version as JSON",
			},
		},
		Action: versionAction(commit),
	}
}

func versionAction(commit string) cli.ActionFunc {
	return func(c *cli.Context) error {
		resp := VersionResponse{
			Version: types.Version,
			Commit:  commit,
		}

		if c.Bool("json") {
			enc := json.NewEncoder(c.App.Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		}

		fmt.Fprintf(c.App.Writer, "webasset %s (commit: %s)\n", resp.Version, resp.Commit)
		return nil
	}
}
