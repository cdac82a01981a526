package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	cli "github.com/urfave/cli/v3"

	"tessera/pkg/engine"
	"tessera/pkg/script"
	"tessera/pkg/state"
)

var allStages = []string{"tokens", "tree", "html", "layout", "display", "scripts"}

var stageNames = strings.Join(allStages, ", ")

func runDump(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	if cmd.Args().Len() != 1 {
		return errors.New("dump expects exactly one FILE")
	}
	width, height, err := viewport(cmd, env.Cfg.Viewport.Width, env.Cfg.Viewport.Height)
	if err != nil {
		return err
	}
	stages := cmd.StringSlice("stage")
	if len(stages) == 0 {
		stages = allStages
	}
	for _, s := range stages {
		if !slices.Contains(allStages, s) {
			return fmt.Errorf("unknown stage %q (expected: %s)", s, stageNames)
		}
	}

	markup, err := env.Fetcher.FetchDocument(cmd.Args().Get(0))
	if err != nil {
		return err
	}
	out := engine.RenderDocument(markup, uint32(width), uint32(height))
	return writeDump(os.Stdout, out, stages)
}

func writeDump(w io.Writer, out engine.Output, stages []string) error {
	var sb strings.Builder
	for _, stage := range stages {
		fmt.Fprintf(&sb, "== %s\n", stage)
		switch stage {
		case "tokens":
			for _, tok := range out.Tokens {
				fmt.Fprintf(&sb, "%s\n", tok)
			}
		case "tree":
			sb.WriteString(out.Document.Dump())
			if err := out.Document.Validate(); err != nil {
				fmt.Fprintf(&sb, "INVALID: %v\n", err)
			}
		case "html":
			sb.WriteString(out.Document.Serialize())
			sb.WriteString("\n")
		case "layout":
			for _, b := range out.Layout.Boxes {
				n := out.Document.Node(b.NodeID)
				label := n.TagName
				if label == "" {
					label = "#text"
				}
				fmt.Fprintf(&sb, "%s %s\n", b, label)
			}
		case "display":
			fmt.Fprintf(&sb, "viewport %dx%d\n", out.DisplayList.ViewportWidth, out.DisplayList.ViewportHeight)
			for _, c := range out.DisplayList.Commands {
				fmt.Fprintf(&sb, "%s\n", c)
			}
		case "scripts":
			host := script.NewStubHost(nil)
			_ = host.Execute(out.Scripts)
			for _, s := range out.Scripts {
				fmt.Fprintf(&sb, "node %d: %q\n", s.NodeID, s.Code)
			}
			for _, d := range host.Diagnostics() {
				fmt.Fprintf(&sb, "node %d: syntax error: %v\n", d.NodeID, d.Err)
			}
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
