package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/beblocky/dashboard/internal/domain/gate"
)

func gateCmd(cmdCtx *commandContext) *cobra.Command {
	var cookies []string

	cmd := &cobra.Command{
		Use:   "gate <path>",
		Short: "Print the gate decision for a path",
		Long: `Evaluate the request gate with the configured cookie names and path lists.
Cookies are given as name=value and may be repeated.`,
		Example: `  beblocky-admin gate /dashboard
  beblocky-admin gate /sign-in --cookie beblocky.session_token=abc`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			jar, err := parseCookies(cookies)
			if err != nil {
				return err
			}
			g := gate.New(gate.Config{
				CookieNames:   cmdCtx.Config.Auth.CookieNames,
				PublicPaths:   cmdCtx.Config.Auth.PublicPaths,
				ExcludedPaths: cmdCtx.Config.Auth.ExcludedPaths,
				SignInPath:    cmdCtx.Config.Auth.SignInPath,
				HomePath:      cmdCtx.Config.Auth.HomePath,
			})
			return printDecision(cmdCtx, g, args[0], jar)
		},
	}

	cmd.Flags().StringArrayVar(&cookies, "cookie", nil, "Cookie as name=value (repeatable)")
	return cmd
}

func parseCookies(raw []string) (map[string]string, error) {
	jar := make(map[string]string, len(raw))
	for _, kv := range raw {
		name, value, ok := strings.Cut(kv, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid cookie %q: want name=value", kv)
		}
		jar[name] = value
	}
	return jar, nil
}

func printDecision(cmdCtx *commandContext, g *gate.Gate, path string, jar map[string]string) error {
	d := g.Evaluate(path, jar)
	if err := writef(cmdCtx.Out, "path:      %s\n", path); err != nil {
		return err
	}
	if err := writef(cmdCtx.Out, "class:     %s\n", describeClass(g, path)); err != nil {
		return err
	}
	token, ok := gate.ExtractToken(jar, g.Names)
	if ok {
		if err := writef(cmdCtx.Out, "token:     present (%d bytes)\n", len(token)); err != nil {
			return err
		}
	} else if err := writef(cmdCtx.Out, "token:     absent\n"); err != nil {
		return err
	}
	if err := writef(cmdCtx.Out, "decision:  %s\n", d.Kind); err != nil {
		return err
	}
	if d.IsRedirect() {
		return writef(cmdCtx.Out, "location:  %s\n", d.Target)
	}
	return nil
}

func describeClass(g *gate.Gate, path string) string {
	if g.Classifier.IsExcluded(path) {
		return "excluded"
	}
	return g.Classifier.Classify(path).String()
}
