// File: cmd/run.go
package cmd

import (
	"fmt"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/linkscout/internal/observability"
	"github.com/xkilldash9x/linkscout/internal/tools"
)

var runParams string

// runCmd executes one tool directly, without the HTTP server.
var runCmd = &cobra.Command{
	Use:   "run <tool>",
	Short: "Run a single tool and print its result.",
	Long: `Runs one tool invocation from the command line. Parameters are passed as a
JSON object, for example:

  linkscout run scrape_linkedin_post --params '{"post_url": "https://www.linkedin.com/posts/...", "n": 10}'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := observability.GetLogger()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		toolset, err := tools.NewToolset(ctx, appCfg, logger)
		if err != nil {
			return fmt.Errorf("failed to assemble toolset: %w", err)
		}
		registry := toolset.Registry()

		name := strings.ToLower(args[0])
		tool, ok := registry[name]
		if !ok {
			names := make([]string, 0, len(registry))
			for n := range registry {
				names = append(names, n)
			}
			sort.Strings(names)
			return fmt.Errorf("unknown tool %q; available: %s", args[0], strings.Join(names, ", "))
		}

		var params map[string]any
		if runParams != "" {
			if err := jsoniter.ConfigCompatibleWithStandardLibrary.UnmarshalFromString(runParams, &params); err != nil {
				return fmt.Errorf("invalid --params JSON: %w", err)
			}
		}

		fmt.Println(tool(ctx, params))
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runParams, "params", "p", "", "tool parameters as a JSON object")
	rootCmd.AddCommand(runCmd)
}
