package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/xxxsen/inkwell/internal/config"
	"github.com/xxxsen/inkwell/internal/readability"
	"github.com/xxxsen/inkwell/internal/suggest"
)

// offlineConfig loads configPath when given. The offline commands need no
// database, so without a file they run on defaults.
func offlineConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	initLogger(cfg)
	return cfg, nil
}

func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(raw), nil
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read %s: %w", args[0], err)
	}
	return string(raw), nil
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newScoreCmd() *cobra.Command {
	var markdown bool
	cmd := &cobra.Command{
		Use:   "score [file]",
		Short: "print readability metrics of a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			m := readability.Score(text)
			if markdown {
				m = readability.ScoreMarkdown(text)
			}
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"metrics":         m,
				"recommendations": readability.Recommendations(m),
			})
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "strip markdown syntax before scoring")
	return cmd
}

func newSuggestCmd() *cobra.Command {
	var (
		configPath string
		apply      bool
	)
	cmd := &cobra.Command{
		Use:   "suggest [file]",
		Short: "print grammar, spelling and style suggestions for a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := offlineConfig(configPath)
			if err != nil {
				return err
			}
			text, err := readInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			engine, err := buildEngine(cfg, false)
			if err != nil {
				return err
			}
			list := engine.Suggest(text)
			if apply {
				fixed, err := suggest.ApplyAll(text, list)
				if err != nil {
					return err
				}
				_, err = io.WriteString(cmd.OutOrStdout(), fixed)
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"suggestions": list,
				"stats":       suggest.ComputeStats(text, list),
			})
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "optional path to config.json")
	cmd.Flags().BoolVar(&apply, "apply", false, "print the text with every suggestion applied")
	return cmd
}
