package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"llmcord/internal/bot"
	"llmcord/internal/registry"
)

func newCommandsCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List the enabled commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g.configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, c := range bot.New(cfg, nil, zerolog.Nop()).Commands() {
				fmt.Fprintf(out, "%s\t%s\n", c.Name, c.Description)
			}
			return nil
		},
	}
}

func newModelsCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "models [dir]",
		Short: "List model files (*.gguf, *.bin) in a directory",
		Long:  "List model files in dir, or in the directory of model.path when dir is omitted.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			} else {
				cfg, err := loadConfig(g.configPath)
				if err != nil {
					return err
				}
				dir = filepath.Dir(cfg.Model.Path)
				if strings.TrimSpace(cfg.Model.Path) == "" {
					dir = "."
				}
			}
			models, err := registry.LoadDir(dir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range models {
				fmt.Fprintf(out, "%s\t%d\t%s\n", m.ID, m.SizeBytes, m.Path)
			}
			return nil
		},
	}
}
