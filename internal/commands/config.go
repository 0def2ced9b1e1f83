package commands

import (
	"path/filepath"

	"github.com/fatih/color"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"github.com/abelbrown/meetapp/internal/config"
)

func addConfig(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the meetapp config file.",
	}
	addConfigInit(cmd)
	topLevel.AddCommand(cmd)
}

func addConfigInit(parent *cobra.Command) {
	var path string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings.",
		Example: `
meetapp config init
meetapp config init --path ./.meetapp.yaml
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				home, err := homedir.Dir()
				if err != nil {
					return err
				}
				path = filepath.Join(home, ".meetapp", ".meetapp.yaml")
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			_, _ = color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Where to write the file. Defaults to ~/.meetapp/.meetapp.yaml.")
	parent.AddCommand(cmd)
}
