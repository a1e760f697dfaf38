package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/taigrr/docvault/internal/logging"
)

func newImportCommand(v *viper.Viper) *cobra.Command {
	var folder string
	cmd := &cobra.Command{
		Use:     "import <project> <file>...",
		Short:   "Copy markdown, PDF or image files into a project's vault",
		Example: `docvault import 42 notes.md scan.pdf --folder /Inbox`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd.Context(), v, configFile(cmd))
			if err != nil {
				return err
			}
			defer app.Close()

			s, err := app.session(cmd.Context(), args[0])
			if err != nil {
				return app.failed(nil, err)
			}

			sources := make([]string, 0, len(args)-1)
			for _, arg := range args[1:] {
				abs, err := filepath.Abs(arg)
				if err != nil {
					return fmt.Errorf("resolving %s: %w", arg, err)
				}
				sources = append(sources, abs)
			}

			failed := 0
			out := cmd.OutOrStdout()
			for _, r := range s.ImportFiles(cmd.Context(), sources, folder) {
				if r.Success {
					fmt.Fprintf(out, "imported %s -> %s\n", r.Name, r.Path)
					continue
				}
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "failed %s: %s\n", r.Name, r.Error)
			}
			logging.S().Infow("import finished",
				"project", s.ProjectID(),
				"folder", folder,
				"imported", len(sources)-failed,
				"failed", failed,
			)
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed to import", failed, len(sources))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&folder, "folder", "f", "/", "vault folder to import into")
	return cmd
}
