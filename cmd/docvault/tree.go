package main

import (
	"fmt"

	"github.com/disiqueira/gotree/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/taigrr/docvault/internal/filetype"
	"github.com/taigrr/docvault/internal/projector"
	"github.com/taigrr/docvault/internal/types"
)

// renderTree draws nodes below a root labelled label. Files show their
// extension and size.
func renderTree(label string, nodes []types.ScanNode) string {
	root := gotree.New(label)
	addNodes(root, nodes)
	return root.Print()
}

func addNodes(parent gotree.Tree, nodes []types.ScanNode) {
	for _, node := range nodes {
		if node.IsDir {
			addNodes(parent.Add(node.Name+"/"), node.Children)
			continue
		}
		name := node.Name
		if node.Ext != "" {
			name += "." + node.Ext
		}
		if node.Size != nil {
			name += " (" + filetype.FormatSize(*node.Size) + ")"
		}
		parent.Add(name)
	}
}

func newTreeCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:     "tree <project>",
		Short:   "Print a project's vault as a tree",
		Example: `docvault tree 42`,
		Args:    cobra.ExactArgs(1),
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
			snap := s.Snapshot()
			out := cmd.OutOrStdout()
			fmt.Fprint(out, renderTree(snap.ProjectID, snap.FileTree))
			fmt.Fprintf(out, "%d files, %d folders\n", projector.CountFiles(snap.FileTree), len(s.Folders()))
			return nil
		},
	}
}
