package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	awspkg "github.com/guimove/placefit/internal/aws"
)

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List the AWS regions enabled for the account",
	RunE: func(cmd *cobra.Command, args []string) error {
		provider, err := newAWSProvider(cmd.Context())
		if err != nil {
			return err
		}
		names, err := provider.ListRegions(cmd.Context())
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for i, r := range awspkg.ToRegions(names) {
			fmt.Fprintf(w, "%-20s %s\n", names[i], r)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(regionsCmd)
}
