package main

import (
	"github.com/spf13/cobra"
)

func listCmd(rt *cli) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := rt.app.Users.List(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return renderJSON(cmd.OutOrStdout(), list)
			}
			renderUsers(cmd.OutOrStdout(), list)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func postsCmd(rt *cli) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "posts",
		Short: "List posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := rt.app.Posts.List(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return renderJSON(cmd.OutOrStdout(), list)
			}
			renderPosts(cmd.OutOrStdout(), list)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}
