package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iamarketings/Operator/internal/listing"
	"github.com/iamarketings/Operator/internal/models"
)

func (a *app) extensionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "extensions",
		Aliases: []string{"ext"},
		Short:   "Manage extensions",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List extensions",
		RunE: func(cmd *cobra.Command, args []string) error {
			search, _ := cmd.Flags().GetString("search")
			page, _ := cmd.Flags().GetInt("page")
			perPage, _ := cmd.Flags().GetInt("per-page")

			st := a.openStore(cmd.Context(), cmd)
			exts := listing.FilterExtensions(st.Extensions(), search)
			if perPage <= 0 {
				perPage = max(len(exts), 1)
			}
			renderExtensions(cmd.OutOrStdout(), listing.Paginate(exts, page, perPage))
			return nil
		},
	}
	listCmd.Flags().StringP("search", "s", "", "Filter by name, number or IP")
	listCmd.Flags().IntP("page", "p", 1, "Page number")
	listCmd.Flags().Int("per-page", 0, "Rows per page (0 shows all)")

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add an extension",
		RunE: func(cmd *cobra.Command, args []string) error {
			number, _ := cmd.Flags().GetString("number")
			name, _ := cmd.Flags().GetString("name")
			secret, _ := cmd.Flags().GetString("secret")
			protocol, _ := cmd.Flags().GetString("protocol")

			n := models.NewExtension{Number: number, Name: name, Secret: secret, Protocol: models.Protocol(protocol)}
			if err := n.Validate(); err != nil {
				return err
			}

			res := a.openStore(cmd.Context(), cmd).AddExtension(cmd.Context(), n)
			reportResult(cmd.OutOrStdout(), "add extension", res.Value.ID, res)
			return nil
		},
	}
	addCmd.Flags().StringP("number", "n", "", "Extension number (required)")
	addCmd.Flags().String("name", "", "Display name (required)")
	addCmd.Flags().String("secret", "", "SIP secret")
	addCmd.Flags().StringP("protocol", "P", string(models.ProtocolSIP), "Protocol: SIP, PJSIP")
	_ = addCmd.MarkFlagRequired("number")
	_ = addCmd.MarkFlagRequired("name")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an extension",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.openStore(cmd.Context(), cmd).RemoveExtension(cmd.Context(), args[0])
			reportResult(cmd.OutOrStdout(), "delete extension", args[0], res)
			return nil
		},
	}

	cmd.AddCommand(listCmd, addCmd, deleteCmd)
	return cmd
}

func (a *app) trunksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trunks",
		Short: "Manage trunks",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List trunks",
		RunE: func(cmd *cobra.Command, args []string) error {
			renderTrunks(cmd.OutOrStdout(), a.openStore(cmd.Context(), cmd).Trunks())
			return nil
		},
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a trunk",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			typ, _ := cmd.Flags().GetString("type")
			host, _ := cmd.Flags().GetString("host")

			n := models.NewTrunk{Name: name, Type: models.TrunkType(typ), Host: host}
			if err := n.Validate(); err != nil {
				return err
			}

			res := a.openStore(cmd.Context(), cmd).AddTrunk(cmd.Context(), n)
			reportResult(cmd.OutOrStdout(), "add trunk", res.Value.ID, res)
			return nil
		},
	}
	addCmd.Flags().String("name", "", "Trunk name (required)")
	addCmd.Flags().StringP("type", "t", string(models.TrunkSIP), "Type: SIP, PJSIP, IAX2")
	addCmd.Flags().StringP("host", "H", "", "Provider host (required)")
	_ = addCmd.MarkFlagRequired("name")
	_ = addCmd.MarkFlagRequired("host")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a trunk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.openStore(cmd.Context(), cmd).RemoveTrunk(cmd.Context(), args[0])
			reportResult(cmd.OutOrStdout(), "delete trunk", args[0], res)
			return nil
		},
	}

	cmd.AddCommand(listCmd, addCmd, deleteCmd)
	return cmd
}

func (a *app) queuesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queues",
		Short: "Manage call queues",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List queues",
		RunE: func(cmd *cobra.Command, args []string) error {
			renderQueues(cmd.OutOrStdout(), a.openStore(cmd.Context(), cmd).Queues())
			return nil
		},
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			strategy, _ := cmd.Flags().GetString("strategy")

			n := models.NewQueue{Name: name, Strategy: models.Strategy(strategy), Members: []models.QueueMember{}}
			if err := n.Validate(); err != nil {
				return err
			}

			res := a.openStore(cmd.Context(), cmd).AddQueue(cmd.Context(), n)
			reportResult(cmd.OutOrStdout(), "add queue", res.Value.ID, res)
			return nil
		},
	}
	addCmd.Flags().String("name", "", "Queue name (required)")
	addCmd.Flags().StringP("strategy", "s", string(models.StrategyRingAll), "Ring strategy")
	_ = addCmd.MarkFlagRequired("name")

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.openStore(cmd.Context(), cmd).RemoveQueue(cmd.Context(), args[0])
			reportResult(cmd.OutOrStdout(), "delete queue", args[0], res)
			return nil
		},
	}

	toggleCmd := &cobra.Command{
		Use:   "toggle <queueID> <extensionID>",
		Short: "Add or remove an extension from a queue",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.openStore(cmd.Context(), cmd)
			ext, ok := st.Extension(args[1])
			if !ok {
				return fmt.Errorf("extension %s not found", args[1])
			}
			res, ok := st.ToggleQueueMember(cmd.Context(), args[0], ext)
			if !ok {
				return fmt.Errorf("queue %s not found", args[0])
			}

			action := "remove member"
			if res.Value.HasMember(ext.ID) {
				action = "add member"
			}
			reportResult(cmd.OutOrStdout(), action, models.MemberID(ext.ID)+" in "+args[0], res)
			return nil
		},
	}

	cmd.AddCommand(listCmd, addCmd, deleteCmd, toggleCmd)
	return cmd
}

func (a *app) cdrCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cdr",
		Short: "Call detail records",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List call history",
		RunE: func(cmd *cobra.Command, args []string) error {
			search, _ := cmd.Flags().GetString("search")
			page, _ := cmd.Flags().GetInt("page")

			records := listing.FilterCDRs(a.openStore(cmd.Context(), cmd).CDRs(), search)
			renderCDRs(cmd.OutOrStdout(), listing.Paginate(records, page, listing.CDRPageSize))
			return nil
		},
	}
	listCmd.Flags().StringP("search", "s", "", "Filter by source, destination or caller ID")
	listCmd.Flags().IntP("page", "p", 1, "Page number")

	cmd.AddCommand(listCmd)
	return cmd
}
