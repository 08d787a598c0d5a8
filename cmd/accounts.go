package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/goclaw-whatsapp/internal/accounts"
	"github.com/nextlevelbuilder/goclaw-whatsapp/internal/config"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Inspect configured WhatsApp accounts",
	}
	cmd.AddCommand(accountsListCmd())
	cmd.AddCommand(accountsResolveCmd())
	return cmd
}

func loadRuntime() (*config.RuntimeAdapter, error) {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return config.NewRuntimeAdapter(cfg), nil
}

func accountsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts and their status",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ACCOUNT\tENABLED\tCONFIGURED\tPHONE NUMBER ID\tTOKEN SOURCE")
			for _, id := range accounts.ListAccountIDs(rt) {
				acct := accounts.ResolveAccount(rt, id)
				fmt.Fprintf(w, "%s\t%t\t%t\t%s\t%s\n",
					acct.AccountID, acct.Enabled, acct.Configured,
					acct.PhoneNumberID, acct.TokenSource)
			}
			return w.Flush()
		},
	}
}

func accountsResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [account-id]",
		Short: "Show the effective configuration for one account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime()
			if err != nil {
				return err
			}

			id := ""
			if len(args) > 0 {
				id = args[0]
			} else {
				id = accounts.ResolveDefaultAccountID(rt)
			}

			acct := accounts.ResolveAccount(rt, id)
			fmt.Printf("Account:          %s\n", acct.AccountID)
			if acct.Name != "" {
				fmt.Printf("Name:             %s\n", acct.Name)
			}
			fmt.Printf("Enabled:          %t\n", acct.Enabled)
			fmt.Printf("Configured:       %t\n", acct.Configured)
			fmt.Printf("Phone number ID:  %s\n", acct.PhoneNumberID)
			if acct.BusinessAccountID != "" {
				fmt.Printf("Business account: %s\n", acct.BusinessAccountID)
			}
			fmt.Printf("Token source:     %s\n", acct.TokenSource)
			if acct.AccessToken != "" {
				fmt.Printf("Access token:     *** (%d chars)\n", len(acct.AccessToken))
			}
			if acct.Config.DMPolicy != nil {
				fmt.Printf("DM policy:        %s\n", *acct.Config.DMPolicy)
			}
			if acct.Config.GroupPolicy != nil {
				fmt.Printf("Group policy:     %s\n", *acct.Config.GroupPolicy)
			}
			return nil
		},
	}
}
