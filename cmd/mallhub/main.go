package main

import (
	"os"

	"github.com/spf13/cobra"

	"mallhub/internal/interfaces/cli/configcmd"
	"mallhub/internal/interfaces/cli/migrate"
	"mallhub/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mallhub",
		Short: "mallhub - multi-tenant payment gateway and webhook dispatch",
		Long:  `mallhub routes storefront checkouts to payment providers, reconciles their callbacks and fans domain events out to tenant webhooks.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		configcmd.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
