package configcmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"mallhub/internal/infrastructure/config"
	"mallhub/internal/shared/constants"
	"mallhub/internal/shared/utils"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration tools",
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", constants.EnvDevelopment, "Environment (development, test, production)")

	cmd.AddCommand(&cobra.Command{
		Use:   "print",
		Short: "Print the effective configuration",
		Long:  `Print the configuration after defaults, config file and MALLHUB_* variables are merged. Secrets are masked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(env)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return Print(cmd.OutOrStdout(), cfg)
		},
	})

	return cmd
}

// Print writes cfg as YAML with passwords and signing secrets masked.
func Print(w io.Writer, cfg *config.Config) error {
	masked := *cfg
	masked.Database.Password = utils.MaskSecret(cfg.Database.Password)
	masked.Auth.JWT.Secret = utils.MaskSecret(cfg.Auth.JWT.Secret)
	masked.Redis.Password = utils.MaskSecret(cfg.Redis.Password)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&masked); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}
