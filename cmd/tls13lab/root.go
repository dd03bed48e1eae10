package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newRootCmd builds the tls13lab root command and attaches the viper
// instance every subcommand binds its flags into, following
// keploy-keploy's cobra+viper flag-binding convention.
func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("TLS13LAB")
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "tls13lab",
		Short: "A from-scratch TLS 1.3 server engine",
	}
	root.AddCommand(newServeCmd(v))
	return root
}
