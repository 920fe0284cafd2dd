package cli

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the helpline command tree
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "helpline",
		Short: "Blood emergency helpline IVR",
		Long: `Voice helpline that collects a blood request over the phone, stores it,
and texts registered donors with a matching blood group.

Configuration is read from the environment and from a .env file in the
working directory.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := godotenv.Load(); err != nil {
				log.Println("No .env file loaded")
			}
		},
	}

	cmd.AddCommand(
		NewServeCmd(),
		NewCallCmd(),
		NewDonorCmd(),
		NewVersionCmd(),
	)
	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
