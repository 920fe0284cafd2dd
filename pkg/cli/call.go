package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"blood-helpline/pkg/clients/twilio"
	"blood-helpline/pkg/config"
)

var (
	callTo  string
	callURL string
)

// NewCallCmd creates the call command
func NewCallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call",
		Short: "Place an outbound test call into the helpline",
		Long: `Place an outbound call that Twilio connects to the helpline's /voice webhook.

Examples:
  helpline call
  helpline call --to +919876543210 --url https://helpline.example.org/voice`,
		Args: cobra.NoArgs,
		RunE: runCall,
	}

	cmd.Flags().StringVar(&callTo, "to", "", "Number to call (default YOUR_PHONE_NUMBER)")
	cmd.Flags().StringVar(&callURL, "url", "", "Voice webhook URL (default PUBLIC_BASE_URL/voice)")
	return cmd
}

func runCall(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if err := cfg.RequireOutboundCall(); err != nil {
		return err
	}

	to, webhookURL, err := callTarget(cfg, callTo, callURL)
	if err != nil {
		return err
	}

	client := twilio.NewClient(cfg.TwilioSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)
	sid, err := client.PlaceCall(cmd.Context(), to, webhookURL)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Call initiated. SID: %s\n", sid)
	return nil
}

// callTarget resolves the number and webhook from flags, falling back to config
func callTarget(cfg *config.Config, to, webhookURL string) (string, string, error) {
	if to == "" {
		to = cfg.TestPhoneNumber
	}
	if to == "" {
		return "", "", errors.New("no number to call: pass --to or set YOUR_PHONE_NUMBER")
	}
	if webhookURL == "" {
		if cfg.PublicBaseURL == "" {
			return "", "", errors.New("no webhook url: pass --url or set PUBLIC_BASE_URL")
		}
		webhookURL = cfg.PublicBaseURL + "/voice"
	}
	return to, webhookURL, nil
}
