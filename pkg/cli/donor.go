package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"blood-helpline/pkg/config"
	"blood-helpline/pkg/models"
	"blood-helpline/pkg/storage/sqlite"
)

var (
	donorName  string
	donorPhone string
	donorGroup string
)

// NewDonorCmd creates the donor command group for the sqlite directory
func NewDonorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "donor",
		Short: "Manage the local donor directory",
		Long:  `Manage donors in the sqlite directory used when STORE_BACKEND=sqlite.`,
	}
	cmd.AddCommand(newDonorAddCmd(), newDonorListCmd())
	return cmd
}

func newDonorAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a donor",
		Long: `Register a donor in the sqlite directory.

Examples:
  helpline donor add --name Asha --phone 9000000001 --group O+`,
		Args: cobra.NoArgs,
		RunE: runDonorAdd,
	}
	cmd.Flags().StringVar(&donorName, "name", "", "Donor name")
	cmd.Flags().StringVar(&donorPhone, "phone", "", "Donor phone number")
	cmd.Flags().StringVar(&donorGroup, "group", "", "Blood group, e.g. O+ or AB-")
	return cmd
}

func newDonorListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered donors",
		Args:  cobra.NoArgs,
		RunE:  runDonorList,
	}
}

func openDonorDB() (*sqlite.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	return sqlite.Open(cfg.SQLitePath)
}

func runDonorAdd(cmd *cobra.Command, args []string) error {
	group := strings.ToUpper(strings.TrimSpace(donorGroup))
	if !validGroup(group) {
		return fmt.Errorf("invalid blood group %q", donorGroup)
	}
	if strings.TrimSpace(donorName) == "" || strings.TrimSpace(donorPhone) == "" {
		return errors.New("--name and --phone are required")
	}

	db, err := openDonorDB()
	if err != nil {
		return err
	}
	defer db.Close()

	donor := models.DonorRecord{Name: strings.TrimSpace(donorName), Phone: strings.TrimSpace(donorPhone), BloodGroup: group}
	if err := db.AddDonor(cmd.Context(), donor); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added donor %s (%s)\n", donor.Name, donor.BloodGroup)
	return nil
}

func runDonorList(cmd *cobra.Command, args []string) error {
	db, err := openDonorDB()
	if err != nil {
		return err
	}
	defer db.Close()

	donors, err := db.ListDonors(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPHONE\tGROUP")
	for _, d := range donors {
		fmt.Fprintf(w, "%s\t%s\t%s\n", d.Name, d.Phone, d.BloodGroup)
	}
	return w.Flush()
}

func validGroup(group string) bool {
	for digit := 1; digit <= 8; digit++ {
		if string(models.BloodGroupFromDigit(fmt.Sprint(digit))) == group {
			return true
		}
	}
	return false
}
