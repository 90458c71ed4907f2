package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/disuhitarth/EcommerceConcept/internal/auth"
)

var (
	hashAlgorithm string
	hashCost      int
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Hash a password for seeding or manual account repair",
	Long: `Hash a password with bcrypt or argon2id. The output can be stored directly
in the accounts.password_hash column.

Security note: The password will appear in shell history.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hasher := auth.NewPasswordHasher(hashAlgorithm, hashCost)
		hashed, err := hasher.Hash(args[0])
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), hashed)
		return nil
	},
}

func init() {
	hashPasswordCmd.Flags().StringVar(&hashAlgorithm, "algorithm", auth.AlgorithmBcrypt, "hash algorithm (bcrypt or argon2id)")
	hashPasswordCmd.Flags().IntVar(&hashCost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	rootCmd.AddCommand(hashPasswordCmd)
}
