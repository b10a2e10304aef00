package main

import (
	"fmt"
	"time"

	"finance-tracker/internal/database"
	"finance-tracker/internal/repositories"
	"finance-tracker/internal/services"

	"github.com/spf13/cobra"
)

type seedOptions struct {
	username string
	count    int
	days     int
	seed     uint64
}

func newSeedCmd(a *app) *cobra.Command {
	opts := seedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate demo transactions for an existing user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := a.seed(opts)
			if err != nil {
				return err
			}
			cmd.Printf("created %d transactions for %s\n", n, opts.username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.username, "username", "u", "", "user to receive the transactions")
	cmd.Flags().IntVarP(&opts.count, "count", "n", 50, "number of transactions to create")
	cmd.Flags().IntVar(&opts.days, "days", 90, "spread transactions over this many past days")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed (0 picks one from the clock)")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func (a *app) seed(opts seedOptions) (int, error) {
	if opts.count <= 0 {
		return 0, fmt.Errorf("count must be positive, got %d", opts.count)
	}
	if opts.days <= 0 {
		return 0, fmt.Errorf("days must be positive, got %d", opts.days)
	}

	db, err := database.Initialize(a.cfg)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	user, err := repositories.NewUserRepository(db.DB).GetByUsername(opts.username)
	if err != nil {
		return 0, fmt.Errorf("failed to find user %q: %w", opts.username, err)
	}

	seed := opts.seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -opts.days)
	transactions := services.NewTransactionGenerator(seed).GenerateTransactions(user.ID, opts.count, start, end)

	if err := repositories.NewTransactionRepository(db.DB).CreateBatch(transactions); err != nil {
		return 0, fmt.Errorf("failed to store transactions: %w", err)
	}

	a.logger.Info("seeded transactions", "user_id", user.ID.String(), "count", len(transactions), "seed", seed)
	return len(transactions), nil
}
