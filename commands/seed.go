package commands

import (
	"context"
	"errors"
	"fmt"

	"waysfood-api/config"
	"waysfood-api/models"
	"waysfood-api/repository"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	// Seed flags
	seedPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert a demo partner with two products",
	Long: `Insert the demo partner "asep" and its menu. Running seed again is a no-op
when the partner already exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()

		if err := config.Migrate(db); err != nil {
			return err
		}
		partner, created, err := seedDemo(context.Background(), repository.NewStore(db), seedPassword)
		if err != nil {
			return err
		}
		logger.Info("Seed finished", zap.Uint("partner_id", partner.ID), zap.Bool("created", created))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringVar(&seedPassword, "password", "waysfood123", "Password for the demo partner")
}

var demoProducts = []models.Product{
	{Title: "Geprek Sambal Matah", Price: 18000, Image: "sambal-matah.png"},
	{Title: "Geprek Keju", Price: 20000, Image: "geprek-keju.png"},
}

func seedDemo(ctx context.Context, store *repository.Store, password string) (*models.User, bool, error) {
	const email = "asep@gmail.com"

	existing, err := store.Users.FindByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, fmt.Errorf("hash demo password: %w", err)
	}

	partner := &models.User{
		FullName: "asep",
		Email:    email,
		Password: string(hash),
		Phone:    "0812808080808",
		Location: "[106,-6.1]",
		Image:    "asep.png",
		Role:     models.RolePartner,
	}
	err = store.Atomic(ctx, func(tx *repository.Store) error {
		if err := tx.Users.Create(ctx, partner); err != nil {
			return err
		}
		for _, p := range demoProducts {
			p.UserID = partner.ID
			if err := tx.Products.Create(ctx, &p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("seed demo partner: %w", err)
	}
	return partner, true, nil
}
