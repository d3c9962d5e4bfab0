package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nextstep/gift/internal/database"
	"github.com/nextstep/gift/internal/domain/members"
	"github.com/nextstep/gift/internal/storage/sqlstore"
)

func newSeedCommand(e *env) *cobra.Command {
	var (
		email    string
		password string
		points   int64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Migrate, load the sample catalog and create a member with points",
		Long: `Migrate, load the sample catalog and create a member with points.

Running seed again leaves an existing catalog alone and only tops the member
up to --points, so it is safe to repeat.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := e.db.RunMigrations(ctx); err != nil {
				return err
			}

			if err := loadCatalog(ctx, e); err != nil {
				return err
			}

			svc := members.NewService(sqlstore.NewDomainOptions(e.db.DB).MemberRepo)
			member, err := svc.Create(ctx, email, password)
			switch {
			case errors.Is(err, members.ErrEmailExists):
				member, err = svc.FindByEmail(ctx, email)
				if err != nil {
					return err
				}
			case err != nil:
				return err
			}

			if member.Point < points {
				if member, err = svc.ChargePoint(ctx, member.ID, points-member.Point); err != nil {
					return err
				}
			}

			e.logger.Info("seed complete", "member_id", member.ID, "email", member.Email, "point", member.Point)
			fmt.Fprintf(cmd.OutOrStdout(), "member %s has %d points\n", member.Email, member.Point)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "sender@test.com", "email of the seeded member")
	cmd.Flags().StringVar(&password, "password", "password", "password of the seeded member")
	cmd.Flags().Int64Var(&points, "points", 10_000_000, "minimum point balance of the seeded member")
	return cmd
}

// loadCatalog runs the fixture scripts unless a catalog is already present.
// The fixtures insert fixed ids, so a second run would hit duplicate keys.
func loadCatalog(ctx context.Context, e *env) error {
	var categories int
	if err := e.db.GetContext(ctx, &categories, "SELECT COUNT(*) FROM categories"); err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if categories > 0 {
		e.logger.Info("catalog already present, skipping fixtures", "categories", categories)
		return nil
	}
	return database.NewScriptRunner(e.db, database.Fixtures(), e.logger).RunAll(ctx)
}
