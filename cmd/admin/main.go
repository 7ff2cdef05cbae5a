// Package main provides operator utilities for DOMin8X: schema migration,
// seeding, the challenge status sweep and user listing.
package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"domin8x/internal/bootstrap"
	"domin8x/internal/config"
	"domin8x/internal/database"
	"domin8x/internal/events"
	"domin8x/internal/middleware"
	"domin8x/internal/notifications"
	"domin8x/internal/repository"
	"domin8x/internal/seed"
	"domin8x/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	cfg     *config.Config
	timeout time.Duration
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "admin",
		Short:        "DOMin8X operator utilities",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cfg, err = config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return nil
		},
	}
	root.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "abort the command after this long")

	root.AddCommand(migrateCmd(), seedCmd(), sweepCmd(), usersCmd())
	return root
}

// withRuntime opens the database (and Redis unless skipped) for one command.
func withRuntime(cmd *cobra.Command, skipRedis bool, fn func(ctx context.Context, db *gorm.DB, rdb *redis.Client) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	db, rdb, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{SkipRedis: skipRedis})
	if err != nil {
		return err
	}
	defer bootstrap.Close(db, rdb)
	return fn(ctx, db, rdb)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, true, func(ctx context.Context, db *gorm.DB, _ *redis.Client) error {
				if err := database.Migrate(ctx, db); err != nil {
					return err
				}
				fmt.Println("Schema is up to date")
				return nil
			})
		},
	}
}

func seedCmd() *cobra.Command {
	var (
		fakeUsers int
		fakePosts int
		fakeSeed  int64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo fixtures and optionally generate fake users and posts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, true, func(ctx context.Context, db *gorm.DB, _ *redis.Client) error {
				summary, err := seed.Seed(ctx, db)
				if err != nil {
					return err
				}
				fmt.Printf("Fixtures: %d users, %d posts, %d prompts, %d logos, %d challenges, %d leaderboard rows, %d projects\n",
					summary.Users, summary.Posts, summary.Prompts, summary.Logos, summary.Challenges, summary.Leaderboard, summary.Projects)

				if fakeUsers == 0 && fakePosts == 0 {
					return nil
				}
				factory, err := seed.NewFactory(db, fakeSeed)
				if err != nil {
					return err
				}
				users, err := factory.CreateUsers(ctx, max(fakeUsers, 1))
				if err != nil {
					return err
				}
				posts, err := factory.CreatePosts(ctx, users, fakePosts)
				if err != nil {
					return err
				}
				fmt.Printf("Generated %d users and %d posts\n", len(users), posts)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&fakeUsers, "fake-users", 0, "number of generated users to add")
	cmd.Flags().IntVar(&fakePosts, "fake-posts", 0, "number of generated posts spread across the generated users")
	cmd.Flags().Int64Var(&fakeSeed, "fake-seed", 0, "random seed for generated data (0 picks one)")
	return cmd
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Advance challenge statuses by date and announce the changes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, false, func(ctx context.Context, db *gorm.DB, rdb *redis.Client) error {
				broker := events.NewBroker()
				// Connected API instances pick the transitions up from Redis.
				if rdb != nil {
					broker.SetRelay(notifications.NewNotifier(rdb))
				}
				svc := service.NewChallengeService(repository.NewChallengeRepository(db), broker)
				changed, err := svc.Sweep(ctx)
				if err != nil {
					return err
				}
				middleware.Logger.Info("challenge sweep finished", "changed", changed)
				fmt.Printf("%d challenge(s) changed status\n", changed)
				return nil
			})
		},
	}
}

func usersCmd() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List registered users",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, true, func(ctx context.Context, db *gorm.DB, _ *redis.Client) error {
				svc := service.NewUserService(repository.NewUserRepository(db), repository.NewPreferenceRepository(db), nil, nil)
				users, err := svc.ListUsers(ctx, limit, offset)
				if err != nil {
					return err
				}
				if len(users) == 0 {
					fmt.Println("No users found")
					return nil
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				_, _ = fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tPOSTS\tFOLLOWERS\tVERIFIED")
				for _, u := range users {
					_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%t\n",
						u.ID, u.Username, u.Email, u.PostsCount, u.FollowersCount, u.Verified)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum users to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "users to skip")
	return cmd
}
