package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jose-valero/streambot/internal/infra/backend"
	"github.com/jose-valero/streambot/internal/infra/config"
	"github.com/jose-valero/streambot/internal/infra/logging"
	"github.com/jose-valero/streambot/internal/infra/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadStorage()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel, true)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx := context.Background()
	var stores *backend.Stores
	open := func() (*backend.Stores, error) {
		if stores != nil {
			return stores, nil
		}
		st, err := backend.Open(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		stores = st
		return st, nil
	}

	root := newRoot(open, logger)
	err = root.ExecuteContext(ctx)
	if stores != nil {
		_ = stores.Close(ctx)
	}
	if err != nil {
		logger.Fatal("failed to execute command", zap.Error(err))
	}
}

type opener func() (*backend.Stores, error)

func newRoot(open opener, logger *zap.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "botctl",
		Short:         "Operaciones sobre el estado persistido del bot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(MigrateCommand(open))
	root.AddCommand(AutoVocCommand(open, logger))
	root.AddCommand(ScheduleCommand(open, logger))
	root.AddCommand(GSCommand(open, logger))
	return root
}

func MigrateCommand(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones (Postgres; el backend las corre al abrir)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := open()
			if err != nil {
				return err
			}
			if st.Name != "postgres" {
				return errors.New("migrate needs DATABASE_URL")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func AutoVocCommand(open opener, logger *zap.Logger) *cobra.Command {
	cmd := &cobra.Command{Use: "autovoc"}
	cmd.AddCommand(&cobra.Command{
		Use: "status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := open()
			if err != nil {
				return err
			}
			s, err := storage.NewStateRepo(st.Docs).GetAutoVoc(cmd.Context())
			if errors.Is(err, storage.ErrNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "autovoc: never configured")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "autovoc: enabled=%t guild=%s channel=%s updated=%s\n",
				s.Enabled, s.GuildID, s.ChannelID, s.Timestamp.Format("2006-01-02 15:04:05"))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use: "disable",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := open()
			if err != nil {
				return err
			}
			if err := storage.NewStateRepo(st.Docs).DisableAutoVoc(cmd.Context()); err != nil {
				return err
			}
			logger.Info("autovoc disabled")
			fmt.Fprintln(cmd.OutOrStdout(), "autovoc disabled")
			return nil
		},
	})
	return cmd
}

func ScheduleCommand(open opener, logger *zap.Logger) *cobra.Command {
	cmd := &cobra.Command{Use: "schedule"}
	cmd.AddCommand(&cobra.Command{
		Use: "list",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := open()
			if err != nil {
				return err
			}
			items, err := st.Tasks.List(cmd.Context())
			if err != nil {
				return err
			}
			logger.Info("found scheduled tasks", zap.Int("count", len(items)))
			for _, t := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n",
					t.ID, t.ExecuteAt.Format("2006-01-02 15:04:05"), t.ChannelID, t.Command)
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use: "clear",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := open()
			if err != nil {
				return err
			}
			n, err := st.Tasks.DeleteAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d scheduled tasks\n", n)
			return nil
		},
	})
	return cmd
}

func GSCommand(open opener, logger *zap.Logger) *cobra.Command {
	cooldown := &cobra.Command{Use: "cooldown"}
	cooldown.AddCommand(&cobra.Command{
		Use: "show",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := open()
			if err != nil {
				return err
			}
			cd, err := storage.NewStateRepo(st.Docs).GetGSCooldown(cmd.Context())
			if err != nil {
				return err
			}
			if cd.LastRunAt.IsZero() {
				fmt.Fprintln(cmd.OutOrStdout(), "gs: never run")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "gs: last run %s\n", cd.LastRunAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	})
	cooldown.AddCommand(&cobra.Command{
		Use: "reset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := open()
			if err != nil {
				return err
			}
			if err := storage.NewStateRepo(st.Docs).ResetGSCooldown(cmd.Context()); err != nil {
				return err
			}
			logger.Info("gs cooldown reset")
			fmt.Fprintln(cmd.OutOrStdout(), "gs cooldown reset")
			return nil
		},
	})
	cmd := &cobra.Command{Use: "gs"}
	cmd.AddCommand(cooldown)
	return cmd
}
