package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hostellog/hostel-admin/internal/database"
	"github.com/hostellog/hostel-admin/internal/model"
	"github.com/hostellog/hostel-admin/internal/queue"
	"github.com/hostellog/hostel-admin/internal/repository"
	"github.com/hostellog/hostel-admin/internal/service"
)

type connectFunc func(ctx context.Context) (*env, error)

func newRootCmd(open connectFunc, prompt func() (string, error)) *cobra.Command {
	root := &cobra.Command{
		Use:           "hostelctl",
		Short:         "Maintenance commands for the hostel admin database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCmd(open),
		newCreateAdminCmd(open, prompt),
		newReconcileCmd(open),
	)
	return root
}

func newMigrateCmd(open connectFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables from the embedded schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			e, err := open(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := database.Migrate(ctx, e.DB); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d statements\n", len(database.Statements()))
			return nil
		},
	}
}

func newCreateAdminCmd(open connectFunc, prompt func() (string, error)) *cobra.Command {
	var email, name, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account that can see every hostel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				var err error
				if password, err = prompt(); err != nil {
					return err
				}
			}
			if len(password) < 8 {
				return fmt.Errorf("password must be at least 8 characters")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			e, err := open(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			u := model.User{FullName: name, Email: email, Role: model.RoleAdmin}
			if err := repository.NewUserRepo(e.DB).Create(ctx, &u, password, e.Cfg.BcryptCost); err != nil {
				return fmt.Errorf("create admin %s: %w", email, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (id %d)\n", u.Email, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newReconcileCmd(open connectFunc) *cobra.Command {
	var hostelID uint64
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Recount occupied beds and room status from guest assignments",
		Long: "Rewrites occupied_beds and status of every room (or every room of --hostel)\n" +
			"from the active guests assigned to it, and lists rooms holding more guests than beds.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()
			e, err := open(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			svc := service.NewOccupancyService(e.DB, repository.NewRoomRepo(e.DB), repository.NewFloorRepo(e.DB),
				repository.NewGuestRepo(e.DB), queue.NopPublisher{}, e.Log)
			rep, err := svc.Reconcile(ctx, hostelID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, rm := range rep.Repaired {
				fmt.Fprintf(out, "repaired room %s (hostel %d): %d/%d beds, %s\n",
					rm.RoomNumber, rm.HostelID, rm.OccupiedBeds, rm.SharingType, rm.Status)
			}
			for _, rm := range rep.Overbooked {
				fmt.Fprintf(out, "OVERBOOKED room %s (hostel %d): more active guests than its %d beds, fix assignments by hand\n",
					rm.RoomNumber, rm.HostelID, rm.SharingType)
			}
			fmt.Fprintf(out, "%d repaired, %d overbooked\n", len(rep.Repaired), len(rep.Overbooked))
			return nil
		},
	}
	cmd.Flags().Uint64Var(&hostelID, "hostel", 0, "limit to one hostel (default all)")
	return cmd
}
