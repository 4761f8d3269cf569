package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/buildhub-th/procure-backend/internal/auth"
	"github.com/buildhub-th/procure-backend/internal/logging"
	"github.com/buildhub-th/procure-backend/internal/users/domain"
	"github.com/buildhub-th/procure-backend/internal/users/repository"
)

// errDuplicates makes the process exit 1 without an extra error line; the
// report itself has already been printed.
var errDuplicates = errors.New("duplicate profile keys found")

var (
	profilesCmd = &cobra.Command{
		Use:   "profiles",
		Short: "User profile maintenance",
	}

	profilesCheckCmd = &cobra.Command{
		Use:   "check",
		Short: "Report phone numbers and LINE user IDs shared by more than one profile",
		RunE:  runProfilesCheck,
	}
)

func init() {
	profilesCmd.AddCommand(profilesCheckCmd)
}

func runProfilesCheck(cmd *cobra.Command, args []string) error {
	ctx := logging.WithContext(cmd.Context(), logger)

	app, err := auth.InitializeFirebase(ctx, cfg.Firebase)
	if err != nil {
		return err
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return fmt.Errorf("firestore client: %w", err)
	}
	defer func() { _ = client.Close() }()

	return checkProfiles(ctx, repository.NewProfileRepository(client), cmd.OutOrStdout())
}

type profileLister interface {
	All(ctx context.Context) ([]*domain.UserProfile, error)
}

func checkProfiles(ctx context.Context, profiles profileLister, out io.Writer) error {
	all, err := profiles.All(ctx)
	if err != nil {
		return fmt.Errorf("list profiles: %w", err)
	}

	dups := domain.FindDuplicates(all)
	if dups.Empty() {
		fmt.Fprintf(out, "checked %d profiles: no duplicates\n", len(all))
		return nil
	}

	report(out, "phoneNumber", dups.Phones)
	report(out, "lineUserId", dups.LineIDs)
	logger.Warn("duplicate profile keys",
		zap.Int("profiles", len(all)),
		zap.Int("phones", len(dups.Phones)),
		zap.Int("line_ids", len(dups.LineIDs)),
	)
	return errDuplicates
}

func report(out io.Writer, field string, groups map[string][]string) {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "duplicate %s %q: %v\n", field, k, groups[k])
	}
}
