package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"familytree/internal/legacy"
	"familytree/internal/models"
	"familytree/internal/service"
)

var (
	membersFile  string
	branchesFile string
	dryRun       bool
	templateOut  string

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Import members and branches exported by the branch-based system",
		Long: `Reads members and (optionally) branches from JSON or XLSX files and
creates people, families and relationships. Records created before a failure
are kept; inspect the store before running again.`,
		RunE: runMigrate,
	}

	legacyTemplateCmd = &cobra.Command{
		Use:   "legacy-template",
		Short: "Write an empty XLSX workbook with the legacy member and branch columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Create(templateOut)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", templateOut, err)
			}
			if err := legacy.WriteTemplate(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Template written to %s\n", templateOut)
			return nil
		},
	}
)

func init() {
	migrateCmd.Flags().StringVar(&membersFile, "members", "", "members file (.json or .xlsx)")
	migrateCmd.Flags().StringVar(&branchesFile, "branches", "", "branches file (.json or .xlsx)")
	migrateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print a preview without writing anything")
	_ = migrateCmd.MarkFlagRequired("members")

	legacyTemplateCmd.Flags().StringVarP(&templateOut, "output", "o", "familytree-legacy.xlsx", "output file")
}

func readLegacy() ([]models.LegacyMember, []models.LegacyBranch, error) {
	f, err := os.Open(membersFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open members file: %w", err)
	}
	defer f.Close()
	members, err := legacy.ReadMembers(membersFile, f)
	if err != nil {
		return nil, nil, err
	}

	if branchesFile == "" {
		return members, nil, nil
	}
	bf, err := os.Open(branchesFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open branches file: %w", err)
	}
	defer bf.Close()
	branches, err := legacy.ReadBranches(branchesFile, bf)
	if err != nil {
		return nil, nil, err
	}
	return members, branches, nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	members, branches, err := readLegacy()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	migrator := service.NewMigrationService(a.relationships, logger)
	out := cmd.OutOrStdout()

	if dryRun {
		p := migrator.Preview(members, branches)
		fmt.Fprintf(out, "People:             %d\n", p.People)
		fmt.Fprintf(out, "Branches:           %d\n", p.Branches)
		fmt.Fprintf(out, "Without a branch:   %d\n", p.Unassigned)
		fmt.Fprintf(out, "Estimated families: %d\n", p.EstimatedFamilies)
		return nil
	}

	result, err := migrator.Migrate(ctx, members, branches)
	if result != nil {
		fmt.Fprintf(out, "Created %d people, %d families and %d relationships\n",
			result.PeopleCreated, result.FamiliesCreated, result.RelationshipsCreated)
	}
	if err != nil {
		return fmt.Errorf("migration stopped, inspect the store before retrying: %w", err)
	}
	return nil
}
