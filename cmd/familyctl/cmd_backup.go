package main

import (
	"bytes"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"familytree/internal/blob"
	"familytree/internal/service"
)

var (
	backupOutput string
	backupInput  string

	backupCmd = &cobra.Command{
		Use:   "backup",
		Short: "Export or import every stored document",
	}

	backupExportCmd = &cobra.Command{
		Use:   "export",
		Short: "Export a JSON backup to a file or s3://bucket/key",
		Long: `Exports people, families and relationships, archived records included.
Without --output the backup goes to BACKUP_S3_BUCKET when set, otherwise to a
timestamped file in the working directory.`,
		Args: cobra.NoArgs,
		RunE: runBackupExport,
	}

	backupImportCmd = &cobra.Command{
		Use:   "import",
		Short: "Import a JSON backup from a file or s3://bucket/key",
		Long:  `Upserts every document under its original id. Importing twice is harmless.`,
		Args:  cobra.NoArgs,
		RunE:  runBackupImport,
	}
)

func init() {
	backupExportCmd.Flags().StringVarP(&backupOutput, "output", "o", "", "file path or s3://bucket/key")
	backupImportCmd.Flags().StringVarP(&backupInput, "input", "i", "", "file path or s3://bucket/key")
	_ = backupImportCmd.MarkFlagRequired("input")
	backupCmd.AddCommand(backupExportCmd, backupImportCmd)
}

func s3Config() blob.S3Config {
	return blob.S3Config{
		Region:    cfg.BackupRegion,
		Endpoint:  cfg.BackupEndpoint,
		PathStyle: cfg.BackupPathStyle,
	}
}

// defaultBackupLocation names a timestamped backup in the configured bucket
// or the working directory
func defaultBackupLocation(now time.Time) string {
	name := fmt.Sprintf("familytree-backup-%s.json", now.UTC().Format("20060102-150405"))
	if cfg.BackupBucket != "" {
		return "s3://" + cfg.BackupBucket + "/" + name
	}
	return name
}

func runBackupExport(cmd *cobra.Command, args []string) error {
	location := backupOutput
	if location == "" {
		location = defaultBackupLocation(time.Now())
	}
	target, err := blob.ParseTarget(location)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	var buf bytes.Buffer
	stats, err := service.NewBackupService(a.store, logger).Export(ctx, &buf)
	if err != nil {
		return err
	}

	dst, err := blob.Open(ctx, target, s3Config())
	if err != nil {
		return err
	}
	if err := dst.Put(ctx, target.Key, &buf, "application/json"); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d people, %d families and %d relationships to %s\n",
		stats.People, stats.Families, stats.Relationships, location)
	return nil
}

func runBackupImport(cmd *cobra.Command, args []string) error {
	target, err := blob.ParseTarget(backupInput)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	src, err := blob.Open(ctx, target, s3Config())
	if err != nil {
		return err
	}
	rc, err := src.Get(ctx, target.Key)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", backupInput, err)
	}
	defer rc.Close()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := service.NewBackupService(a.store, logger).Import(ctx, rc)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d people, %d families and %d relationships\n",
		stats.People, stats.Families, stats.Relationships)
	return nil
}
