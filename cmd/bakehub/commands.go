package main

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/creamcroissant/bakehub/internal/bootstrap"
	"github.com/creamcroissant/bakehub/internal/migrations"
	"github.com/creamcroissant/bakehub/internal/query"
	"github.com/creamcroissant/bakehub/internal/service"
)

func init() {
	// Migrate
	var migrateStatus bool
	var migrateRollback bool
	var migrateCmd = &cobra.Command{
		Use:   "migrate [up|down|status]",
		Short: "Database migration management",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := bootstrap.OpenDatabase(cfg.DB)
			if err != nil {
				return err
			}
			fmt.Printf("Using DB path: %s\n", cfg.DB.Path)
			defer db.Close()

			if migrateStatus {
				return migrations.Status(db)
			}
			if migrateRollback {
				return migrations.Down(db)
			}

			action := "up"
			if len(args) > 0 {
				action = args[0]
			}

			switch action {
			case "up":
				return migrations.Up(db)
			case "down":
				return migrations.Down(db)
			case "status":
				return migrations.Status(db)
			default:
				return fmt.Errorf("unknown migrate action %q", action)
			}
		},
	}
	migrateCmd.Flags().BoolVar(&migrateStatus, "status", false, "Show migration status")
	migrateCmd.Flags().BoolVar(&migrateRollback, "rollback", false, "Rollback the last migration")
	rootCmd.AddCommand(migrateCmd)

	// Backup
	var backupOutput string
	var backupCompress bool
	var backupCmd = &cobra.Command{
		Use:   "backup",
		Short: "Backup database",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := backupOutput
			if target == "" {
				backupDir := filepath.Join(filepath.Dir(cfg.DB.Path), "backups")
				if err := os.MkdirAll(backupDir, 0o755); err != nil {
					return fmt.Errorf("create backup dir: %w", err)
				}
				ext := ".db"
				if backupCompress {
					ext += ".gz"
				}
				target = filepath.Join(backupDir, fmt.Sprintf("bakehub_%s%s", time.Now().Format("20060102_150405"), ext))
			}
			if err := runBackup(target, backupCompress); err != nil {
				return err
			}
			fmt.Printf("Backup created at %s\n", target)
			return nil
		},
	}
	backupCmd.Flags().StringVar(&backupOutput, "output", "", "Output file path")
	backupCmd.Flags().BoolVar(&backupCompress, "compress", false, "Compress output with gzip")
	rootCmd.AddCommand(backupCmd)

	// Restore
	var restoreCmd = &cobra.Command{
		Use:   "restore <backup-file>",
		Short: "Restore database from backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRestore(args[0], cfg.DB.Path)
		},
	}
	rootCmd.AddCommand(restoreCmd)

	// User
	var userCmd = &cobra.Command{
		Use:   "user",
		Short: "User management",
	}
	userCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(runUserList)
		},
	})

	var createUser service.AdminUserInput
	var createDemo bool
	var createUserCmd = &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Long: `Create an account. With --demo a baker account is registered instead and its
bakery is filled with sample customers, orders and gallery items.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if createDemo {
				return withApp(func(ctx context.Context, a *app) error {
					return runSeedDemo(ctx, a, createUser.Email, createUser.Password)
				})
			}
			if createUser.Email == "" || createUser.Password == "" {
				return fmt.Errorf("email and password are required")
			}
			return withApp(func(ctx context.Context, a *app) error {
				user, err := a.services.AdminUsers.Create(ctx, createUser)
				if err != nil {
					return fmt.Errorf("create user failed: %w", err)
				}
				fmt.Printf("User %s created (id %d).\n", user.Email, user.ID)
				return nil
			})
		},
	}
	createUserCmd.Flags().StringVar(&createUser.Email, "email", "", "User email")
	createUserCmd.Flags().StringVar(&createUser.Password, "password", "", "User password")
	createUserCmd.Flags().StringVar(&createUser.Name, "name", "", "Display name")
	createUserCmd.Flags().BoolVar(&createUser.IsAdmin, "admin", false, "Set as admin")
	createUserCmd.Flags().BoolVar(&createDemo, "demo", false, "Register a demo baker with sample data")
	userCmd.AddCommand(createUserCmd)

	var resetUserEmail, resetUserPassword string
	var resetPasswordCmd = &cobra.Command{
		Use:   "reset-password",
		Short: "Reset user password",
		RunE: func(cmd *cobra.Command, args []string) error {
			if resetUserEmail == "" || resetUserPassword == "" {
				return fmt.Errorf("email and password are required")
			}
			return withApp(func(ctx context.Context, a *app) error {
				user, err := a.store.Users().FindByEmail(ctx, resetUserEmail)
				if err != nil {
					return fmt.Errorf("user not found: %w", err)
				}
				if err := a.services.AdminUsers.ResetPassword(ctx, 0, user.ID, resetUserPassword); err != nil {
					return fmt.Errorf("reset password failed: %w", err)
				}
				fmt.Printf("Password reset for %s.\n", resetUserEmail)
				return nil
			})
		},
	}
	resetPasswordCmd.Flags().StringVar(&resetUserEmail, "email", "", "User email")
	resetPasswordCmd.Flags().StringVar(&resetUserPassword, "password", "", "New password")
	userCmd.AddCommand(resetPasswordCmd)

	userCmd.AddCommand(&cobra.Command{
		Use:   "disable <email>",
		Short: "Disable a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				return runUserStatus(ctx, a, args[0], false)
			})
		},
	})
	userCmd.AddCommand(&cobra.Command{
		Use:   "enable <email>",
		Short: "Enable a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				return runUserStatus(ctx, a, args[0], true)
			})
		},
	})
	rootCmd.AddCommand(userCmd)

	// Config
	var configCmd = &cobra.Command{
		Use:   "config",
		Short: "Runtime settings stored in the database",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "get [key]",
		Short: "Get a setting, or list them all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				if len(args) == 0 {
					return runConfigList(ctx, a)
				}
				setting, err := a.services.AdminSettings.Get(ctx, args[0])
				if err != nil {
					return fmt.Errorf("get config failed: %w", err)
				}
				fmt.Println(setting.Value)
				return nil
			})
		},
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				setting, err := a.services.AdminSettings.Set(ctx, 0, args[0], args[1])
				if err != nil {
					return fmt.Errorf("set config failed: %w", err)
				}
				fmt.Printf("Config %s set to %s.\n", setting.Key, setting.Value)
				return nil
			})
		},
	})
	rootCmd.AddCommand(configCmd)

	// Job
	var jobCmd = &cobra.Command{
		Use:   "job",
		Short: "Job management",
	}
	jobCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List scheduled jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				scheduler, err := a.scheduler()
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
				fmt.Fprintln(w, "Name\tSchedule")
				for _, entry := range scheduler.Entries() {
					fmt.Fprintf(w, "%s\t%s\n", entry.Name, entry.Spec)
				}
				return w.Flush()
			})
		},
	})
	jobCmd.AddCommand(&cobra.Command{
		Use:   "run <name>",
		Short: "Run a job manually",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				scheduler, err := a.scheduler()
				if err != nil {
					return err
				}
				fmt.Printf("Running job %s...\n", args[0])
				if err := scheduler.RunNow(ctx, args[0]); err != nil {
					return fmt.Errorf("job run failed: %w", err)
				}
				fmt.Println("Job completed successfully.")
				return nil
			})
		},
	})
	rootCmd.AddCommand(jobCmd)

	// Theme
	var themeCmd = &cobra.Command{
		Use:   "theme",
		Short: "Storefront theme catalog",
	}
	themeCmd.AddCommand(&cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Create or update themes from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			themes, err := service.DecodeThemes(f)
			if err != nil {
				return err
			}
			return withApp(func(ctx context.Context, a *app) error {
				written, err := a.services.AdminCatalog.ImportThemes(ctx, themes)
				fmt.Printf("Imported %d of %d themes.\n", written, len(themes))
				return err
			})
		},
	})
	themeCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List themes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				page, err := a.services.AdminCatalog.ListThemes(ctx, query.Descriptor{})
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
				fmt.Fprintln(w, "ID\tName\tDisplay Name\tFeatured")
				for _, theme := range page.Data {
					fmt.Fprintf(w, "%d\t%s\t%s\t%v\n", theme.ID, theme.Name, theme.DisplayName, theme.Featured)
				}
				return w.Flush()
			})
		},
	})
	rootCmd.AddCommand(themeCmd)

	// Version
	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("BakeHub %s\n", Version)
			fmt.Printf("Commit: %s\n", Commit)
			fmt.Printf("Build Time: %s\n", BuildTime)
		},
	}
	rootCmd.AddCommand(versionCmd)
}

func runUserList(ctx context.Context, a *app) error {
	page, err := a.services.AdminUsers.List(ctx, query.Descriptor{})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tEmail\tName\tAdmin\tStatus")
	for _, u := range page.Data {
		status := "active"
		if u.Status == 0 {
			status = "disabled"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%v\t%s\n", u.ID, u.Email, u.Name, u.IsAdmin, status)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if page.Total > int64(len(page.Data)) {
		fmt.Printf("(%d of %d users shown)\n", len(page.Data), page.Total)
	}
	return nil
}

func runUserStatus(ctx context.Context, a *app, email string, active bool) error {
	user, err := a.store.Users().FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("find user failed: %w", err)
	}
	if _, err := a.services.AdminUsers.SetStatus(ctx, 0, user.ID, active); err != nil {
		return fmt.Errorf("update user failed: %w", err)
	}
	action := "enabled"
	if !active {
		action = "disabled"
	}
	fmt.Printf("User %s %s.\n", email, action)
	return nil
}

func runConfigList(ctx context.Context, a *app) error {
	settings, err := a.services.AdminSettings.List(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "Key\tValue\tCategory")
	for _, s := range settings {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.Key, s.Value, s.Category)
	}
	return w.Flush()
}

func runBackup(target string, compress bool) error {
	db, err := bootstrap.OpenDatabase(cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	tempFile := target
	if compress {
		if strings.HasSuffix(target, ".gz") {
			tempFile = strings.TrimSuffix(target, ".gz")
		} else {
			tempFile = target + ".tmp"
		}
	}

	if _, err := db.Exec("VACUUM INTO ?", tempFile); err != nil {
		return fmt.Errorf("sqlite vacuum into: %w", err)
	}

	if compress {
		defer os.Remove(tempFile)
		if err := compressFile(tempFile, target); err != nil {
			return err
		}
	}
	return nil
}

func runRestore(backupPath, dbPath string) error {
	if _, err := os.Stat(backupPath); err != nil {
		return fmt.Errorf("backup file not found: %w", err)
	}

	// Keep the current database around in case the backup is bad.
	if _, err := os.Stat(dbPath); err == nil {
		bakPath := dbPath + ".pre_restore_" + time.Now().Format("20060102_150405")
		if err := copyFile(dbPath, bakPath); err != nil {
			return fmt.Errorf("failed to backup current db: %w", err)
		}
		fmt.Printf("Current database backed up to %s\n", bakPath)
	}

	sourceFile := backupPath
	if strings.HasSuffix(backupPath, ".gz") {
		tempSource := dbPath + ".restoring"
		if err := decompressFile(backupPath, tempSource); err != nil {
			return fmt.Errorf("decompress failed: %w", err)
		}
		sourceFile = tempSource
		defer os.Remove(tempSource)
	}

	if err := copyFile(sourceFile, dbPath); err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	// Stale WAL pages would otherwise be replayed over the restored file.
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", suffix, err)
		}
	}

	fmt.Println("Database restored successfully.")
	return nil
}

// File utils
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func compressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		return err
	}
	return gw.Close()
}

func decompressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	gr, err := gzip.NewReader(in)
	if err != nil {
		return err
	}
	defer gr.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, gr); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
