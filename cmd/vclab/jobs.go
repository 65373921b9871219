package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"vclab/internal/database"
)

const (
	// Default timeout for database operations
	defaultTimeout = 30 * time.Second
	// Default database directory path
	defaultDatabaseDir = "/database"
	databaseFile       = "vclab.db"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect or prune the server's job history",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded jobs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runJobsList,
}

var jobsPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete jobs older than a given age",
	Args:  cobra.NoArgs,
	RunE:  runJobsPurge,
}

func init() {
	databaseDir := os.Getenv("DATABASE_DIR")
	if databaseDir == "" {
		databaseDir = defaultDatabaseDir
	}
	jobsCmd.PersistentFlags().String("database-dir", databaseDir, "Directory holding "+databaseFile+" (env DATABASE_DIR)")

	jobsListCmd.Flags().Int("limit", database.DefaultListLimit, "Maximum number of jobs to list")
	jobsPurgeCmd.Flags().Duration("older-than", 30*24*time.Hour, "Delete jobs created before now minus this age")
	jobsPurgeCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	jobsCmd.AddCommand(jobsListCmd, jobsPurgeCmd)
	rootCmd.AddCommand(jobsCmd)
}

// openDatabase opens the job database and returns a context that is
// cancelled on SIGINT or SIGTERM.
func openDatabase(cmd *cobra.Command) (*database.Database, context.Context, func(), error) {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)

	dir, _ := cmd.Flags().GetString("database-dir")
	db, err := database.New(ctx, filepath.Join(dir, databaseFile))
	if err != nil {
		stop()
		return nil, nil, nil, fmt.Errorf("failed to connect to database (check --database-dir, current: %s): %w", dir, err)
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
		}
		stop()
	}
	return db, ctx, cleanup, nil
}

func runJobsList(cmd *cobra.Command, _ []string) error {
	db, ctx, cleanup, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	limit, _ := cmd.Flags().GetInt("limit")
	jobs, err := db.ListJobs(ctx, limit)
	if err != nil {
		return err
	}

	return emit(cmd, jobs, func(w io.Writer) {
		printJobs(w, jobs)
	})
}

func printJobs(w io.Writer, jobs []database.Job) {
	if len(jobs) == 0 {
		fmt.Fprintln(w, "No jobs recorded.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tOPERATION\tSTATUS\tDURATION\tINPUT\tOUTPUTS")
	for _, j := range jobs {
		input := j.Input
		if input == "" {
			input = "-"
		}
		outputs := strings.Join(j.Outputs, ",")
		if outputs == "" {
			outputs = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			j.ID,
			j.CreatedAt.Local().Format(time.DateTime),
			j.Operation,
			j.Status,
			(time.Duration(j.DurationMs) * time.Millisecond).String(),
			input,
			outputs,
		)
	}
	tw.Flush()
}

func runJobsPurge(cmd *cobra.Command, _ []string) error {
	age, _ := cmd.Flags().GetDuration("older-than")
	if age < 0 {
		return fmt.Errorf("--older-than must not be negative, got %s", age)
	}
	before := time.Now().Add(-age)

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes && term.IsTerminal(int(os.Stdin.Fd())) {
		ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(),
			fmt.Sprintf("Delete all jobs created before %s?", before.Format(time.DateTime)))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	db, ctx, cleanup, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	removed, err := db.PurgeJobs(ctx, before)
	if err != nil {
		return err
	}

	result := struct {
		Removed int64     `json:"removed"`
		Before  time.Time `json:"before"`
	}{removed, before}
	return emit(cmd, result, func(w io.Writer) {
		fmt.Fprintf(w, "Removed %d job(s).\n", removed)
	})
}

// confirm asks a yes/no question; anything but y or yes is a no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
