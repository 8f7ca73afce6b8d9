package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"resume-analyzer/internal/services"
)

var (
	analyzeRole   string
	analyzeGitHub string
	analyzeSave   bool
	batchWorkers  int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <resume.pdf|resume.docx>",
	Short: "Score a resume against a job role",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

var batchCmd = &cobra.Command{
	Use:   "batch <resume>...",
	Short: "Score several resumes against one job role",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBatch,
}

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List the configured job roles",
	Args:  cobra.NoArgs,
	RunE:  runRoles,
}

var githubCmd = &cobra.Command{
	Use:   "github <username>",
	Short: "Show public GitHub activity for a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runGitHub,
}

var historyCmd = &cobra.Command{
	Use:   "history <username>",
	Short: "List saved analyses for a user, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the top ten users by average ATS score",
	Args:  cobra.NoArgs,
	RunE:  runLeaderboard,
}

var clearCmd = &cobra.Command{
	Use:   "clear <username>",
	Short: "Delete every saved analysis of a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runClear,
}

var recalcCmd = &cobra.Command{
	Use:   "recalc",
	Short: "Fill points for history rows that predate scoring",
	Args:  cobra.NoArgs,
	RunE:  runRecalc,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeRole, "role", "r", "", "Job role to score against (required)")
	analyzeCmd.Flags().StringVarP(&analyzeGitHub, "github", "g", "", "GitHub username to include")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "Save the result to history under the GitHub username")
	_ = analyzeCmd.MarkFlagRequired("role")

	batchCmd.Flags().StringVarP(&analyzeRole, "role", "r", "", "Job role to score against (required)")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 4, "Number of files analyzed concurrently")
	_ = batchCmd.MarkFlagRequired("role")

	rootCmd.AddCommand(analyzeCmd, batchCmd, rolesCmd, githubCmd, historyCmd, leaderboardCmd, clearCmd, recalcCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	doc, err := services.LoadDocument(args[0])
	if err != nil {
		return err
	}

	report, err := a.analyzer.AnalyzeResume(cmd.Context(), services.AnalysisInput{
		Document:       doc,
		Role:           analyzeRole,
		GitHubUsername: analyzeGitHub,
	})
	if err != nil {
		return err
	}

	if !analyzeSave {
		if jsonOutput {
			return printJSON(os.Stdout, report)
		}
		printReport(os.Stdout, report)
		return nil
	}

	record, _, err := a.analyzer.RecordSnapshot(cmd.Context(), "", report, analyzeGitHub)
	if err != nil {
		return fmt.Errorf("analysis done but not saved: %w", err)
	}
	if jsonOutput {
		return printJSON(os.Stdout, map[string]interface{}{"report": report, "record": record})
	}
	printReport(os.Stdout, report)
	fmt.Fprintf(os.Stdout, "\nSaved as #%d (%d points)\n", record.ID, record.Points)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	w := services.NewWorker(a.analyzer, batchWorkers, a.log)
	w.Start(cmd.Context())
	for _, path := range args {
		w.EnqueueJob(services.BatchJob{Path: path, Role: analyzeRole})
	}
	results := w.Stop()

	var failed int
	if jsonOutput {
		if err := printJSON(os.Stdout, batchSummaries(results)); err != nil {
			return err
		}
		failed = countFailures(results)
	} else {
		failed = printBatch(os.Stdout, results)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d resumes failed", failed, len(results))
	}
	return nil
}

func runRoles(_ *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	roles := a.analyzer.Roles()
	if jsonOutput {
		return printJSON(os.Stdout, roles)
	}
	for _, name := range services.RoleNames(roles) {
		fmt.Fprintf(os.Stdout, "%s: %v\n", name, roles[name])
	}
	return nil
}

func runGitHub(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.github.AnalyzeProfile(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(os.Stdout, stats)
	}
	printGitHub(os.Stdout, stats)
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.history.GetHistory(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(os.Stdout, records)
	}
	printHistory(os.Stdout, records)
	return nil
}

func runLeaderboard(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	rows, err := a.history.GetLeaderboard(cmd.Context())
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(os.Stdout, rows)
	}
	printLeaderboard(os.Stdout, rows)
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	deleted, err := a.history.ClearHistory(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Deleted %d record(s) for %s\n", deleted, args[0])
	return nil
}

func runRecalc(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	updated, err := a.history.RecalcAllPoints(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Updated points on %d record(s)\n", updated)
	return nil
}
