package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"resume-analyzer/internal/models"
	"resume-analyzer/internal/services"
)

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReport(w io.Writer, r *models.AnalysisReport) {
	fmt.Fprintf(w, "Role:        %s\n", r.Role)
	fmt.Fprintf(w, "ATS score:   %.2f%%\n", r.ATSScore)
	fmt.Fprintf(w, "Skill match: %d%% (%d of %d, whole words)\n",
		r.SkillMatch.Percent, r.SkillMatch.MatchedCount, r.SkillMatch.TotalRequired)
	fmt.Fprintf(w, "Found:       %s\n", joinOrDash(r.Keywords.Found))
	fmt.Fprintf(w, "Missing:     %s\n", joinOrDash(r.Keywords.Missing))
	fmt.Fprintf(w, "Top skills:  %s\n", joinOrDash(r.TopSkills))

	fmt.Fprintln(w, "\nFeedback:")
	fmt.Fprintln(w, services.FeedbackText(r.Feedback))

	if len(r.AllScores) > 0 {
		fmt.Fprintln(w, "\nAll roles:")
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, name := range sortedKeys(r.AllScores) {
			fmt.Fprintf(tw, "  %s\t%.2f%%\n", name, r.AllScores[name])
		}
		_ = tw.Flush()
	}

	if r.GitHub != nil {
		fmt.Fprintln(w)
		if r.GitHub.OK() {
			printGitHub(w, r.GitHub.Stats)
		} else {
			fmt.Fprintf(w, "GitHub: %s\n", r.GitHub.Error)
		}
	}

	if r.AICoaching != "" {
		fmt.Fprintf(w, "\nAI suggestions:\n%s\n", r.AICoaching)
	}
}

func printGitHub(w io.Writer, s *models.GitHubProfileStats) {
	fmt.Fprintf(w, "GitHub %s: %d repositories, %d followers, %d contributions\n",
		s.Username, s.Repositories, s.Followers, s.Contributions)
	if len(s.TopLanguages) > 0 {
		langs := make([]string, 0, len(s.TopLanguages))
		for _, l := range s.TopLanguages {
			langs = append(langs, fmt.Sprintf("%s (%d)", l.Language, l.Bytes))
		}
		fmt.Fprintf(w, "Top languages: %s\n", strings.Join(langs, ", "))
	}
	for _, line := range s.Feedback {
		fmt.Fprintf(w, "- %s\n", line)
	}
}

func printHistory(w io.Writer, records []models.HistoryRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No saved analyses.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tROLE\tATS\tREPOS\tFOLLOWERS\tCONTRIBUTIONS\tPOINTS")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%d\t%d\t%d\t%d\n",
			r.Date, r.Role, r.ATSScore, r.Repositories, r.Followers, r.Contributions, r.Points)
	}
	_ = tw.Flush()
}

func printLeaderboard(w io.Writer, rows []models.LeaderboardRow) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "Leaderboard is empty.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tUSER\tAVG ATS\tCONTRIBUTIONS\tPOINTS")
	for i, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%d\t%d\n", i+1, r.Username, r.AvgATSScore, r.TotalContributions, r.TotalPoints)
	}
	_ = tw.Flush()
}

type batchSummary struct {
	Path     string   `json:"path"`
	ATSScore float64  `json:"ats_score"`
	Missing  []string `json:"missing,omitempty"`
	Error    string   `json:"error,omitempty"`
}

func batchSummaries(results []services.BatchResult) []batchSummary {
	out := make([]batchSummary, 0, len(results))
	for _, r := range results {
		s := batchSummary{Path: r.Job.Path}
		if r.Err != nil {
			s.Error = r.Err.Error()
		} else {
			s.ATSScore = r.Report.ATSScore
			s.Missing = r.Report.Keywords.Missing
		}
		out = append(out, s)
	}
	return out
}

// printBatch writes one line per file and returns the number of failures.
func printBatch(w io.Writer, results []services.BatchResult) int {
	failed := 0
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tATS\tMISSING")
	for _, s := range batchSummaries(results) {
		if s.Error != "" {
			failed++
			fmt.Fprintf(tw, "%s\terror\t%s\n", s.Path, s.Error)
			continue
		}
		fmt.Fprintf(tw, "%s\t%.2f\t%s\n", s.Path, s.ATSScore, joinOrDash(s.Missing))
	}
	_ = tw.Flush()
	return failed
}

func countFailures(results []services.BatchResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
