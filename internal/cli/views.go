package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rcliao/talkgraph/internal/analysis"
)

// view is a command that prints one slice of an analysis.
type view struct {
	use, short string
	json       func(*analysis.Result) interface{}
	text       func(io.Writer, *analysis.Result)
}

var views = []view{
	{
		use:   "turns",
		short: "Print turns, speaking time and turn statistics",
		json: func(r *analysis.Result) interface{} {
			return map[string]interface{}{
				"turns":         r.StoredTurns(),
				"speaking_time": r.SpeakingTime,
				"turn_stats":    r.TurnStats,
			}
		},
		text: printTurns,
	},
	{
		use:   "graph",
		short: "Print the interaction graph",
		json: func(r *analysis.Result) interface{} {
			return map[string]interface{}{
				"transitions":          r.Transitions,
				"response_graph":       r.ResponseGraph,
				"attractors":           r.Attractors,
				"gaps":                 r.Gaps,
				"agenda_introductions": r.Agenda,
				"inequality":           r.Inequality,
				"participation":        r.Participation,
			}
		},
		text: printGraph,
	},
	{
		use:   "interruptions",
		short: "Print overlaps, interruptions and floor outcomes",
		json:  func(r *analysis.Result) interface{} { return r.Interruptions },
		text:  printInterruptions,
	},
	{
		use:   "topics",
		short: "Print topic lifecycles and relational signals",
		json: func(r *analysis.Result) interface{} {
			return map[string]interface{}{
				"topics":     r.Topics,
				"relational": r.Relational,
			}
		},
		text: printTopics,
	},
}

func init() {
	for _, v := range views {
		cmd := &cobra.Command{
			Use:   v.use + " [transcript.json]",
			Short: v.short,
			Args:  cobra.ExactArgs(1),
			Run: func(cmd *cobra.Command, args []string) {
				embed, _ := cmd.Flags().GetBool("embed")
				cfg := loadConfig()
				res := analyzeFile(cmd.Context(), cfg, args[0], analyzeOptions{embed: embed})
				if textFormat() {
					v.text(cmd.OutOrStdout(), res)
					return
				}
				printJSON(cmd, v.json(res))
			},
		}
		cmd.Flags().Bool("embed", false, "Score similarity with the configured embedding provider")
		RootCmd.AddCommand(cmd)
	}
}

var heading = color.New(color.Bold)

func printSummary(cmd *cobra.Command, r *analysis.Result) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%d segments, %d turns, %.1fs, similarity %s\n\n", r.SegmentCount, len(r.Turns), r.MeetingDuration, r.Similarity)
	printTurns(w, r)
	printInterruptions(w, r)
	printTopics(w, r)
}

func printTurns(w io.Writer, r *analysis.Result) {
	heading.Fprintln(w, "Speaking time")
	for _, st := range r.SpeakingTime {
		fmt.Fprintf(w, "  %-12s %7.1fs %5.1f%%\n", st.Speaker, st.Seconds, st.Percentage)
	}
	heading.Fprintln(w, "Turns")
	for _, ts := range r.TurnStats {
		fmt.Fprintf(w, "  %-12s %4d turns, avg %.1fs\n", ts.Speaker, ts.Count, ts.AvgDuration)
	}
	fmt.Fprintln(w)
}

func printGraph(w io.Writer, r *analysis.Result) {
	heading.Fprintln(w, "Transitions")
	for _, t := range r.Transitions {
		fmt.Fprintf(w, "  %s -> %s  x%d  avg gap %.2fs\n", t.From, t.To, t.Count, t.AvgGap)
	}
	heading.Fprintln(w, "Attractors")
	for _, a := range r.Attractors {
		fmt.Fprintf(w, "  %-12s %d responses, %.1fs\n", a.Speaker, a.IncomingResponses, a.TotalResponseDuration)
	}
	fmt.Fprintf(w, "Gini %.3f, normalized entropy %.3f\n\n", r.Inequality.Gini, r.Inequality.NormalizedEntropy)
}

func printInterruptions(w io.Writer, r *analysis.Result) {
	rep := r.Interruptions
	heading.Fprintf(w, "Interruptions (%d), overlaps (%d)\n", len(rep.Interruptions), len(rep.Overlaps))
	for _, t := range rep.Tolerance {
		fmt.Fprintf(w, "  %-12s kept the floor %d/%d\n", t.Speaker, t.Maintained, t.Attempts)
	}
	fmt.Fprintln(w)
}

func printTopics(w io.Writer, r *analysis.Result) {
	heading.Fprintf(w, "Topics (%d)\n", len(r.Topics))
	for _, t := range r.Topics {
		fmt.Fprintf(w, "  %-9s %7.1fs %-12s %s  %s\n", t.ID, t.StartTime, t.Proposer, statusColor(t.Status), excerpt(t.Text, 60))
	}
	if len(r.Relational.Recycled) > 0 {
		heading.Fprintln(w, "Recycled")
		for _, p := range r.Relational.Recycled {
			fmt.Fprintf(w, "  %s (%s) -> %s (%s)  sim %.2f\n", p.OriginalTopic, p.OriginalProposer, p.RecycledTopic, p.RecycledProposer, p.Similarity)
		}
	}
	fmt.Fprintln(w)
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
