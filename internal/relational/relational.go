// Package relational derives power signals from tracked topics: who closes
// topics, who is held to account, whose ideas get recycled, and how responses
// reframe what was proposed.
package relational

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/rcliao/talkgraph/internal/config"
	"github.com/rcliao/talkgraph/internal/model"
	"github.com/rcliao/talkgraph/internal/similarity"
	"github.com/rcliao/talkgraph/internal/turn"
)

// excerptRunes bounds the texts copied into hijack events.
const excerptRunes = 200

// Analyzer runs the relational analyzers. Every method is a pure function of
// its arguments, so one Analyzer may serve concurrent calls.
type Analyzer struct {
	Engine      *similarity.Engine
	Config      config.Relational
	Orientation config.Orientation
}

// New returns an analyzer over engine with the given thresholds.
func New(engine *similarity.Engine, cfg config.Relational, orientation config.Orientation) *Analyzer {
	return &Analyzer{Engine: engine, Config: cfg, Orientation: orientation}
}

// Analyze runs every analyzer concurrently. Each goroutine owns one field of
// the report.
func (a *Analyzer) Analyze(ctx context.Context, topics []model.Topic, idx *turn.Index) (model.RelationalReport, error) {
	var r model.RelationalReport
	g, ctx := errgroup.WithContext(ctx)
	run := func(fn func()) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn()
			return nil
		})
	}
	run(func() {
		r.Closures = a.Closures(topics, idx)
		r.ClosureAuthority = ClosureAuthority(r.Closures)
	})
	run(func() { r.Accountability = a.Accountability(topics, idx) })
	run(func() { r.Recycled = a.Recycling(topics) })
	run(func() { r.Hijackings = a.Hijacking(topics) })
	run(func() { r.Orientations = a.Orientations(topics, idx.Turns()) })
	run(func() { r.Engagement = Engagement(topics) })
	if err := g.Wait(); err != nil {
		return model.RelationalReport{}, err
	}
	return r, nil
}

// Closures finds topics abandoned after they end. The first turn by someone
// other than the proposer within the closure window shifts the topic when it
// scores below the closure threshold; later turns that also stay away from the
// topic are followers.
func (a *Analyzer) Closures(topics []model.Topic, idx *turn.Index) []model.ClosureEvent {
	out := []model.ClosureEvent{}
	for _, t := range topics {
		window := idx.After(t.EndTime, a.Config.ClosureWindow)
		first := -1
		for k, j := range window {
			if idx.Turn(j).Speaker != t.Proposer {
				first = k
				break
			}
		}
		if first < 0 || idx.Text(window[first]) == "" {
			continue
		}

		shift := idx.Turn(window[first])
		sim := a.Engine.Pair(t.Text, idx.Text(window[first]))
		if sim >= a.Config.ClosureThreshold {
			continue
		}

		followers := []model.Follower{}
		rest := window[first+1:]
		rest = rest[:min(len(rest), a.Config.ClosureFollowers)]
		for _, j := range rest {
			text := idx.Text(j)
			if text == "" {
				continue
			}
			if s := a.Engine.Pair(t.Text, text); s < a.Config.ClosureThreshold {
				followers = append(followers, model.Follower{
					Speaker:              idx.Turn(j).Speaker,
					Time:                 idx.Turn(j).Start,
					SimilarityToOldTopic: s,
				})
			}
		}

		out = append(out, model.ClosureEvent{
			ClosedTopic:             t.ID,
			ClosedBy:                t.Proposer,
			ShiftedBy:               shift.Speaker,
			ShiftTime:               shift.Start,
			ClosureDelay:            shift.Start - t.EndTime,
			SimilarityToClosedTopic: sim,
			Followers:               followers,
			FollowersCount:          len(followers),
			Uncontested:             len(followers) > 0,
		})
	}
	return out
}

// ClosureAuthority counts shifts per shifting speaker, sorted by shifts
// descending then speaker.
func ClosureAuthority(closures []model.ClosureEvent) []model.ClosureAuthority {
	acc := make(map[string]*model.ClosureAuthority)
	for _, c := range closures {
		ca, ok := acc[c.ShiftedBy]
		if !ok {
			ca = &model.ClosureAuthority{Speaker: c.ShiftedBy}
			acc[c.ShiftedBy] = ca
		}
		ca.Shifts++
		if c.Uncontested {
			ca.Uncontested++
		}
	}
	out := make([]model.ClosureAuthority, 0, len(acc))
	for _, ca := range acc {
		out = append(out, *ca)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Shifts != out[j].Shifts {
			return out[i].Shifts > out[j].Shifts
		}
		return out[i].Speaker < out[j].Speaker
	})
	return out
}

func excerpt(s string) string {
	r := []rune(s)
	if len(r) <= excerptRunes {
		return s
	}
	return string(r[:excerptRunes])
}

// contains reports whether text includes any phrase. Both are lowercase.
func contains(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}
