package engine

import (
	"time"

	"github.com/warden/mod-bot/internal/actions"
	"github.com/warden/mod-bot/internal/config"
	"github.com/warden/mod-bot/internal/metrics"
	"github.com/warden/mod-bot/internal/model"
	"github.com/warden/mod-bot/internal/spam"
)

// Pipeline is the per-message evaluation entry point: it resolves the
// guild's configuration snapshot, walks its filters in priority order,
// stops at the first match, and renders that filter's actions.
type Pipeline struct {
	store     *config.Store
	evaluator *Evaluator
}

// NewPipeline creates a pipeline over the given config store and spam
// tracker.
func NewPipeline(store *config.Store, tracker *spam.Tracker) *Pipeline {
	return &Pipeline{
		store:     store,
		evaluator: NewEvaluator(tracker),
	}
}

// OnMessage evaluates one message. It returns the rendered action
// requests for the first matching filter together with its verdict, or
// (nil, NoMatch) when no filter objects or the guild has no
// configuration. Evaluation runs to completion; there is no cancellation
// inside the engine.
func (p *Pipeline) OnMessage(msg *model.MessageContext) ([]model.ActionRequest, model.Verdict) {
	start := time.Now()
	defer func() {
		metrics.EvalLatency.Observe(time.Since(start).Seconds())
	}()

	guild := p.store.Current().Guild(msg.GuildID)
	if guild == nil {
		metrics.MessagesTotal.WithLabelValues("unconfigured").Inc()
		return nil, model.NoMatch
	}

	for i := range guild.Filters {
		f := &guild.Filters[i]
		verdict := p.evaluator.Evaluate(f, msg)
		if !verdict.Matched {
			continue
		}

		metrics.MessagesTotal.WithLabelValues("matched").Inc()
		metrics.VerdictsTotal.WithLabelValues(msg.GuildID.String(), verdict.Filter, verdict.Rule).Inc()
		return actions.Execute(f.Actions, msg, verdict), verdict
	}

	metrics.MessagesTotal.WithLabelValues("clean").Inc()
	return nil, model.NoMatch
}
