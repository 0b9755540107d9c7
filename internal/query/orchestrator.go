package query

import (
	"context"

	"go.uber.org/zap"

	"github.com/docex-labs/stakeholder-cli/internal/model"
)

// Orchestrator routes questions between the precise and semantic paths. The
// classifier picks the primary; when the primary fails with a fallback
// trigger the other path runs exactly once. Any other error surfaces as-is.
type Orchestrator struct {
	classifier *Classifier
	graphPath  *GraphPath
	semantic   *SemanticPath
	logger     *zap.Logger
}

func NewOrchestrator(classifier *Classifier, graphPath *GraphPath, semantic *SemanticPath) *Orchestrator {
	if classifier == nil {
		classifier = NewClassifier()
	}
	return &Orchestrator{
		classifier: classifier,
		graphPath:  graphPath,
		semantic:   semantic,
		logger:     zap.L().Named("query"),
	}
}

// Ask answers a question. The answer's trace covers every step taken, the
// abandoned primary path included. When both paths fail the error is a
// NoAnswerError carrying that full trace.
func (o *Orchestrator) Ask(ctx context.Context, question string) (*model.Answer, error) {
	verdict := o.classifier.Classify(question)

	trace := model.QueryTrace{}.Step("classify", "routed the question", map[string]any{
		"route":      string(verdict.Route),
		"confidence": verdict.Confidence,
		"pattern":    verdict.Pattern,
		"default":    verdict.Default,
	})

	answer, trace, err := o.run(ctx, verdict.Route, question, trace)
	if err == nil {
		return answer, nil
	}
	if !fallbackTrigger(err) {
		return nil, err
	}

	fallbackRoute := otherRoute(verdict.Route)
	o.logger.Info("primary path found nothing, falling back",
		zap.String("question", question),
		zap.String("primary", string(verdict.Route)),
		zap.String("fallback", string(fallbackRoute)),
	)
	trace = trace.Step("fallback", "primary path found nothing", map[string]any{
		"from":   string(verdict.Route),
		"to":     string(fallbackRoute),
		"reason": err.Error(),
	})

	answer, trace, err = o.run(ctx, fallbackRoute, question, trace)
	if err == nil {
		return answer, nil
	}
	if fallbackTrigger(err) {
		trace = trace.Step("no_answer", "both paths found nothing", map[string]any{
			"reason": err.Error(),
		})
		return nil, &NoAnswerError{Question: question, Trace: trace}
	}
	return nil, err
}

func (o *Orchestrator) run(ctx context.Context, route model.QueryRoute, question string, trace model.QueryTrace) (*model.Answer, model.QueryTrace, error) {
	if route == model.RoutePrecise {
		return o.graphPath.Answer(ctx, question, trace)
	}
	return o.semantic.Answer(ctx, question, trace)
}

func otherRoute(route model.QueryRoute) model.QueryRoute {
	if route == model.RoutePrecise {
		return model.RouteSemantic
	}
	return model.RoutePrecise
}
