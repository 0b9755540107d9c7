package query

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/docex-labs/stakeholder-cli/internal/graph"
	"github.com/docex-labs/stakeholder-cli/internal/model"
)

// findLimit bounds listing queries.
const findLimit = 50

type graphIntent string

const (
	intentCount  graphIntent = "count"
	intentRoleOf graphIntent = "role_of"
	intentFind   graphIntent = "find"
)

var (
	countRe        = regexp.MustCompile(`(?i)\b(how many|count)\b`)
	roleOfRe       = regexp.MustCompile(`(?i)\b(?:role|position)\s+of\s+([\w .'-]+?)\??$`)
	explicitTypeRe = regexp.MustCompile(`(?i)\bof type\s+"?([\w-]+)"?`)
	wordRe         = regexp.MustCompile(`[\p{L}\p{N}']+`)
)

// GraphPath compiles a question into a stakeholder query, executes it and
// renders the rows as a prose answer. Questions with terms the vocabulary
// cannot map, and queries that match nothing, fail with fallback-trigger
// errors so the semantic path gets a chance.
type GraphPath struct {
	store graph.Store
	vocab *Vocabulary
}

func NewGraphPath(store graph.Store, vocab *Vocabulary) *GraphPath {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &GraphPath{store: store, vocab: vocab}
}

// Answer runs the precise path. The returned trace extends the one passed
// in; on error the trace-so-far is returned alongside so the orchestrator
// keeps the steps of an abandoned path.
func (g *GraphPath) Answer(ctx context.Context, question string, trace model.QueryTrace) (*model.Answer, model.QueryTrace, error) {
	intent, subject := detectIntent(question)
	trace = trace.Step("parse_intent", "detected graph query intent", map[string]any{
		"intent":  string(intent),
		"subject": subject,
	})

	conds, args, err := g.buildConditions(question, intent, subject)
	if err != nil {
		return nil, trace, err
	}

	queryText := buildQuery(intent, conds)
	trace = trace.Step("build_query", "generated graph query", map[string]any{
		"query": queryText,
		"args":  args,
	})

	rs, err := g.store.ExecuteQuery(ctx, queryText, args...)
	if err != nil {
		return nil, trace, err
	}
	trace = trace.Step("execute_query", "ran query against the stakeholder graph", map[string]any{
		"rows": len(rs.Rows),
	})

	if intent != intentCount && rs.Empty() {
		return nil, trace, &NoRelevantContextError{Question: question}
	}

	text, evidence := renderResult(intent, rs)
	return &model.Answer{
		Text:     text,
		Method:   model.RoutePrecise,
		Evidence: evidence,
		Trace:    trace,
	}, trace, nil
}

// detectIntent picks the query shape and, for role lookups, the subject
// name.
func detectIntent(question string) (graphIntent, string) {
	if m := roleOfRe.FindStringSubmatch(question); m != nil {
		return intentRoleOf, strings.TrimSpace(m[1])
	}
	if countRe.MatchString(question) {
		return intentCount, ""
	}
	return intentFind, ""
}

// buildConditions maps question terms onto graph field conditions. An
// explicit "of type X" with an unknown X is unmappable; incidental words
// that miss the vocabulary are simply ignored.
func (g *GraphPath) buildConditions(question string, intent graphIntent, subject string) ([]string, []any, error) {
	var conds []string
	var args []any

	if m := explicitTypeRe.FindStringSubmatch(question); m != nil {
		mapping, ok := g.vocab.Lookup(m[1])
		if !ok || mapping.Field != "type" {
			return nil, nil, &UnmappableTermError{Term: m[1]}
		}
		conds = append(conds, "type = ?")
		args = append(args, mapping.Value)
	}

	if intent == intentRoleOf {
		conds = append(conds, "lower(name) LIKE ?")
		args = append(args, "%"+strings.ToLower(subject)+"%")
		return conds, args, nil
	}

	seen := map[string]bool{}
	for _, word := range wordRe.FindAllString(question, -1) {
		mapping, ok := g.vocab.Lookup(word)
		if !ok {
			continue
		}
		key := mapping.Field + "=" + mapping.Value
		if seen[key] {
			continue
		}
		seen[key] = true

		switch mapping.Match {
		case "equals":
			// An explicit "of type X" already fixed the type filter.
			if mapping.Field == "type" && containsCond(conds, "type = ?") {
				continue
			}
			conds = append(conds, mapping.Field+" = ?")
			args = append(args, mapping.Value)
		default:
			conds = append(conds, "lower("+mapping.Field+") LIKE ?")
			args = append(args, "%"+strings.ToLower(mapping.Value)+"%")
		}
	}

	return conds, args, nil
}

func containsCond(conds []string, cond string) bool {
	for _, c := range conds {
		if c == cond {
			return true
		}
	}
	return false
}

// buildQuery assembles the SELECT for an intent. Only SELECTs are ever
// generated; the store enforces the same.
func buildQuery(intent graphIntent, conds []string) string {
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	switch intent {
	case intentCount:
		return "SELECT COUNT(*) AS count FROM stakeholders" + where
	case intentRoleOf:
		return "SELECT name, role, organization FROM stakeholders" + where + " ORDER BY confidence DESC"
	default:
		return fmt.Sprintf("SELECT name, type, role, organization FROM stakeholders%s ORDER BY name LIMIT %d", where, findLimit)
	}
}

// renderResult turns rows into the prose answer plus per-row evidence.
func renderResult(intent graphIntent, rs *graph.ResultSet) (string, []model.Evidence) {
	if intent == intentCount {
		count := any(0)
		if len(rs.Rows) > 0 && len(rs.Rows[0]) > 0 {
			count = rs.Rows[0][0]
		}
		return fmt.Sprintf("Found %v matching stakeholders.", count), nil
	}

	rows := make([]map[string]string, 0, len(rs.Rows))
	for _, raw := range rs.Rows {
		row := map[string]string{}
		for i, col := range rs.Columns {
			if i < len(raw) && raw[i] != nil {
				row[col] = fmt.Sprintf("%v", raw[i])
			}
		}
		rows = append(rows, row)
	}

	evidence := make([]model.Evidence, 0, len(rows))
	for _, row := range rows {
		evidence = append(evidence, model.Evidence{Text: describeRow(row)})
	}

	if len(rows) == 1 {
		return "Found: " + describeRow(rows[0]), evidence
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d results:\n", len(rows))
	for i, row := range rows {
		fmt.Fprintf(&b, "%d. %s\n", i+1, describeRow(row))
	}
	return strings.TrimRight(b.String(), "\n"), evidence
}

func describeRow(row map[string]string) string {
	text := row["name"]
	if role := row["role"]; role != "" {
		text += " - " + role
	}
	if typ := row["type"]; typ != "" {
		text += " (" + typ + ")"
	}
	if org := row["organization"]; org != "" {
		text += " at " + org
	}
	return text
}
