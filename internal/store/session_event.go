package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo with ent's SQL builder.
type eventRepo struct {
	db      *sql.DB
	dialect string
}

func (r *eventRepo) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.dialect)
}

func (r *eventRepo) exec(ctx context.Context, query string, args []any) error {
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// applyOpts adds the common id/time filters and limit.
func applyOpts(sel *entsql.Selector, opts QueryOpts) *entsql.Selector {
	if opts.After > 0 {
		sel.Where(entsql.GT("id", opts.After))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("timestamp", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("timestamp", opts.To.UTC()))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	return sel
}

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	if data.Source == "" {
		data.Source = "tui"
	}
	query, args := r.builder().Insert(SessionEventsTable.Name).
		Columns("timestamp", "session_id", "source", "action", "score", "answered", "total", "duration_secs").
		Values(time.Now().UTC(), data.SessionID, data.Source, data.Action, data.Score, data.Answered, data.Total, data.DurationSecs).
		Query()
	if err := r.exec(ctx, query, args); err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) querySessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEvent, error) {
	sel := r.builder().
		Select("id", "timestamp", "session_id", "source", "action", "score", "answered", "total", "duration_secs").
		From(entsql.Table(SessionEventsTable.Name)).
		OrderBy("id")
	if opts.Source != "" {
		sel.Where(entsql.EQ("source", opts.Source))
	}
	applyOpts(sel, QueryOpts{From: opts.From, To: opts.To, After: opts.After})

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	defer rows.Close()

	var out []SessionEvent
	for rows.Next() {
		var e SessionEvent
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.SessionID, &e.Source, &e.Action,
			&e.Score, &e.Answered, &e.Total, &e.DurationSecs); err != nil {
			return nil, fmt.Errorf("scan session event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *eventRepo) QuerySessionSummaries(ctx context.Context, opts QueryOpts) ([]SessionSummary, error) {
	events, err := r.querySessionEvents(ctx, opts)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*SessionSummary)
	var order []string
	for _, e := range events {
		s, ok := byID[e.SessionID]
		if !ok {
			s = &SessionSummary{SessionID: e.SessionID, Source: e.Source, StartedAt: e.Timestamp, Total: e.Total}
			byID[e.SessionID] = s
			order = append(order, e.SessionID)
		}
		switch e.Action {
		case ActionStart:
			if s.StartedAt.IsZero() || e.Timestamp.Before(s.StartedAt) {
				s.StartedAt = e.Timestamp
			}
		case ActionRestart:
			s.Restarts++
		case ActionComplete:
			s.CompletedAt = e.Timestamp
			s.Score = e.Score
			s.Answered = e.Answered
			s.Total = e.Total
			s.Duration = time.Duration(e.DurationSecs) * time.Second
		}
	}

	out := make([]SessionSummary, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}
