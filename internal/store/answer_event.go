package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendAnswerEvent(ctx context.Context, data AnswerEventData) error {
	query, args := r.builder().Insert(AnswerEventsTable.Name).
		Columns("timestamp", "session_id", "item_id", "item_index", "choice", "correct", "time_ms").
		Values(time.Now().UTC(), data.SessionID, data.ItemID, data.ItemIndex, data.Choice, data.Correct, data.TimeMs).
		Query()
	if err := r.exec(ctx, query, args); err != nil {
		return fmt.Errorf("save answer event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryAnswers(ctx context.Context, sessionID string) ([]AnswerEvent, error) {
	query, args := r.builder().
		Select("id", "timestamp", "session_id", "item_id", "item_index", "choice", "correct", "time_ms").
		From(entsql.Table(AnswerEventsTable.Name)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy("id").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	var out []AnswerEvent
	for rows.Next() {
		var e AnswerEvent
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.SessionID, &e.ItemID, &e.ItemIndex,
			&e.Choice, &e.Correct, &e.TimeMs); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *eventRepo) ItemStats(ctx context.Context) ([]ItemStat, error) {
	query, args := r.builder().
		Select("item_id", "correct").
		From(entsql.Table(AnswerEventsTable.Name)).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query item stats: %w", err)
	}
	defer rows.Close()

	byItem := make(map[string]*ItemStat)
	for rows.Next() {
		var (
			itemID  string
			correct bool
		)
		if err := rows.Scan(&itemID, &correct); err != nil {
			return nil, fmt.Errorf("scan item stat: %w", err)
		}
		st, ok := byItem[itemID]
		if !ok {
			st = &ItemStat{ItemID: itemID}
			byItem[itemID] = st
		}
		st.Answers++
		if correct {
			st.Correct++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]ItemStat, 0, len(byItem))
	for _, st := range byItem {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MissRate() != out[j].MissRate() {
			return out[i].MissRate() > out[j].MissRate()
		}
		return out[i].ItemID < out[j].ItemID
	})
	return out, nil
}
