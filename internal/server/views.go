package server

import (
	"net/url"

	"github.com/abhisek/mandela/internal/catalog"
	"github.com/abhisek/mandela/internal/quiz"
)

type choiceView struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type itemView struct {
	ID     string       `json:"id"`
	Title  string       `json:"title"`
	Kind   string       `json:"kind"`
	Assets []string     `json:"assets"`
	Choice []choiceView `json:"choices"`
}

type questionView struct {
	itemView
	Index   int    `json:"index"`
	Number  int    `json:"number"`
	Total   int    `json:"total"`
	Heading string `json:"heading"`
}

type stateView struct {
	SessionID string        `json:"session_id"`
	Phase     string        `json:"phase"`
	Score     int           `json:"score"`
	Answered  int           `json:"answered"`
	Total     int           `json:"total"`
	Question  *questionView `json:"question,omitempty"`
}

type answerView struct {
	Record      quiz.AnswerRecord `json:"record"`
	Correct     string            `json:"correct_answer"`
	Explanation string            `json:"explanation"`
	State       stateView         `json:"state"`
}

type feedbackView struct {
	ItemID       string `json:"item_id"`
	Title        string `json:"title"`
	Choice       string `json:"choice"`
	WasCorrect   bool   `json:"was_correct"`
	CorrectLabel string `json:"correct_answer"`
	CorrectAsset string `json:"correct_asset"`
	Explanation  string `json:"explanation"`
}

type summaryView struct {
	SessionID string         `json:"session_id"`
	Heading   string         `json:"heading"`
	Score     int            `json:"score"`
	Total     int            `json:"total"`
	Accuracy  float64        `json:"accuracy"`
	Feedback  []feedbackView `json:"feedback"`
}

func assetURL(ref string) string {
	return "/api/assets/" + url.PathEscape(ref)
}

// newItemView omits the correct answer.
func newItemView(it catalog.Item) itemView {
	v := itemView{
		ID:    it.ID,
		Title: it.Title(),
		Kind:  it.Kind.String(),
	}
	for _, ref := range it.Assets() {
		v.Assets = append(v.Assets, assetURL(ref))
	}
	for _, c := range it.Domain() {
		v.Choice = append(v.Choice, choiceView{Value: string(c), Label: quiz.ChoiceButton(c)})
	}
	return v
}

func newStateView(sess *quiz.Session) stateView {
	st := sess.State()
	v := stateView{
		SessionID: sess.ID,
		Phase:     sess.Phase().String(),
		Score:     st.Score,
		Answered:  len(st.Log),
		Total:     sess.Catalog.Len(),
	}
	if item, index, err := sess.CurrentItem(); err == nil {
		q := newQuestionView(item, index, v.Total)
		v.Question = &q
	}
	return v
}

func newQuestionView(it catalog.Item, index, total int) questionView {
	return questionView{
		itemView: newItemView(it),
		Index:    index,
		Number:   index + 1,
		Total:    total,
		Heading:  quiz.QuestionHeading(index, it),
	}
}

func newSummaryView(id string, cat *catalog.Catalog, sum quiz.Summary) summaryView {
	v := summaryView{
		SessionID: id,
		Heading:   quiz.SummaryHeading(sum),
		Score:     sum.Score,
		Total:     sum.Total,
		Accuracy:  sum.Accuracy(),
		Feedback:  make([]feedbackView, 0, len(sum.Log)),
	}
	for _, rec := range sum.Log {
		it, ok := cat.Lookup(rec.ItemID)
		if !ok {
			continue
		}
		v.Feedback = append(v.Feedback, feedbackView{
			ItemID:       it.ID,
			Title:        it.Title(),
			Choice:       string(rec.Choice),
			WasCorrect:   rec.WasCorrect,
			CorrectLabel: it.Correct.Label(),
			CorrectAsset: assetURL(it.CorrectAsset()),
			Explanation:  it.Explanation,
		})
	}
	return v
}
