package questionpool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estudai/estudai/internal/domain"
	"github.com/estudai/estudai/internal/problemgen"
	"github.com/estudai/estudai/internal/store/storetest"
)

func TestSearch_TopicSubstringIgnoresCase(t *testing.T) {
	g, st := newGate(t, &fakeGenerator{})
	id := seedPool(t, st, "Química", "Estequiometria avançada", "hard", mustJSON(t, sampleQuestion("Q")))
	seedPool(t, st, "Química", "Termoquímica", "medium", mustJSON(t, sampleQuestion("T")))

	got, err := g.Search(context.Background(), "Química", "ESTEQUIO")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, id, got.Question.ID)
	assert.Equal(t, "hard", got.Difficulty)
}

func TestSearch_LegacyArrayUsesFirstQuestion(t *testing.T) {
	g, st := newGate(t, &fakeGenerator{})
	id := seedPool(t, st, "História", "Era Vargas", "medium",
		mustJSON(t, []problemgen.Question{sampleQuestion("primeira"), sampleQuestion("segunda")}))

	got, err := g.Search(context.Background(), "História", "")
	require.NoError(t, err)
	assert.Equal(t, "primeira", got.Question.Question)
	assert.Equal(t, id+"#0", got.Question.ID)
}

func TestSearch_SkipsUnreadableRows(t *testing.T) {
	g, st := newGate(t, &fakeGenerator{})
	seedPool(t, st, "História", "Era Vargas", "medium", `"not a question"`)
	good := seedPool(t, st, "História", "Era Vargas", "medium", mustJSON(t, sampleQuestion("ok")))
	g.pick = func(int) int { return 0 }

	got, err := g.Search(context.Background(), "História", "vargas")
	require.NoError(t, err)
	assert.Equal(t, good, got.ID)
}

func TestSearch_NotFound(t *testing.T) {
	g, _ := newGate(t, &fakeGenerator{})

	_, err := g.Search(context.Background(), "Filosofia", "Kant")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = g.Search(context.Background(), "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCheckAnswer(t *testing.T) {
	st := storetest.Open(t)
	streak, xp := &fakeStreak{}, &fakeXP{}
	g := NewGate(st.QuestionPool(), st.SavedQuestions(), &fakeGenerator{}, streak, xp, nil)
	ctx := context.Background()
	id := seedPool(t, st, "Biologia", "Ecologia", "medium", mustJSON(t, sampleQuestion("Q")))

	res, err := g.CheckAnswer(ctx, "u1", AnswerInput{QuestionID: id, Choice: 0})
	require.NoError(t, err)
	assert.False(t, res.Correct)
	assert.Equal(t, 2, res.CorrectAnswer)
	assert.Nil(t, res.XP)
	assert.Zero(t, streak.calls)

	res, err = g.CheckAnswer(ctx, "u1", AnswerInput{QuestionID: id, Choice: 2})
	require.NoError(t, err)
	assert.True(t, res.Correct)
	require.NotNil(t, res.XP)
	assert.Equal(t, 510, *res.XP)
	assert.Equal(t, 3, *res.Streak)
	assert.Equal(t, []int{10}, xp.amounts)

	_, err = g.CheckAnswer(ctx, "u1", AnswerInput{QuestionID: id, Choice: 5})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = g.CheckAnswer(ctx, "u1", AnswerInput{Choice: 2})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCheckAnswer_GradesStoredCopy(t *testing.T) {
	st := storetest.Open(t)
	xp := &fakeXP{}
	g := NewGate(st.QuestionPool(), st.SavedQuestions(), &fakeGenerator{}, nil, xp, nil)
	ctx := context.Background()

	// Unknown questions earn nothing, whatever the client claims.
	_, err := g.CheckAnswer(ctx, "u1", AnswerInput{QuestionID: "made-up", Choice: 0})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, xp.amounts)

	legacy := seedPool(t, st, "Química", "Estequiometria", "hard",
		mustJSON(t, []problemgen.Question{sampleQuestion("L1"), {
			Question: "L2", Options: []string{"1", "2", "3", "4", "5"}, CorrectAnswer: 4, Explanation: ".",
		}}))

	res, err := g.CheckAnswer(ctx, "u1", AnswerInput{QuestionID: legacy + "#1", Choice: 4})
	require.NoError(t, err)
	assert.True(t, res.Correct)

	_, err = g.CheckAnswer(ctx, "u1", AnswerInput{QuestionID: legacy + "#2", Choice: 0})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = g.CheckAnswer(ctx, "u1", AnswerInput{QuestionID: legacy + "#x", Choice: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, []int{10}, xp.amounts)
}

func TestSaveAndList(t *testing.T) {
	g, _ := newGate(t, &fakeGenerator{})
	ctx := context.Background()

	saved, err := g.Save(ctx, "u1", SaveInput{Subject: "Biologia", Topic: "Ecologia", Question: sampleQuestion("Q"), IsCorrect: true})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	list, err := g.Saved(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsCorrect)

	qs, err := DecodeContent(list[0].Content)
	require.NoError(t, err)
	assert.Equal(t, "Q", qs[0].Question)

	_, err = g.Save(ctx, "u1", SaveInput{Subject: "", Question: sampleQuestion("Q")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
