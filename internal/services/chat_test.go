package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/carebloom-backend/internal/data/repos"
	"github.com/yungbote/carebloom-backend/internal/data/repos/testutil"
	types "github.com/yungbote/carebloom-backend/internal/domain"
	errs "github.com/yungbote/carebloom-backend/internal/pkg/errors"
	"github.com/yungbote/carebloom-backend/internal/platform/apierr"
	"github.com/yungbote/carebloom-backend/internal/platform/dbctx"
	"github.com/yungbote/carebloom-backend/internal/platform/gemini"
)

type fakeGenerator struct {
	resp      *gemini.Response
	err       error
	panicWith any
	onCall    func()
	calls     []gemini.Request
}

func (f *fakeGenerator) Generate(_ context.Context, req gemini.Request) (*gemini.Response, error) {
	f.calls = append(f.calls, req)
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	if f.onCall != nil {
		f.onCall()
	}
	return f.resp, f.err
}

func textReply(parts ...string) *gemini.Response {
	return &gemini.Response{Candidates: []gemini.Candidate{{Parts: parts}}}
}

// brokenRepo fails every operation.
type brokenRepo struct{ appends int }

var errDiskGone = errors.New("disk gone")

func (b *brokenRepo) Initialize(dbctx.Context) error { return errDiskGone }
func (b *brokenRepo) Append(dbctx.Context, string, string) (*types.ChatRecord, error) {
	b.appends++
	return nil, errDiskGone
}
func (b *brokenRepo) ListAll(dbctx.Context) ([]*types.ChatRecord, error) { return nil, errDiskGone }
func (b *brokenRepo) Count(dbctx.Context) (int64, error) { return 0, errDiskGone }
func (b *brokenRepo) DeleteAt(dbctx.Context, int) (*types.ChatRecord, error) {
	return nil, errDiskGone
}
func (b *brokenRepo) Clear(dbctx.Context) (int64, error) { return 0, errDiskGone }

func newStore(t *testing.T) repos.ChatRecordRepo {
	t.Helper()
	repo := repos.NewChatRecordRepo(testutil.DB(t), testutil.Logger(t))
	require.NoError(t, repo.Initialize(dbctx.Background()))
	return repo
}

func requireAPIErr(t *testing.T, err error, status int, message string) *apierr.Error {
	t.Helper()
	var ae *apierr.Error
	require.True(t, errors.As(err, &ae), "want *apierr.Error, got %T: %v", err, err)
	assert.Equal(t, status, ae.Status)
	assert.Equal(t, message, ae.Message)
	return ae
}

func TestHandleChat_HeadacheScenario(t *testing.T) {
	store := newStore(t)
	ai := &fakeGenerator{resp: textReply("  - Rest\n- Hydrate\n- ...  ")}
	svc := NewChatService(testutil.Logger(t), store, ai, "")
	dbc := dbctx.Background()

	reply, err := svc.HandleChat(dbc, "  What helps a headache?  ")
	require.NoError(t, err)
	assert.Equal(t, "- Rest\n- Hydrate\n- ...", reply)

	require.Len(t, ai.calls, 1)
	call := ai.calls[0]
	assert.Contains(t, call.Prompt, "User's message: What helps a headache?\n")
	assert.Contains(t, call.Prompt, "You are a caring AI medical assistant")
	assert.InDelta(t, 0.6, call.Temperature, 1e-6)
	assert.EqualValues(t, 400, call.MaxOutputTokens)
	require.Len(t, call.SafetySettings, 4)
	for _, s := range call.SafetySettings {
		assert.Equal(t, "BLOCK_MEDIUM_AND_ABOVE", s.Threshold)
	}

	history, err := svc.GetHistory(dbc)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "What helps a headache?", history[0].User)
	assert.Equal(t, "- Rest\n- Hydrate\n- ...", history[0].Bot)
	_, perr := time.Parse(HistoryTimestampFmt, history[0].Timestamp)
	assert.NoError(t, perr)
}

func TestHandleChat_EmptyMessage(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t "} {
		store := newStore(t)
		ai := &fakeGenerator{resp: textReply("unused")}
		svc := NewChatService(testutil.Logger(t), store, ai, "")

		_, err := svc.HandleChat(dbctx.Background(), in)
		ae := requireAPIErr(t, err, http.StatusBadRequest, "Please enter a message.")
		assert.ErrorIs(t, ae, errs.ErrInvalidArgument)
		assert.Empty(t, ai.calls)

		n, cerr := store.Count(dbctx.Background())
		require.NoError(t, cerr)
		assert.Zero(t, n)
	}
}

func TestHandleChat_NotConfigured(t *testing.T) {
	store := newStore(t)
	svc := NewChatService(testutil.Logger(t), store, nil, "")

	_, err := svc.HandleChat(dbctx.Background(), "I have a fever")
	requireAPIErr(t, err, http.StatusServiceUnavailable, "AI service not configured properly.")

	n, cerr := store.Count(dbctx.Background())
	require.NoError(t, cerr)
	assert.Zero(t, n)
}

func TestHandleChat_ReplyInterpretation(t *testing.T) {
	cases := []struct {
		name string
		resp *gemini.Response
		want string
	}{
		{
			name: "first_part_of_first_candidate",
			resp: &gemini.Response{Candidates: []gemini.Candidate{{Parts: []string{"one", "two"}}, {Parts: []string{"other"}}}},
			want: "one",
		},
		{
			name: "blocked",
			resp: &gemini.Response{BlockReason: "SAFETY"},
			want: "Your question was blocked due to safety guidelines: SAFETY",
		},
		{
			name: "candidates_win_over_block_reason",
			resp: &gemini.Response{Candidates: []gemini.Candidate{{Parts: []string{"ok"}}}, BlockReason: "OTHER"},
			want: "ok",
		},
		{
			name: "candidate_without_parts",
			resp: &gemini.Response{Candidates: []gemini.Candidate{{}}, BlockReason: "SAFETY"},
			want: "The AI did not provide a clear response. Please try again.",
		},
		{
			name: "whitespace_only_part",
			resp: textReply("   \n"),
			want: "The AI did not provide a clear response. Please try again.",
		},
		{
			name: "nothing_at_all",
			resp: &gemini.Response{},
			want: "The AI did not provide a clear response. Please try again.",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newStore(t)
			svc := NewChatService(testutil.Logger(t), store, &fakeGenerator{resp: tc.resp}, "")

			reply, err := svc.HandleChat(dbctx.Background(), "question")
			require.NoError(t, err)
			assert.Equal(t, tc.want, reply)

			history, err := svc.GetHistory(dbctx.Background())
			require.NoError(t, err)
			require.Len(t, history, 1)
			assert.Equal(t, tc.want, history[0].Bot)
		})
	}
}

func TestHandleChat_BlockedReplyMentionsReason(t *testing.T) {
	svc := NewChatService(testutil.Logger(t), newStore(t), &fakeGenerator{resp: &gemini.Response{BlockReason: "SAFETY"}}, "")

	reply, err := svc.HandleChat(dbctx.Background(), "something unsafe")
	require.NoError(t, err)
	assert.True(t, strings.Contains(reply, "blocked") && strings.Contains(reply, "SAFETY"), reply)
}

func TestHandleChat_ProviderFailure(t *testing.T) {
	store := newStore(t)
	svc := NewChatService(testutil.Logger(t), store, &fakeGenerator{err: errors.New("connection reset")}, "")

	_, err := svc.HandleChat(dbctx.Background(), "cold symptoms")
	ae := requireAPIErr(t, err, http.StatusInternalServerError, "An internal error occurred. Please try again.")
	assert.NotContains(t, ae.Message, "connection reset")

	n, cerr := store.Count(dbctx.Background())
	require.NoError(t, cerr)
	assert.Zero(t, n)
}

func TestHandleChat_NilResponseIsInternalError(t *testing.T) {
	svc := NewChatService(testutil.Logger(t), newStore(t), &fakeGenerator{}, "")

	_, err := svc.HandleChat(dbctx.Background(), "cold symptoms")
	requireAPIErr(t, err, http.StatusInternalServerError, "An internal error occurred. Please try again.")
}

func TestHandleChat_PanicIsRecovered(t *testing.T) {
	svc := NewChatService(testutil.Logger(t), newStore(t), &fakeGenerator{panicWith: "nil map write"}, "")

	reply, err := svc.HandleChat(dbctx.Background(), "migraine")
	assert.Empty(t, reply)
	requireAPIErr(t, err, http.StatusInternalServerError, "An internal error occurred. Please try again.")
}

func TestHandleChat_PersistFailureStillReplies(t *testing.T) {
	store := &brokenRepo{}
	svc := NewChatService(testutil.Logger(t), store, &fakeGenerator{resp: textReply("drink water")}, "")

	reply, err := svc.HandleChat(dbctx.Background(), "dehydrated")
	require.NoError(t, err)
	assert.Equal(t, "drink water", reply)
	assert.Equal(t, 1, store.appends)
}

func TestHandleChat_PersistsAfterClientDisconnect(t *testing.T) {
	store := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// The client goes away while the provider is still answering.
	ai := &fakeGenerator{resp: textReply("rest and fluids"), onCall: cancel}
	svc := NewChatService(testutil.Logger(t), store, ai, "")

	reply, err := svc.HandleChat(dbctx.Context{Ctx: ctx}, "sore throat")
	require.NoError(t, err)
	assert.Equal(t, "rest and fluids", reply)
	require.Error(t, ctx.Err())

	rows, err := store.ListAll(dbctx.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "sore throat", rows[0].UserMessage)
	assert.Equal(t, "rest and fluids", rows[0].BotReply)
}

func TestHandleChat_PassesModelOverride(t *testing.T) {
	ai := &fakeGenerator{resp: textReply("ok")}
	svc := NewChatService(testutil.Logger(t), newStore(t), ai, " models/gemini-test ")

	_, err := svc.HandleChat(dbctx.Background(), "hi")
	require.NoError(t, err)
	require.Len(t, ai.calls, 1)
	assert.Equal(t, "models/gemini-test", ai.calls[0].Model)
}

func TestGetHistory_OrderAndFailure(t *testing.T) {
	store := newStore(t)
	ai := &fakeGenerator{resp: textReply("r")}
	svc := NewChatService(testutil.Logger(t), store, ai, "")
	for _, m := range []string{"first", "second", "third"} {
		_, err := svc.HandleChat(dbctx.Background(), m)
		require.NoError(t, err)
	}

	history, err := svc.GetHistory(dbctx.Background())
	require.NoError(t, err)
	got := make([]string, 0, len(history))
	for _, h := range history {
		got = append(got, h.User)
	}
	assert.Equal(t, []string{"first", "second", "third"}, got)

	broken := NewChatService(testutil.Logger(t), &brokenRepo{}, ai, "")
	_, err = broken.GetHistory(dbctx.Background())
	requireAPIErr(t, err, http.StatusInternalServerError, "Could not load history")
}

func TestGetHistory_EmptyIsNonNil(t *testing.T) {
	svc := NewChatService(testutil.Logger(t), newStore(t), nil, "")

	history, err := svc.GetHistory(dbctx.Background())
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}

func TestDeleteHistory(t *testing.T) {
	seed := func(t *testing.T) (ChatService, repos.ChatRecordRepo) {
		store := newStore(t)
		svc := NewChatService(testutil.Logger(t), store, &fakeGenerator{resp: textReply("r")}, "")
		for _, m := range []string{"a", "b", "c"} {
			_, err := svc.HandleChat(dbctx.Background(), m)
			require.NoError(t, err)
		}
		return svc, store
	}
	users := func(t *testing.T, svc ChatService) []string {
		history, err := svc.GetHistory(dbctx.Background())
		require.NoError(t, err)
		out := []string{}
		for _, h := range history {
			out = append(out, h.User)
		}
		return out
	}

	t.Run("by_index", func(t *testing.T) {
		svc, _ := seed(t)
		idx := 1
		require.NoError(t, svc.DeleteHistory(dbctx.Background(), &idx))
		assert.Equal(t, []string{"a", "c"}, users(t, svc))
	})

	t.Run("out_of_range", func(t *testing.T) {
		svc, _ := seed(t)
		idx := 3
		err := svc.DeleteHistory(dbctx.Background(), &idx)
		ae := requireAPIErr(t, err, http.StatusInternalServerError, "error")
		assert.ErrorIs(t, ae, errs.ErrIndexOutOfRange)
		assert.Equal(t, []string{"a", "b", "c"}, users(t, svc))
	})

	t.Run("clear_all", func(t *testing.T) {
		svc, store := seed(t)
		require.NoError(t, svc.DeleteHistory(dbctx.Background(), nil))
		n, err := store.Count(dbctx.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
		require.NoError(t, svc.DeleteHistory(dbctx.Background(), nil))
	})

	t.Run("storage_failure", func(t *testing.T) {
		svc := NewChatService(testutil.Logger(t), &brokenRepo{}, nil, "")
		requireAPIErr(t, svc.DeleteHistory(dbctx.Background(), nil), http.StatusInternalServerError, "error")
	})
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("sore throat")
	assert.True(t, strings.HasPrefix(p, "\nYou are a caring AI medical assistant helping users with basic health tips.\n"))
	assert.True(t, strings.HasSuffix(p, "User's message: sore throat\n"))
	assert.Contains(t, p, "- Provide helpful, clear responses in 4-5 bullet points")
}
