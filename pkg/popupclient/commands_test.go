package popupclient

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"miuhub.app/communityserver/internal/entity"
)

type fakeToggler struct {
	err   error
	calls []bool
}

func (f *fakeToggler) Toggle(_ context.Context, _ uint, enabled bool) error {
	f.calls = append(f.calls, enabled)
	return f.err
}

type recordedResponse struct {
	surveyID  string
	itemIndex int
}

type fakeRecorder struct {
	failOn string
	calls  []recordedResponse
}

func (f *fakeRecorder) SubmitSurveyResponse(_ context.Context, _ uint, surveyID string, itemIndex int) error {
	if surveyID == f.failOn {
		return errors.New("server error")
	}
	f.calls = append(f.calls, recordedResponse{surveyID, itemIndex})
	return nil
}

func surveyClientPopup(surveyIDs ...string) *Popup {
	popup := &Popup{ID: 7, Title: "Event", Enabled: true}
	for _, id := range surveyIDs {
		popup.ContentBlocks = append(popup.ContentBlocks, entity.ContentBlock{
			ID:    id,
			Type:  entity.BlockTypeSurvey,
			Items: []string{"Yes", "No"},
		})
	}
	return popup
}

func TestToggleCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps the optimistic value on success", func(t *testing.T) {
		popup := &Popup{ID: 1, Enabled: true}
		api := &fakeToggler{}

		result := (&ToggleCommand{Popup: popup, Enabled: false}).Execute(ctx, api)
		assert.True(t, result.OK)
		assert.False(t, popup.Enabled)
		assert.Equal(t, []bool{false}, api.calls)
	})

	t.Run("reverts the optimistic value on failure", func(t *testing.T) {
		popup := &Popup{ID: 1, Enabled: true}
		api := &fakeToggler{err: errors.New("server error")}

		result := (&ToggleCommand{Popup: popup, Enabled: false}).Execute(ctx, api)
		assert.False(t, result.OK)
		assert.Error(t, result.Err)
		assert.True(t, popup.Enabled, "local state rolls back when the server rejects")
	})
}

func TestSubmitSurvey(t *testing.T) {
	ctx := context.Background()

	t.Run("records one response per survey block", func(t *testing.T) {
		popup := surveyClientPopup("survey_1", "survey_2")
		api := &fakeRecorder{}

		err := SubmitSurvey(ctx, api, popup, map[string]int{"survey_1": 0, "survey_2": 1})
		require.NoError(t, err)
		assert.Equal(t, []recordedResponse{
			{"survey_1", 0},
			{"survey_2", 1},
		}, api.calls)
	})

	t.Run("missing selection fails before any record call", func(t *testing.T) {
		popup := surveyClientPopup("survey_1", "survey_2")
		api := &fakeRecorder{}

		err := SubmitSurvey(ctx, api, popup, map[string]int{"survey_1": 0})
		assert.ErrorIs(t, err, ErrIncompleteSurvey)
		assert.Empty(t, api.calls)
	})

	t.Run("a block failure fails the submission", func(t *testing.T) {
		popup := surveyClientPopup("survey_1", "survey_2")
		api := &fakeRecorder{failOn: "survey_2"}

		err := SubmitSurvey(ctx, api, popup, map[string]int{"survey_1": 0, "survey_2": 1})
		assert.Error(t, err)
		// Earlier blocks stay recorded; there is no rollback.
		assert.Equal(t, []recordedResponse{{"survey_1", 0}}, api.calls)
	})

	t.Run("popup without surveys is a no-op", func(t *testing.T) {
		popup := &Popup{ID: 7, ContentBlocks: []entity.ContentBlock{
			{ID: "text_1", Type: entity.BlockTypeText, Content: "hello"},
		}}
		api := &fakeRecorder{}

		require.NoError(t, SubmitSurvey(ctx, api, popup, nil))
		assert.Empty(t, api.calls)
	})
}

func TestSubmitSurveyAndClose(t *testing.T) {
	ctx := context.Background()
	popup := surveyClientPopup("survey_1")
	fetcher := &fakeFetcher{popups: []Popup{*popup}}
	checker, gate := newTestChecker(fetcher)

	shown, err := checker.Focus(ctx, "home")
	require.NoError(t, err)
	require.NotNil(t, shown)

	t.Run("incomplete submission keeps the popup up", func(t *testing.T) {
		api := &fakeRecorder{}
		err := checker.SubmitSurveyAndClose(ctx, api, map[string]int{})
		assert.ErrorIs(t, err, ErrIncompleteSurvey)
		assert.NotNil(t, checker.Shown())
	})

	t.Run("full submission closes without a daily dismissal", func(t *testing.T) {
		api := &fakeRecorder{}
		err := checker.SubmitSurveyAndClose(ctx, api, map[string]int{"survey_1": 0})
		require.NoError(t, err)
		assert.Nil(t, checker.Shown())

		dismissed, err := gate.IsDismissedToday(ctx, 7)
		require.NoError(t, err)
		assert.False(t, dismissed, "the popup may reappear on the next visit today")
	})
}

func TestAllowsURLAction(t *testing.T) {
	withURL := &Popup{URL: "https://example.com"}
	assert.True(t, withURL.AllowsURLAction())

	withSurvey := surveyClientPopup("survey_1")
	withSurvey.URL = "https://example.com"
	assert.False(t, withSurvey.AllowsURLAction(), "survey and URL actions are mutually exclusive")

	assert.False(t, (&Popup{}).AllowsURLAction())
}
