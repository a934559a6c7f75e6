package popupclient

import (
	"context"
	"errors"
	"fmt"
)

// ErrIncompleteSurvey is returned when a submission is attempted while any
// survey block still lacks a selection.
var ErrIncompleteSurvey = errors.New("every survey requires a selection")

// Toggler pushes an enabled flip to the server.
type Toggler interface {
	Toggle(ctx context.Context, popupID uint, enabled bool) error
}

// SurveyRecorder pushes one survey choice to the server.
type SurveyRecorder interface {
	SubmitSurveyResponse(ctx context.Context, popupID uint, surveyID string, itemIndex int) error
}

// CommandResult is the explicit outcome of a command; failures are values,
// not panics, so shells can render a retry affordance.
type CommandResult struct {
	OK  bool
	Err error
}

// ToggleCommand flips a popup's enabled flag optimistically: the local copy
// is mutated first, the request issued second, and the mutation inverted if
// the server rejects it.
type ToggleCommand struct {
	Popup   *Popup
	Enabled bool
}

func (cmd *ToggleCommand) Execute(ctx context.Context, api Toggler) CommandResult {
	previous := cmd.Popup.Enabled
	cmd.Popup.Enabled = cmd.Enabled

	if err := api.Toggle(ctx, cmd.Popup.ID, cmd.Enabled); err != nil {
		cmd.Popup.Enabled = previous
		return CommandResult{Err: err}
	}
	return CommandResult{OK: true}
}

// SubmitSurvey records the user's selections as a single logical unit: every
// survey block must have a selection, one record call is issued per block,
// and any block's failure fails the whole submission. Blocks recorded before
// the failure stay recorded; there is no compensating rollback.
func SubmitSurvey(ctx context.Context, api SurveyRecorder, popup *Popup, selections map[string]int) error {
	surveys := popup.SurveyBlocks()
	if len(surveys) == 0 {
		return nil
	}

	for _, survey := range surveys {
		if _, ok := selections[survey.ID]; !ok {
			return ErrIncompleteSurvey
		}
	}

	for _, survey := range surveys {
		if err := api.SubmitSurveyResponse(ctx, popup.ID, survey.ID, selections[survey.ID]); err != nil {
			return fmt.Errorf("record response for survey %s: %w", survey.ID, err)
		}
	}

	return nil
}

// SubmitSurveyAndClose submits the current popup's survey selections and, on
// full success, closes the popup the same way an explicit close would —
// without marking a daily dismissal.
func (pc *PageChecker) SubmitSurveyAndClose(ctx context.Context, api SurveyRecorder, selections map[string]int) error {
	pc.mu.Lock()
	current := pc.current
	pc.mu.Unlock()

	if current == nil {
		return nil
	}
	if err := SubmitSurvey(ctx, api, current, selections); err != nil {
		return err
	}

	pc.Close()
	return nil
}
