package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"calendar-autobot/internal/event"
	repo "calendar-autobot/internal/event/repository"
	"calendar-autobot/internal/event/validator"
	"calendar-autobot/internal/extraction"
	"calendar-autobot/internal/model"
)

// ProcessText runs the full pipeline: extract, validate, persist, then sync
// when requested. Extraction never fails the call; persistence does.
func (uc *implUseCase) ProcessText(ctx context.Context, input event.ProcessTextInput) (event.ProcessTextOutput, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return event.ProcessTextOutput{}, event.ErrEmptyInput
	}
	source := input.Source
	if source == "" {
		source = model.SourceManual
	}
	if !source.Valid() {
		return event.ProcessTextOutput{}, event.ErrInvalidSource
	}

	user, err := uc.loadUser(ctx, input.UserID)
	if err != nil {
		return event.ProcessTextOutput{}, err
	}

	uc.l.Infof(ctx, "ProcessText: user_id=%s input_length=%d source=%s", user.ID, len(text), source)

	ref := uc.reference(input.ReferenceDate)
	res := uc.extractor.ExtractWithFallback(ctx, extraction.Input{
		Text:          text,
		ReferenceDate: ref,
		Timezone:      user.TimezoneName(),
	})
	events, skipped := uc.validateAll(ctx, user.ID, res.Events, validator.New(ref, user.Location()))

	rawJSON, err := json.Marshal(res.Events)
	if err != nil {
		rawJSON = []byte("[]")
	}

	opt := repo.SaveExtractionOptions{
		UserID:              user.ID,
		OriginalText:        event.Sanitize(text),
		SourceType:          source,
		FromEmail:           event.Sanitize(res.FromEmail),
		ExtractedEventsJSON: string(rawJSON),
		ProcessingStatus:    model.ProcessingCompleted,
		ExtractionStatus:    res.Status,
		ExtractionError:     res.ErrorMessage,
		ExtractedAt:         uc.cfg.Now(),
		Events:              events,
	}

	var (
		saved     []model.Event
		textInput model.TextInput
	)
	err = uc.persistPolicy(ctx, user.ID).Do(ctx, func(ctx context.Context) error {
		var saveErr error
		textInput, saved, saveErr = uc.repo.SaveExtraction(ctx, opt)
		return saveErr
	})
	if err != nil {
		uc.l.Errorf(ctx, "ProcessText SaveExtraction: user_id=%s input_length=%d: %v", user.ID, len(text), err)
		uc.reporter.Report(ctx, err, map[string]string{"user_id": user.ID, "stage": "persist"})
		return event.ProcessTextOutput{}, fmt.Errorf("%w: %w", repo.ErrPersistenceFailure, err)
	}

	out := event.ProcessTextOutput{
		TextInputID:       textInput.ID,
		EventsExtracted:   len(saved),
		EventsSkipped:     skipped,
		FromEmail:         res.FromEmail,
		OfflineExtraction: res.UsedOfflineFallback,
		ExtractionStatus:  res.Status,
		Message:           res.ErrorMessage,
	}

	switch {
	case !input.AutoSync || len(saved) == 0:
	case user.IsTemporary:
		uc.l.Infof(ctx, "ProcessText: user_id=%s is temporary, %d events kept for later sync", user.ID, len(saved))
	default:
		batch := uc.syncAndRecord(ctx, &user, saved)
		out.EventsSynced = batch.Synced
		out.SyncWarning = syncWarning(batch)
	}

	out.Events = saved
	uc.l.Infof(ctx, "ProcessText: user_id=%s extracted=%d skipped=%d synced=%d status=%s",
		user.ID, out.EventsExtracted, skipped, out.EventsSynced, out.ExtractionStatus)
	return out, nil
}

// Preview extracts and validates without persisting or syncing.
func (uc *implUseCase) Preview(ctx context.Context, input event.PreviewInput) (event.PreviewOutput, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return event.PreviewOutput{}, event.ErrEmptyInput
	}

	loc := time.UTC
	if input.Timezone != "" {
		l, err := time.LoadLocation(input.Timezone)
		if err != nil {
			uc.l.Warnf(ctx, "Preview: unknown timezone %q, using UTC", input.Timezone)
		} else {
			loc = l
		}
	}

	ref := uc.reference(input.ReferenceDate)
	res := uc.extractor.ExtractWithFallback(ctx, extraction.Input{
		Text:          text,
		ReferenceDate: ref,
		Timezone:      loc.String(),
	})
	events, skipped := uc.validateAll(ctx, "", res.Events, validator.New(ref, loc))

	return event.PreviewOutput{
		Events:            events,
		FromEmail:         res.FromEmail,
		OfflineExtraction: res.UsedOfflineFallback,
		ExtractionStatus:  res.Status,
		Message:           res.ErrorMessage,
		Skipped:           skipped,
	}, nil
}

// validateAll keeps every raw event that validates. Failures are logged,
// reported and counted.
func (uc *implUseCase) validateAll(ctx context.Context, userID string, raws []model.RawEvent, v validator.Validator) ([]model.Event, int) {
	events := make([]model.Event, 0, len(raws))
	skipped := 0
	for i, raw := range raws {
		ev, err := v.Validate(raw)
		if err != nil {
			skipped++
			uc.l.Warnf(ctx, "validateAll: user_id=%s skipping event %d: %v", userID, i, err)
			uc.reporter.Report(ctx, err, map[string]string{"user_id": userID, "stage": "validate"})
			continue
		}
		events = append(events, sanitizeEvent(ev))
	}
	return events, skipped
}
