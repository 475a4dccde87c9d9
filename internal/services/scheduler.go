package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"hrai/recruiter/internal/logger"
	"hrai/recruiter/internal/models"
)

const (
	slotFormLayout   = "2006-01-02T15:04"
	slotLayout       = "2006-01-02T15:04:05"
	eventDescription = "Scheduled via HR AI System"
)

type InterviewScheduler interface {
	// ScheduleInterview creates a calendar event for the candidate and returns
	// its id, or "" when no event was created. Failures are logged, not returned.
	ScheduleInterview(ctx context.Context, candidate *models.Candidate, slot models.Slot) string
}

type CalendarOptions struct {
	TokenFile  string
	CalendarID string
	TimeZone   string
	HREmail    string
	// Endpoint overrides the Calendar API base URL.
	Endpoint string
}

type calendarScheduler struct {
	opts CalendarOptions
	log  *zap.Logger
}

func NewCalendarScheduler(opts CalendarOptions, log *zap.Logger) InterviewScheduler {
	if opts.CalendarID == "" {
		opts.CalendarID = "primary"
	}

	return &calendarScheduler{
		opts: opts,
		log:  logger.OrNop(log),
	}
}

func (s *calendarScheduler) ScheduleInterview(ctx context.Context, candidate *models.Candidate, slot models.Slot) string {
	eventID, err := s.insertEvent(ctx, candidate, slot)
	if err == nil {
		return eventID
	}

	var apiErr *googleapi.Error
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.log.Error("calendar token file not found", zap.String("path", s.opts.TokenFile))
	case errors.As(err, &apiErr):
		s.log.Error("google calendar api error",
			zap.Int("code", apiErr.Code),
			zap.String("candidate_id", candidate.ID.String()),
			zap.Error(err),
		)
	default:
		s.log.Error("unexpected error scheduling interview",
			zap.String("candidate_id", candidate.ID.String()),
			zap.Error(err),
		)
	}

	return ""
}

func (s *calendarScheduler) insertEvent(ctx context.Context, candidate *models.Candidate, slot models.Slot) (string, error) {
	tf, err := LoadTokenFile(s.opts.TokenFile)
	if err != nil {
		return "", err
	}

	tok, err := tf.OAuthToken()
	if err != nil {
		return "", err
	}

	// Refreshes through the refresh token once the access token has expired.
	ts := tf.OAuthConfig().TokenSource(ctx, tok)

	clientOpts := []option.ClientOption{option.WithTokenSource(ts)}
	if s.opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(s.opts.Endpoint))
	}

	svc, err := calendar.NewService(ctx, clientOpts...)
	if err != nil {
		return "", fmt.Errorf("failed to create calendar service: %w", err)
	}

	event := BuildInterviewEvent(candidate, slot, s.opts.TimeZone, s.opts.HREmail)

	created, err := svc.Events.Insert(s.opts.CalendarID, event).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}

	s.log.Info("interview event created",
		zap.String("email", candidate.EmailAddress()),
		zap.String("link", created.HtmlLink),
	)

	s.persistRefreshedToken(ts, tf)

	return created.Id, nil
}

func (s *calendarScheduler) persistRefreshedToken(ts oauth2.TokenSource, tf *TokenFile) {
	current, err := ts.Token()
	if err != nil || current.AccessToken == tf.Token {
		return
	}

	tf.SetToken(current)
	if err := SaveTokenFile(s.opts.TokenFile, tf); err != nil {
		s.log.Warn("failed to persist refreshed calendar token", zap.Error(err))
	}
}

// BuildInterviewEvent assembles the calendar payload for one candidate.
func BuildInterviewEvent(candidate *models.Candidate, slot models.Slot, timeZone, hrEmail string) *calendar.Event {
	attendees := []*calendar.EventAttendee{{Email: candidate.EmailAddress()}}
	if hrEmail != "" {
		attendees = append(attendees, &calendar.EventAttendee{Email: hrEmail})
	}

	return &calendar.Event{
		Summary:     fmt.Sprintf("Interview with %s", candidate.Name),
		Description: eventDescription,
		Start:       &calendar.EventDateTime{DateTime: slot.Start, TimeZone: timeZone},
		End:         &calendar.EventDateTime{DateTime: slot.End, TimeZone: timeZone},
		Attendees:   attendees,
		Reminders:   &calendar.EventReminders{UseDefault: true},
	}
}

// ParseSlot accepts form values in minute or second precision and normalizes
// them to second precision. The end must be after the start.
func ParseSlot(start, end string) (models.Slot, error) {
	startAt, err := parseSlotTime(start)
	if err != nil {
		return models.Slot{}, fmt.Errorf("invalid slot_start: %w", err)
	}

	endAt, err := parseSlotTime(end)
	if err != nil {
		return models.Slot{}, fmt.Errorf("invalid slot_end: %w", err)
	}

	if !endAt.After(startAt) {
		return models.Slot{}, errors.New("slot_end must be after slot_start")
	}

	return models.Slot{
		Start: startAt.Format(slotLayout),
		End:   endAt.Format(slotLayout),
	}, nil
}

func parseSlotTime(value string) (time.Time, error) {
	if t, err := time.Parse(slotFormLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(slotLayout, value)
}
