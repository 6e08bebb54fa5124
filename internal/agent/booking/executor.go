package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pollenai/assistant/internal/agent/model"
	errx "github.com/pollenai/assistant/internal/core/error"
	logx "github.com/pollenai/assistant/pkg/logger"
)

// zohoTimeFormat is the calendar API's compact basic format for instants.
const zohoTimeFormat = "20060102T150405Z"

// Executor validates a meeting request, refreshes the user's access token,
// resolves the primary calendar and performs the external booking call.
// Booking is not idempotent: two identical calls create two events.
type Executor struct {
	cfg   model.BookingConfig
	creds model.CredentialStore
	http  *http.Client
	locks *userLocks
}

func NewExecutor(cfg model.BookingConfig, creds model.CredentialStore) *Executor {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Executor{
		cfg:   cfg,
		creds: creds,
		http:  &http.Client{Timeout: timeout},
		locks: newUserLocks(),
	}
}

// Book runs the full booking sequence and returns a confirmation message.
// Every step fails with its own error kind; no step is retried.
func (e *Executor) Book(ctx context.Context, userID string, req model.MeetingRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", errx.NewKind(errx.KindBookingFailed, err, http.StatusUnprocessableEntity, err.Error())
	}

	unlock := e.locks.lock(userID)
	defer unlock()

	cred, err := e.creds.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if cred == nil || cred.RefreshToken == "" {
		return "", errx.NotAuthorized(userID)
	}

	accessToken, err := e.refreshAccessToken(ctx, cred.RefreshToken)
	if err != nil {
		return "", err
	}

	calendarID, err := e.primaryCalendarID(ctx, accessToken)
	if err != nil {
		return "", err
	}

	// Write-through before the booking call so a later booking failure
	// does not lose the refreshed token.
	cred.AccessToken = accessToken
	if err := e.creds.Put(ctx, *cred); err != nil {
		return "", err
	}

	logx.Debug().
		Str("user_id", userID).
		Str("calendar_id", calendarID).
		Str("title", req.Title).
		Msg("booking meeting")

	return e.createEvent(ctx, calendarID, accessToken, req)
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

func (e *Executor) refreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	form := url.Values{
		"refresh_token": {refreshToken},
		"client_id":     {e.cfg.ClientID},
		"client_secret": {e.cfg.ClientSecret},
		"grant_type":    {"refresh_token"},
	}

	endpoint := strings.TrimRight(e.cfg.AccountsURL, "/") + "/oauth/v2/token"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errx.TokenRefreshFailed(err.Error())
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := e.http.Do(httpReq)
	if err != nil {
		return "", errx.TokenRefreshFailed(err.Error())
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", errx.TokenRefreshFailed(string(body))
	}

	var tokens tokenResponse
	if err := json.Unmarshal(body, &tokens); err != nil {
		return "", errx.TokenRefreshFailed(err.Error())
	}
	if tokens.AccessToken == "" {
		return "", errx.TokenRefreshFailed("no access token in response")
	}
	return tokens.AccessToken, nil
}

type calendarListResponse struct {
	Calendars []struct {
		UID string `json:"uid"`
	} `json:"calendars"`
}

// primaryCalendarID lists the user's calendars and takes the first entry.
func (e *Executor) primaryCalendarID(ctx context.Context, accessToken string) (string, error) {
	endpoint := strings.TrimRight(e.cfg.CalendarURL, "/") + "/calendars"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", errx.NewKind(errx.KindNoCalendarFound, err, http.StatusBadGateway, "list calendars")
	}
	httpReq.Header.Set("Authorization", "Zoho-oauthtoken "+accessToken)

	resp, err := e.http.Do(httpReq)
	if err != nil {
		return "", errx.NewKind(errx.KindNoCalendarFound, err, http.StatusBadGateway, "list calendars")
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", errx.NewKind(errx.KindNoCalendarFound,
			fmt.Errorf("list calendars: status %d", resp.StatusCode), http.StatusBadGateway, string(body))
	}

	var list calendarListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		return "", errx.NewKind(errx.KindNoCalendarFound, err, http.StatusBadGateway, "decode calendar list")
	}
	if len(list.Calendars) == 0 {
		return "", errx.NoCalendarFound()
	}
	return list.Calendars[0].UID, nil
}

type eventDateTime struct {
	Timezone string `json:"timezone"`
	Start    string `json:"start"`
	End      string `json:"end"`
}

type eventAttendee struct {
	Email  string `json:"email"`
	Status string `json:"status"`
}

type eventReminder struct {
	Action  string `json:"action"`
	Minutes int    `json:"minutes"`
}

type eventData struct {
	Title       string          `json:"title"`
	DateAndTime eventDateTime   `json:"dateandtime"`
	Attendees   []eventAttendee `json:"attendees"`
	Description string          `json:"richtext_description"`
	Reminders   []eventReminder `json:"reminders"`
}

func (e *Executor) createEvent(ctx context.Context, calendarID, accessToken string, req model.MeetingRequest) (string, error) {
	start, err := req.Start()
	if err != nil {
		return "", errx.NewKind(errx.KindBookingFailed, err, http.StatusUnprocessableEntity, err.Error())
	}
	end := start.Add(time.Duration(req.DurationMinutes) * time.Minute)

	attendees := make([]eventAttendee, 0, len(req.Attendees))
	for _, email := range req.Attendees {
		attendees = append(attendees, eventAttendee{Email: email, Status: "NEEDS-ACTION"})
	}

	event := eventData{
		Title: req.Title,
		DateAndTime: eventDateTime{
			Timezone: e.cfg.Timezone,
			Start:    start.UTC().Format(zohoTimeFormat),
			End:      end.UTC().Format(zohoTimeFormat),
		},
		Attendees:   attendees,
		Description: "<div><p>Scheduled via assistant</p></div>",
		Reminders:   []eventReminder{{Action: "popup", Minutes: -15}},
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return "", errx.NewKind(errx.KindBookingFailed, err, http.StatusInternalServerError, "encode event payload")
	}

	// The calendar API takes the event JSON URL-encoded as a query parameter.
	endpoint := fmt.Sprintf("%s/calendars/%s/events?eventdata=%s",
		strings.TrimRight(e.cfg.CalendarURL, "/"), calendarID, url.QueryEscape(string(payload)))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return "", errx.BookingFailed(err.Error())
	}
	httpReq.Header.Set("Authorization", "Zoho-oauthtoken "+accessToken)

	resp, err := e.http.Do(httpReq)
	if err != nil {
		return "", errx.BookingFailed(err.Error())
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logx.Warn().Int("status", resp.StatusCode).Str("calendar_id", calendarID).Msg("booking failed")
		return "", errx.BookingFailed(string(body))
	}

	return fmt.Sprintf("✅ Meeting booked for '%s' at %s with %s",
		req.Title, req.StartTime, strings.Join(req.Attendees, ", ")), nil
}
