package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/lucagreco-dev/prenota_bot/internal/model"
)

const defaultBaseURL = "https://www.googleapis.com/calendar/v3"

// GoogleConfig sono le credenziali OAuth per Google Calendar.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	Timeout      time.Duration
}

// GoogleClient implementa Service contro l'API REST di Google Calendar v3.
// Il client HTTP viene costruito da un TokenSource oauth2 con refresh token,
// quindi il rinnovo del token è trasparente.
type GoogleClient struct {
	httpClient *http.Client
	baseURL    string
	logger     *zap.Logger
}

// NewGoogleClient costruisce il client. Il timeout limita ogni singola
// chiamata verso l'API.
func NewGoogleClient(cfg GoogleConfig, logger *zap.Logger) *GoogleClient {
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
	}

	token := &oauth2.Token{RefreshToken: cfg.RefreshToken}
	client := oauthCfg.Client(context.Background(), token)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client.Timeout = timeout

	return &GoogleClient{
		httpClient: client,
		baseURL:    defaultBaseURL,
		logger:     logger,
	}
}

type googleEventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

type googleAttendee struct {
	Email string `json:"email"`
}

type googleEvent struct {
	ID          string           `json:"id,omitempty"`
	Summary     string           `json:"summary,omitempty"`
	Description string           `json:"description,omitempty"`
	Start       googleEventTime  `json:"start"`
	End         googleEventTime  `json:"end"`
	Attendees   []googleAttendee `json:"attendees,omitempty"`
	Status      string           `json:"status,omitempty"`
}

type googleEventList struct {
	Items []googleEvent `json:"items"`
}

// CreateEvent crea l'evento sul calendario indicato.
func (c *GoogleClient) CreateEvent(ctx context.Context, calendarID string, event Event) (string, error) {
	payload := googleEvent{
		Summary:     event.Summary,
		Description: event.Description,
		Start:       googleEventTime{DateTime: event.Start.Format(time.RFC3339), TimeZone: event.Timezone},
		End:         googleEventTime{DateTime: event.End.Format(time.RFC3339), TimeZone: event.Timezone},
	}
	if event.AttendeeEmail != "" {
		payload.Attendees = []googleAttendee{{Email: event.AttendeeEmail}}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	endpoint := fmt.Sprintf("%s/calendars/%s/events", c.baseURL, url.PathEscape(calendarID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var created googleEvent
	if err := c.do(req, "create", &created); err != nil {
		return "", err
	}

	c.logger.Info("Calendar event created",
		zap.String("calendar_id", calendarID),
		zap.String("event_id", created.ID),
	)

	return created.ID, nil
}

// ListBusy elenca gli intervalli occupati che intersecano la finestra.
func (c *GoogleClient) ListBusy(ctx context.Context, calendarID string, window model.Window) ([]model.Window, error) {
	params := url.Values{}
	params.Set("timeMin", window.Start.Format(time.RFC3339))
	params.Set("timeMax", window.End.Format(time.RFC3339))
	params.Set("singleEvents", "true")
	params.Set("orderBy", "startTime")

	endpoint := fmt.Sprintf("%s/calendars/%s/events?%s", c.baseURL, url.PathEscape(calendarID), params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	var list googleEventList
	if err := c.do(req, "list", &list); err != nil {
		return nil, err
	}

	var busy []model.Window
	for _, item := range list.Items {
		if item.Status == "cancelled" {
			continue
		}
		w, ok := parseEventWindow(item)
		if !ok {
			continue
		}
		busy = append(busy, w)
	}
	return busy, nil
}

// DeleteEvent elimina l'evento; 404 e 410 sono trattati come già eliminato.
func (c *GoogleClient) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	endpoint := fmt.Sprintf("%s/calendars/%s/events/%s",
		c.baseURL, url.PathEscape(calendarID), url.PathEscape(eventID))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Op: "delete", Transient: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		c.logger.Warn("Calendar event already gone",
			zap.String("calendar_id", calendarID),
			zap.String("event_id", eventID),
		)
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError("delete", resp)
	}
	return nil
}

// do esegue la richiesta e decodifica la risposta JSON, mappando gli errori
// HTTP nella tassonomia transiente/permanente.
func (c *GoogleClient) do(req *http.Request, op string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Op: op, Transient: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(op, resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &Error{Op: op, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return nil
}

func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &Error{
		Op:         op,
		StatusCode: resp.StatusCode,
		Transient:  transientStatus(resp.StatusCode),
		Err:        fmt.Errorf("%s", bytes.TrimSpace(body)),
	}
}

// parseEventWindow estrae la finestra temporale di un evento. Gli eventi
// all-day usano il campo date e occupano l'intera giornata.
func parseEventWindow(ev googleEvent) (model.Window, bool) {
	if ev.Start.DateTime != "" && ev.End.DateTime != "" {
		start, err1 := time.Parse(time.RFC3339, ev.Start.DateTime)
		end, err2 := time.Parse(time.RFC3339, ev.End.DateTime)
		if err1 != nil || err2 != nil {
			return model.Window{}, false
		}
		return model.Window{Start: start.UTC(), End: end.UTC()}, true
	}
	if ev.Start.Date != "" && ev.End.Date != "" {
		start, err1 := time.Parse("2006-01-02", ev.Start.Date)
		end, err2 := time.Parse("2006-01-02", ev.End.Date)
		if err1 != nil || err2 != nil {
			return model.Window{}, false
		}
		return model.Window{Start: start, End: end}, true
	}
	return model.Window{}, false
}
