package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"ledgerly/config"
	connectionRepo "ledgerly/database/repository/connection"
	"ledgerly/models"
)

// GoogleCalendarConnector mirrors bookings as Google Calendar events on the
// firm's calendar. The OAuth token lives in the connections collection; the
// connector is "not connected" until the admin completes the OAuth flow.
type GoogleCalendarConnector struct {
	Connections connectionRepo.ConnectionRepository
	oauthCfg    *oauth2.Config
	calendarID  string
}

// NewGoogleCalendarConnector builds the connector from the app config. Returns
// a connector that reports not-connected when the OAuth client is missing.
func NewGoogleCalendarConnector(connections connectionRepo.ConnectionRepository) *GoogleCalendarConnector {
	cfg := config.AppConfig
	var oauthCfg *oauth2.Config
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		oauthCfg = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{calendar.CalendarEventsScope},
			Endpoint:     google.Endpoint,
		}
	}
	return &GoogleCalendarConnector{
		Connections: connections,
		oauthCfg:    oauthCfg,
		calendarID:  cfg.GoogleCalendarID,
	}
}

func (c *GoogleCalendarConnector) System() string {
	return models.SyncSystemCalendar
}

// OAuthConfig exposes the OAuth client for the admin connect flow.
func (c *GoogleCalendarConnector) OAuthConfig() *oauth2.Config {
	return c.oauthCfg
}

func (c *GoogleCalendarConnector) IsConnected(ctx context.Context) bool {
	if c.oauthCfg == nil {
		return false
	}
	conn, err := c.Connections.GetBySystem(ctx, models.SyncSystemCalendar)
	if err != nil || !conn.Active || len(conn.Token) == 0 {
		return false
	}
	return true
}

// CreateRemoteRecord inserts a calendar event for the booking's slot window.
func (c *GoogleCalendarConnector) CreateRemoteRecord(ctx context.Context, booking *models.Booking, slot *models.TimeSlot) (string, map[string]string, error) {
	conn, err := c.Connections.GetBySystem(ctx, models.SyncSystemCalendar)
	if err != nil {
		return "", nil, fmt.Errorf("calendar connection unavailable: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(conn.Token, &token); err != nil {
		return "", nil, fmt.Errorf("stored calendar token is invalid: %w", err)
	}

	client := c.oauthCfg.Client(ctx, &token)
	srv, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	event := &calendar.Event{
		Summary:     fmt.Sprintf("Consultation: %s", booking.FullName),
		Description: buildEventDescription(booking),
		Start: &calendar.EventDateTime{
			DateTime: slot.StartAt.Format(time.RFC3339),
			TimeZone: booking.Timezone,
		},
		End: &calendar.EventDateTime{
			DateTime: slot.EndAt.Format(time.RFC3339),
			TimeZone: booking.Timezone,
		},
		Attendees: []*calendar.EventAttendee{
			{Email: booking.Email, DisplayName: booking.FullName},
		},
	}

	created, err := srv.Events.Insert(c.calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", nil, fmt.Errorf("failed to insert calendar event: %w", err)
	}

	metadata := map[string]string{"eventId": created.Id}
	if created.HangoutLink != "" {
		metadata["hangoutLink"] = created.HangoutLink
	}
	return created.Id, metadata, nil
}

func buildEventDescription(booking *models.Booking) string {
	desc := fmt.Sprintf("Client: %s\nEmail: %s\nPhone: %s", booking.FullName, booking.Email, booking.Phone)
	if booking.Notes != "" {
		desc += "\nNotes: " + booking.Notes
	}
	return desc
}
