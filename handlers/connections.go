package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	connectionRepo "ledgerly/database/repository/connection"
	"ledgerly/models"
	"ledgerly/services/syncer"
	"ledgerly/utils"
)

// ConnectionHandler manages the links to the external systems: the Google
// OAuth connect flow for the calendar and the status view for both.
type ConnectionHandler struct {
	Calendar    *syncer.GoogleCalendarConnector
	CRM         *syncer.OdooConnector
	Connections connectionRepo.ConnectionRepository
}

// NewConnectionHandler constructs a ConnectionHandler.
func NewConnectionHandler(cal *syncer.GoogleCalendarConnector, crm *syncer.OdooConnector, conns connectionRepo.ConnectionRepository) *ConnectionHandler {
	return &ConnectionHandler{Calendar: cal, CRM: crm, Connections: conns}
}

// GoogleAuthURLHandler returns the consent URL that starts the calendar
// connect flow.
func (h *ConnectionHandler) GoogleAuthURLHandler(c *gin.Context) {
	cfg := h.Calendar.OAuthConfig()
	if cfg == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "google oauth client is not configured"})
		return
	}
	state := uuid.New().String()
	url := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	c.JSON(http.StatusOK, gin.H{"authUrl": url, "state": state})
}

// GoogleCallbackHandler exchanges the OAuth code and stores the token as the
// calendar connection. Offline access keeps a refresh token so the connector
// survives access-token expiry.
func (h *ConnectionHandler) GoogleCallbackHandler(c *gin.Context) {
	cfg := h.Calendar.OAuthConfig()
	if cfg == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "google oauth client is not configured"})
		return
	}
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing 'code' query parameter"})
		return
	}

	token, err := cfg.Exchange(c.Request.Context(), code)
	if err != nil {
		utils.GetLogger().Error("google oauth exchange failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to exchange authorization code"})
		return
	}

	raw, err := json.Marshal(token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to serialize token"})
		return
	}
	conn := &models.Connection{
		ID:          uuid.New().String(),
		System:      models.SyncSystemCalendar,
		AccountID:   cfg.ClientID,
		Token:       raw,
		Active:      true,
		ConnectedAt: time.Now().UTC(),
	}
	if err := h.Connections.Upsert(c.Request.Context(), conn); err != nil {
		utils.GetLogger().Error("failed to store calendar connection", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store connection"})
		return
	}

	utils.GetLogger().Info("calendar connected", zap.String("connectionId", conn.ID))
	c.JSON(http.StatusOK, gin.H{"message": "calendar connected", "system": models.SyncSystemCalendar})
}

// DisconnectCalendarHandler deactivates the calendar connection. Bookings made
// afterwards record skipped calendar sync until it is reconnected.
func (h *ConnectionHandler) DisconnectCalendarHandler(c *gin.Context) {
	if err := h.Connections.Deactivate(c.Request.Context(), models.SyncSystemCalendar); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to disconnect calendar"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "calendar disconnected"})
}

// StatusHandler reports the live connected state per external system.
func (h *ConnectionHandler) StatusHandler(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, gin.H{
		models.SyncSystemCalendar: gin.H{"connected": h.Calendar.IsConnected(ctx)},
		models.SyncSystemCRM:      gin.H{"connected": h.CRM.IsConnected(ctx)},
	})
}
