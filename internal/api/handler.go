package api

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kavachhq/kavach-backend/internal/alerts"
	"github.com/kavachhq/kavach-backend/internal/explain"
	"github.com/kavachhq/kavach-backend/internal/geocode"
	"github.com/kavachhq/kavach-backend/internal/models"
	"github.com/kavachhq/kavach-backend/internal/news"
	"github.com/kavachhq/kavach-backend/internal/otp"
	"github.com/kavachhq/kavach-backend/internal/pois"
	"github.com/kavachhq/kavach-backend/internal/risk"
	"github.com/kavachhq/kavach-backend/internal/terrain"
	"github.com/kavachhq/kavach-backend/internal/weather"
)

// Handler binds the HTTP surface. Responses keep the frontend's
// {"status": "success"|"error", ...} envelope; OTP and validation failures
// are returned inside the envelope, not as transport errors.
type Handler struct {
	store       *alerts.SettingsStore
	history     *alerts.History
	evaluator   *alerts.Evaluator
	broadcaster *alerts.Broadcaster
	otp         *otp.Service
	terrain     *terrain.Client
	weather     *weather.Client
	pois        *pois.Client
	geocode     *geocode.Client
	news        *news.Client
	explain     *explain.Service
}

func NewHandler(store *alerts.SettingsStore, history *alerts.History, evaluator *alerts.Evaluator, broadcaster *alerts.Broadcaster, otpSvc *otp.Service, terrainClient *terrain.Client, weatherClient *weather.Client, poisClient *pois.Client, geocodeClient *geocode.Client, newsClient *news.Client, explainSvc *explain.Service) *Handler {
	return &Handler{
		store:       store,
		history:     history,
		evaluator:   evaluator,
		broadcaster: broadcaster,
		otp:         otpSvc,
		terrain:     terrainClient,
		weather:     weatherClient,
		pois:        poisClient,
		geocode:     geocodeClient,
		news:        newsClient,
		explain:     explainSvc,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.root)
	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/simulate", h.simulate)
	r.POST("/chat_explanation", h.chatExplanation)
	r.GET("/weather_forecast", h.weatherForecast)
	r.GET("/safe_zones", h.safeZones)
	r.GET("/local_news", h.localNews)

	r.POST("/alert/settings", h.saveSettings)
	r.GET("/alert/settings", h.getSettings)
	r.GET("/alert/debug", h.debugSettings)
	r.POST("/alert/check", h.checkAlerts)
	r.GET("/alert/history", h.getHistory)
	r.DELETE("/alert/history", h.clearHistory)
	r.POST("/alert/check_saved_location", h.checkSavedLocation)
	r.GET("/alert/stream", h.streamAlerts)

	r.POST("/alert/send_verification_otp", h.sendVerificationOTP)
	r.POST("/alert/verify_otp", h.verifyOTP)
	r.GET("/alert/verification_status", h.verificationStatus)
}

func (h *Handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Kavach Backend API", "status": "running"})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type simulationInput struct {
	Lat               float64 `json:"lat" binding:"required"`
	Lon               float64 `json:"lon" binding:"required"`
	RainfallIntensity float64 `json:"rainfall_intensity"`
	DurationHours     int     `json:"duration_hours"`
	SoilMoisture      float64 `json:"soil_moisture"`
	SlopeAngle        float64 `json:"slope_angle"`
	Elevation         float64 `json:"elevation"`
	DrainageDensity   float64 `json:"drainage_density"`
	UseLiveWeather    bool    `json:"use_live_weather"`
}

func (h *Handler) simulate(c *gin.Context) {
	var in simulationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid simulation input"})
		return
	}

	ctx := c.Request.Context()

	slope, _, err := h.terrain.SlopeAndElevation(ctx, in.Lat, in.Lon)
	if err != nil {
		// Terrain API outages degrade to a moderate default rather than
		// failing the simulation.
		slope = 15.0
	}

	profile, err := h.terrain.Profile(ctx, in.Lat, in.Lon)
	if err != nil || len(profile) == 0 {
		profile = []float64{500, 500, 500, 500, 500, 500, 500, 500, 500, 500}
	}

	landslide := risk.LandslideScore(slope, in.RainfallIntensity)
	level := risk.SimulationLevel(landslide)

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"results": gin.H{
			"landslide_risk":    round2(landslide),
			"flood_risk":        round2(risk.FloodScore(in.RainfallIntensity)),
			"alert_level":       level,
			"recommendation":    risk.Recommendation(level),
			"elevation_profile": profile,
			"slope_calculated":  slope,
		},
	})
}

type explanationInput struct {
	LandslideRisk     float64 `json:"landslide_risk"`
	SlopeCalculated   float64 `json:"slope_calculated"`
	RainfallIntensity float64 `json:"rainfall_intensity"`
}

func (h *Handler) chatExplanation(c *gin.Context) {
	var in explanationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid risk data"})
		return
	}

	text := h.explain.Explain(c.Request.Context(), explain.Input{
		LandslideRisk:     in.LandslideRisk,
		SlopeDeg:          in.SlopeCalculated,
		RainfallIntensity: in.RainfallIntensity,
	})
	c.JSON(http.StatusOK, gin.H{"explanation": text})
}

func (h *Handler) weatherForecast(c *gin.Context) {
	lat, lon, ok := latLonQuery(c)
	if !ok {
		return
	}

	fc, err := h.weather.Fetch(c.Request.Context(), lat, lon)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"status": "error", "message": "Weather API unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"forecast": fc.Hours,
		"summary":  fc.Summary,
	})
}

func (h *Handler) safeZones(c *gin.Context) {
	lat, lon, ok := latLonQuery(c)
	if !ok {
		return
	}
	radius := 5.0
	if r := c.Query("radius"); r != "" {
		if v, err := strconv.ParseFloat(r, 64); err == nil && v > 0 {
			radius = v
		}
	}

	zones, total, err := h.pois.Nearby(c.Request.Context(), lat, lon, radius)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"status":     "error",
			"message":    "Safe zones API is currently unavailable. Please try again later.",
			"safe_zones": []pois.SafeZone{},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"safe_zones":  zones,
		"total_found": total,
	})
}

func (h *Handler) localNews(c *gin.Context) {
	lat, lon, ok := latLonQuery(c)
	if !ok {
		return
	}

	place := h.geocode.PlaceName(c.Request.Context(), lat, lon)
	articles := h.news.Local(c.Request.Context(), place)
	if articles == nil {
		articles = []news.Article{}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"location": place,
		"news":     articles,
	})
}

func (h *Handler) saveSettings(c *gin.Context) {
	userID := c.DefaultQuery("user_id", "default")

	var settings models.AlertSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid settings payload"})
		return
	}

	h.store.Put(userID, settings)
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Alert settings saved"})
}

func (h *Handler) getSettings(c *gin.Context) {
	userID := c.DefaultQuery("user_id", "default")
	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"settings": h.store.Get(userID),
	})
}

func (h *Handler) debugSettings(c *gin.Context) {
	all := h.store.All()
	users := make([]string, 0, len(all))
	for id := range all {
		users = append(users, id)
	}
	c.JSON(http.StatusOK, gin.H{
		"status":           "success",
		"all_users":        users,
		"settings_by_user": all,
	})
}

func (h *Handler) checkAlerts(c *gin.Context) {
	userID := c.DefaultQuery("user_id", "default")

	var metrics models.Metrics
	if err := c.ShouldBindJSON(&metrics); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid metrics payload"})
		return
	}

	result := h.evaluator.Evaluate(c.Request.Context(), userID, metrics)
	if !result.Configured {
		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"alerts":  []models.Alert{},
			"message": "No settings configured",
		})
		return
	}

	alertList := result.Alerts
	if alertList == nil {
		alertList = []models.Alert{}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"alerts": alertList,
		"notifications": gin.H{
			"email_sent": result.EmailSent,
			"sms_sent":   result.SMSSent,
		},
	})
}

func (h *Handler) getHistory(c *gin.Context) {
	limit := 50
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"alerts": h.history.Recent(limit),
	})
}

func (h *Handler) clearHistory(c *gin.Context) {
	h.history.Clear()
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Alert history cleared"})
}

func (h *Handler) checkSavedLocation(c *gin.Context) {
	userID := c.DefaultQuery("user_id", "default")

	settings, ok := h.store.Lookup(userID)
	if !ok || settings.AlertLat == nil || settings.AlertLng == nil {
		c.JSON(http.StatusOK, gin.H{
			"status":  "error",
			"message": "No alert location configured. Please set a location in alert settings.",
		})
		return
	}

	location := settings.AlertLocation
	if location == "" {
		location = fmt.Sprintf("%g, %g", *settings.AlertLat, *settings.AlertLng)
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"message":  fmt.Sprintf("Monitoring location: %.4f, %.4f", *settings.AlertLat, *settings.AlertLng),
		"location": location,
	})
}

// streamAlerts pushes newly generated alerts to the client as SSE events.
func (h *Handler) streamAlerts(c *gin.Context) {
	id, ch := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(id)

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case alert, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("alert", alert)
			return true
		}
	})
}

type otpIssueInput struct {
	UserID string `json:"user_id"`
	Phone  string `json:"phone"`
}

func (h *Handler) sendVerificationOTP(c *gin.Context) {
	var in otpIssueInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid request"})
		return
	}
	if in.UserID == "" {
		in.UserID = "default"
	}

	err := h.otp.Issue(c.Request.Context(), in.UserID, in.Phone)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"message": fmt.Sprintf("Verification code sent to %s", in.Phone),
		})
	case errors.Is(err, otp.ErrEmptyPhone):
		c.JSON(http.StatusOK, gin.H{"status": "error", "message": "Phone number is required"})
	case errors.Is(err, otp.ErrNotConfigured):
		c.JSON(http.StatusOK, gin.H{"status": "error", "message": "SMS service not configured. Please contact administrator."})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "error", "message": "Failed to send verification code. Please try again later."})
	}
}

type otpVerifyInput struct {
	UserID string `json:"user_id"`
	OTP    string `json:"otp"`
}

func (h *Handler) verifyOTP(c *gin.Context) {
	var in otpVerifyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid request"})
		return
	}
	if in.UserID == "" {
		in.UserID = "default"
	}

	phone, err := h.otp.Verify(in.UserID, in.OTP)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"message": "Phone number verified successfully!",
			"phone":   phone,
		})
	case errors.Is(err, otp.ErrNotFound):
		c.JSON(http.StatusOK, gin.H{"status": "error", "message": "No OTP found. Please request a new one."})
	case errors.Is(err, otp.ErrExpired):
		c.JSON(http.StatusOK, gin.H{"status": "error", "message": "OTP expired. Please request a new one."})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "error", "message": "Invalid OTP. Please try again."})
	}
}

func (h *Handler) verificationStatus(c *gin.Context) {
	userID := c.DefaultQuery("user_id", "default")

	st := h.otp.Status(userID)
	if !st.Verified {
		c.JSON(http.StatusOK, gin.H{"status": "success", "verified": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "success",
		"verified": true,
		"phone":    st.Phone,
	})
}

func latLonQuery(c *gin.Context) (lat, lon float64, ok bool) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lon, err2 := strconv.ParseFloat(c.Query("lon"), 64)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "lat and lon are required"})
		return 0, 0, false
	}
	return lat, lon, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
