package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"monitor-console/internal/config"
	"monitor-console/internal/export"
	"monitor-console/internal/importer"
	"monitor-console/internal/models"
	"monitor-console/internal/notify"
	"monitor-console/internal/platform"
	"monitor-console/internal/session"
	"monitor-console/internal/sheet"
	"monitor-console/internal/store"
)

type Handler struct {
	log      *logrus.Logger
	cfg      config.Config
	session  *session.Session
	hub      *notify.Hub
	entities      map[string]Entity
	stores        map[string]*store.Store[map[string]any]
	messages      *store.MessageStore
	alerts        *store.AlertStore
	alertChannels *store.Store[models.AlertChannel]
	alertHistory  *store.Store[models.AlertHistory]
	pipeline      *importer.Pipeline
	exporter      *export.Aggregator
}

func NewHandler(cfg config.Config, log *logrus.Logger, client *platform.Client, sess *session.Session, hub *notify.Hub, preferences store.Preferences) *Handler {
	h := &Handler{
		log:      log,
		cfg:      cfg,
		session:  sess,
		hub:      hub,
		entities: make(map[string]Entity),
		stores:   make(map[string]*store.Store[map[string]any]),
		pipeline: importer.New(client, sess, hub, log, cfg.Import.ChunkSize),
		exporter: export.New(client, sess, hub, log),
	}
	for _, ent := range Entities() {
		h.entities[ent.Name] = ent
		h.stores[ent.Name] = store.New[map[string]any](client, sess, hub, log)
	}

	messageBase := store.New[models.Message](client, sess, hub, log)
	h.messages = store.NewMessageStore(messageBase, messageListPath, preferences, log)

	alertBase := store.New[models.Alert](client, sess, hub, log)
	h.alerts = store.NewAlertStore(alertBase, client, sess, hub, alertBasePath)

	h.alertChannels = store.New[models.AlertChannel](client, sess, hub, log)
	h.alertHistory = store.New[models.AlertHistory](client, sess, hub, log)

	return h
}

// Messages returns the feed controller so main can bridge refreshes onto the
// event hub.
func (h *Handler) Messages() *store.MessageStore {
	return h.messages
}

func respond(c *gin.Context, status int, message string, payload any) {
	c.JSON(status, gin.H{"code": status, "message": message, "payload": payload})
}

func listArgs(c *gin.Context) store.ListOptions {
	opt := store.ListOptions{Page: 1}
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		opt.Page = page
	}
	if raw := c.Query("filter_by"); raw != "" {
		_ = json.Unmarshal([]byte(raw), &opt.FilterBy)
	}
	if raw := c.Query("sort_by"); raw != "" {
		_ = json.Unmarshal([]byte(raw), &opt.SortBy)
	}
	return opt
}

func (h *Handler) entity(c *gin.Context) (Entity, *store.Store[map[string]any], bool) {
	name := c.Param("entity")
	ent, ok := h.entities[name]
	if !ok {
		respond(c, http.StatusNotFound, "unknown entity: "+name, nil)
		return Entity{}, nil, false
	}
	return ent, h.stores[name], true
}

func (h *Handler) ListEntity(c *gin.Context) {
	ent, s, ok := h.entity(c)
	if !ok {
		return
	}
	s.List(c.Request.Context(), ent.List, listArgs(c))
	respond(c, http.StatusOK, "", gin.H{
		"data":         s.Data(),
		"page_context": s.PageContext(),
	})
}

func (h *Handler) CreateEntity(c *gin.Context) {
	ent, s, ok := h.entity(c)
	if !ok {
		return
	}
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	saved := false
	s.Save(c.Request.Context(), ent.Base, body, func() { saved = true })
	if !saved {
		respond(c, http.StatusBadGateway, "save failed", nil)
		return
	}
	respond(c, http.StatusOK, "saved", nil)
}

func (h *Handler) UpdateEntity(c *gin.Context) {
	ent, s, ok := h.entity(c)
	if !ok {
		return
	}
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	saved := false
	s.Update(c.Request.Context(), ent.Base+"/"+c.Param("id"), body, func() { saved = true })
	if !saved {
		respond(c, http.StatusBadGateway, "update failed", nil)
		return
	}
	respond(c, http.StatusOK, "updated", nil)
}

func (h *Handler) DeleteEntity(c *gin.Context) {
	ent, s, ok := h.entity(c)
	if !ok {
		return
	}
	idField := c.DefaultQuery("id_field", "_id")
	if !s.Delete(c.Request.Context(), ent.Base, c.Param("id"), idField) {
		respond(c, http.StatusBadGateway, "delete failed", nil)
		return
	}
	respond(c, http.StatusOK, "deleted", nil)
}

func (h *Handler) ImportEntity(c *gin.Context) {
	ent, _, ok := h.entity(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respond(c, http.StatusBadRequest, "missing upload file", nil)
		return
	}
	defer file.Close()

	reader, ok := sheet.ReaderFor(header.Filename)
	if !ok {
		respond(c, http.StatusUnsupportedMediaType, header.Filename+" is not a supported file", nil)
		return
	}
	parsed, err := reader.Read(file)
	if err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}

	h.pipeline.SetRows(parsed)
	h.pipeline.Import(c.Request.Context(), ent.Base+"/import", ent.Key, ent.Schema)
	respond(c, http.StatusOK, "", h.pipeline.Rows())
}

func (h *Handler) ExportEntity(c *gin.Context) {
	ent, _, ok := h.entity(c)
	if !ok {
		return
	}

	ext := c.DefaultQuery("format", sheet.ExtCSV)
	writer, ok := sheet.WriterFor(ext)
	if !ok {
		respond(c, http.StatusBadRequest, "unsupported export format: "+ext, nil)
		return
	}

	var buf bytes.Buffer
	n, ok := h.exporter.Export(c.Request.Context(), ent.List, ent.Fields, writer, &buf)
	if !ok {
		respond(c, http.StatusBadGateway, "export failed", nil)
		return
	}
	if n == 0 {
		respond(c, http.StatusOK, "No data to export", nil)
		return
	}

	filename := fmt.Sprintf("%s-%s.%s", ent.Name, time.Now().Format("20060102-150405"), ext)
	contentType := "text/csv"
	if ext == sheet.ExtXLSX {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (h *Handler) ListAlerts(c *gin.Context) {
	h.alerts.List(c.Request.Context(), alertListPath, listArgs(c))
	respond(c, http.StatusOK, "", gin.H{
		"data":         h.alerts.Data(),
		"page_context": h.alerts.PageContext(),
	})
}

type alertSaveRequest struct {
	Info    models.AlertInfo         `json:"info"`
	Filters []models.AlertFilterForm `json:"filters"`
}

func (h *Handler) CreateAlert(c *gin.Context) {
	var req alertSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	saved := false
	h.alerts.SaveAlert(c.Request.Context(), req.Info, req.Filters, models.ActionCreate, func() { saved = true })
	if !saved {
		respond(c, http.StatusBadGateway, "save failed", nil)
		return
	}
	respond(c, http.StatusOK, "saved", nil)
}

func (h *Handler) UpdateAlert(c *gin.Context) {
	var req alertSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	req.Info.ID = c.Param("id")
	saved := false
	h.alerts.SaveAlert(c.Request.Context(), req.Info, req.Filters, models.ActionUpdate, func() { saved = true })
	if !saved {
		respond(c, http.StatusBadGateway, "update failed", nil)
		return
	}
	respond(c, http.StatusOK, "updated", nil)
}

func (h *Handler) EditAlert(c *gin.Context) {
	loaded := false
	h.alerts.Edit(c.Request.Context(), c.Param("id"), func() { loaded = true })
	if !loaded {
		respond(c, http.StatusBadGateway, "load failed", nil)
		return
	}
	info, filters := h.alerts.Form()
	respond(c, http.StatusOK, "", gin.H{"info": info, "filters": filters})
}

func (h *Handler) DeleteAlert(c *gin.Context) {
	if !h.alerts.Delete(c.Request.Context(), alertBasePath, c.Param("id"), "_id") {
		respond(c, http.StatusBadGateway, "delete failed", nil)
		return
	}
	respond(c, http.StatusOK, "deleted", nil)
}

func (h *Handler) ListAlertChannels(c *gin.Context) {
	h.alertChannels.List(c.Request.Context(), alertChannelListPath, listArgs(c))
	respond(c, http.StatusOK, "", gin.H{
		"data":         h.alertChannels.Data(),
		"page_context": h.alertChannels.PageContext(),
	})
}

func (h *Handler) CreateAlertChannel(c *gin.Context) {
	var req models.AlertChannelInfo
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	saved := false
	h.alertChannels.Save(c.Request.Context(), alertChannelBasePath, req, func() { saved = true })
	if !saved {
		respond(c, http.StatusBadGateway, "save failed", nil)
		return
	}
	respond(c, http.StatusOK, "saved", nil)
}

func (h *Handler) DeleteAlertChannel(c *gin.Context) {
	if !h.alertChannels.Delete(c.Request.Context(), alertChannelBasePath, c.Param("id"), "_id") {
		respond(c, http.StatusBadGateway, "delete failed", nil)
		return
	}
	respond(c, http.StatusOK, "deleted", nil)
}

func (h *Handler) ListAlertHistory(c *gin.Context) {
	h.alertHistory.List(c.Request.Context(), alertHistoryListPath, listArgs(c))
	respond(c, http.StatusOK, "", gin.H{
		"data":         h.alertHistory.Data(),
		"page_context": h.alertHistory.PageContext(),
	})
}

func (h *Handler) ListMessages(c *gin.Context) {
	opt := listArgs(c)
	if from, to := c.Query("received_from"), c.Query("received_to"); from != "" || to != "" {
		var window models.DateRange
		if v, err := strconv.ParseInt(from, 10, 64); err == nil {
			window.Start = v
		}
		if v, err := strconv.ParseInt(to, 10, 64); err == nil {
			window.End = v
		}
		if opt.FilterBy == nil {
			opt.FilterBy = map[string]any{}
		}
		opt.FilterBy["received_at"] = window
	}
	h.messages.ListMessages(c.Request.Context(), opt.FilterBy, opt.SortBy, opt.Page)
	respond(c, http.StatusOK, "", gin.H{
		"data":              h.messages.Data(),
		"page_context":      h.messages.PageContext(),
		"highlight_weight":  h.messages.HighlightWeight(),
		"highlight_content": h.messages.HighlightContent(),
	})
}

func (h *Handler) GetMessagePreferences(c *gin.Context) {
	respond(c, http.StatusOK, "", gin.H{
		"refresh_interval_ms": h.messages.RefreshInterval().Milliseconds(),
		"highlight_content":   h.messages.HighlightContent(),
		"refresh_options":     store.RefreshOptions(),
	})
}

type messagePreferences struct {
	RefreshIntervalMS *int64 `json:"refresh_interval_ms"`
	HighlightContent  *bool  `json:"highlight_content"`
}

func (h *Handler) UpdateMessagePreferences(c *gin.Context) {
	var req messagePreferences
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if req.RefreshIntervalMS != nil {
		interval := time.Duration(*req.RefreshIntervalMS) * time.Millisecond
		if !validRefreshInterval(interval) {
			respond(c, http.StatusBadRequest, "unsupported refresh interval", nil)
			return
		}
		h.messages.SetRefreshInterval(interval)
	}
	if req.HighlightContent != nil {
		h.messages.SetHighlightContent(c.Request.Context(), *req.HighlightContent)
	}
	h.GetMessagePreferences(c)
}

func validRefreshInterval(interval time.Duration) bool {
	for _, opt := range store.RefreshOptions() {
		if opt.Interval == interval {
			return true
		}
	}
	return false
}

type tokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// SetToken stores the upstream access token the dashboard obtained at login.
func (h *Handler) SetToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	h.session.SetToken(req.Token)
	respond(c, http.StatusOK, "token updated", nil)
}
