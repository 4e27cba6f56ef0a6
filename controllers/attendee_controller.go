package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"jesa-attendance/applications/attendee"
	"jesa-attendance/applications/badge"
	"jesa-attendance/applications/notify"
	"jesa-attendance/db"
	"jesa-attendance/domain"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	msgMarked        = "Attendee marked successfully!"
	msgSMSSent       = "SMS sent successfully!"
	msgSMSFailed     = "SMS sent failed!"
	msgInternalError = "Internal Server Error"

	// maxBodySize caps add and update payloads.
	maxBodySize = "64K"
)

// WriteResponse reports the outcome of a write and of the SMS that followed it.
type WriteResponse struct {
	Message string `json:"message"`
	SMS     string `json:"sms"`
	Error   string `json:"error,omitempty"`
}

type AttendeeController struct {
	log       *slog.Logger
	notifier  notify.Sender
	eventName string

	getAll *attendee.GetAllAttendeesUC
	get    *attendee.GetAttendeeUC
	export *attendee.ExportAttendeesUC
	mark   *attendee.MarkAttendeeUC
	add    *attendee.AddAttendeeUC
	update *attendee.UpdateAttendeeUC
}

func NewAttendeeController(log *slog.Logger, store db.Store, notifier notify.Sender, eventName string) *AttendeeController {
	return &AttendeeController{
		log:       log,
		notifier:  notifier,
		eventName: eventName,
		getAll:    attendee.NewGetAllAttendeesUC(log, store),
		get:       attendee.NewGetAttendeeUC(log, store),
		export:    attendee.NewExportAttendeesUC(log, store),
		mark:      attendee.NewMarkAttendeeUC(log, store),
		add:       attendee.NewAddAttendeeUC(log, store),
		update:    attendee.NewUpdateAttendeeUC(log, store),
	}
}

// Register mounts the attendee routes under /user.
func (ac *AttendeeController) Register(e *echo.Echo) {
	g := e.Group("/user", middleware.BodyLimit(maxBodySize))
	g.GET("/list", ac.List)
	g.GET("/list-download", ac.Download)
	g.GET("/badge/:id", ac.Badge)
	g.POST("/mark/:contactNo", ac.Mark)
	g.POST("/add", ac.Add)
	g.PUT("/update/:id", ac.Update)
}

// List handles GET /user/list.
func (ac *AttendeeController) List(c echo.Context) error {
	records, err := ac.getAll.Invoke(c.Request().Context())
	if err != nil {
		return ac.fail(c, err, "")
	}
	return c.JSON(http.StatusOK, records)
}

// Download handles GET /user/list-download.
func (ac *AttendeeController) Download(c echo.Context) error {
	path, err := ac.export.Invoke(c.Request().Context())
	if err != nil {
		return ac.fail(c, err, "")
	}
	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	return c.Attachment(path, db.CSVFileName)
}

// Badge handles GET /user/badge/:id.
func (ac *AttendeeController) Badge(c echo.Context) error {
	id := c.Param("id")
	a, err := ac.get.Invoke(c.Request().Context(), id)
	if err != nil {
		return ac.fail(c, err, "Attendee not found")
	}

	pdf, err := badge.GenerateBadgePDF(a, ac.eventName)
	if err != nil {
		return ac.fail(c, err, "")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=badge-%s.pdf", a.ID))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// Mark handles POST /user/mark/:contactNo.
func (ac *AttendeeController) Mark(c echo.Context) error {
	contactNo := c.Param("contactNo")
	a, err := ac.mark.Invoke(c.Request().Context(), contactNo)
	if err != nil {
		return ac.fail(c, err, "Attendee not found!")
	}
	return ac.notify(c, a)
}

// Add handles POST /user/add.
func (ac *AttendeeController) Add(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		ac.log.Warn(fmt.Sprintf("[attendee-controller] Error reading payload: %v", err))
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload."})
	}

	a, err := ac.add.Invoke(c.Request().Context(), payload)
	if err != nil {
		return ac.fail(c, err, "")
	}
	return ac.notify(c, a)
}

// Update handles PUT /user/update/:id.
func (ac *AttendeeController) Update(c echo.Context) error {
	id := c.Param("id")
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		ac.log.Warn(fmt.Sprintf("[attendee-controller] Error reading payload for %s: %v", id, err))
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload."})
	}

	a, err := ac.update.Invoke(c.Request().Context(), id, payload)
	if err != nil {
		return ac.fail(c, err, "Attendee not found")
	}
	return ac.notify(c, a)
}

// notify runs after the write has been persisted; its outcome only shapes the body.
func (ac *AttendeeController) notify(c echo.Context, a domain.Attendee) error {
	ctx := context.WithoutCancel(c.Request().Context())
	res := ac.notifier.Send(ctx, a.ContactNo, a.Name)
	if res.OK() {
		return c.JSON(http.StatusOK, WriteResponse{Message: msgMarked, SMS: msgSMSSent})
	}
	return c.JSON(http.StatusOK, WriteResponse{Message: msgMarked, SMS: msgSMSFailed, Error: res.Message})
}

func (ac *AttendeeController) fail(c echo.Context, err error, notFound string) error {
	switch {
	case errors.Is(err, domain.ErrNotFound) && notFound != "":
		return c.JSON(http.StatusNotFound, map[string]string{"error": notFound})
	case errors.Is(err, domain.ErrInvalidPayload):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, db.ErrDuplicateContact):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	}

	ac.log.Error(fmt.Sprintf("[attendee-controller] %s %s failed: %v", c.Request().Method, c.Path(), err))
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": msgInternalError})
}
