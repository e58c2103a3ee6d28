// internal/api/handlers.go
package api

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"interview-backend/internal/booking"
	"interview-backend/internal/common/config"
	"interview-backend/internal/common/errors"
	"interview-backend/internal/common/logger"
	"interview-backend/internal/livekit"
	"interview-backend/internal/models"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// ==========================
// Service Interfaces
// ==========================

type ResumeProcessor interface {
	Validate(size int64, filename, contentType string) error
	ExtractText(data []byte, filename string) (string, error)
}

type ResumeStorage interface {
	UploadResume(ctx context.Context, data []byte, filename, contentType string) (string, error)
}

type BookingStore interface {
	Create(ctx context.Context, params booking.CreateParams) (string, error)
	GetByToken(ctx context.Context, token string) (*models.Booking, error)
}

type Notifier interface {
	SendInterviewEmail(ctx context.Context, to, name, interviewURL string, scheduledAt time.Time) (bool, string)
	SendInterviewSMS(ctx context.Context, phone, interviewURL string, scheduledAt time.Time) (bool, string)
}

type TokenIssuer interface {
	NewSession(agentName, resumeText string) (*livekit.ConnectionDetails, error)
}

// Services bundles everything the handlers call out to.
type Services struct {
	Resume   ResumeProcessor
	Storage  ResumeStorage
	Bookings BookingStore
	Notify   Notifier
	Tokens   TokenIssuer
}

// ==========================
// Request / Response Models
// ==========================

type ScheduleInterviewRequest struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Datetime   string  `json:"datetime"`
	ResumeURL  *string `json:"resumeUrl"`
	ResumeText *string `json:"resumeText"`
}

func (r ScheduleInterviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Phone, validation.Required),
		validation.Field(&r.Datetime, validation.Required),
	)
}

type ScheduleInterviewResponse struct {
	OK           bool   `json:"ok"`
	InterviewURL string `json:"interviewUrl"`
	EmailSent    bool   `json:"emailSent"`
	EmailError   string `json:"emailError,omitempty"`
}

type UploadApplicationResponse struct {
	ResumeURL       string `json:"resumeUrl"`
	ResumeText      string `json:"resumeText,omitempty"`
	ExtractionError string `json:"extractionError,omitempty"`
}

type ConnectionDetailsRequest struct {
	RoomConfig *RoomConfigRequest `json:"room_config"`
	Token      string             `json:"token"`
}

type RoomConfigRequest struct {
	Agents []AgentRequest `json:"agents"`
}

type AgentRequest struct {
	AgentName string `json:"agent_name"`
}

type ConnectionDetailsResponse struct {
	ServerURL        string `json:"serverUrl"`
	RoomName         string `json:"roomName"`
	ParticipantName  string `json:"participantName"`
	ParticipantToken string `json:"participantToken"`
}

// ==========================
// Handler
// ==========================

type Handler struct {
	services      Services
	frontendURL   string
	offsetMinutes int
	logger        logger.Logger
	errs          *errors.ErrorHandler
}

func NewHandler(cfg *config.Config, services Services, log logger.Logger) *Handler {
	return &Handler{
		services:      services,
		frontendURL:   strings.TrimRight(cfg.Server.FrontendURL, "/"),
		offsetMinutes: cfg.Schedule.OffsetMinutes(),
		logger:        log.WithFields(map[string]interface{}{"service": "api"}),
		errs:          errors.NewErrorHandler(log),
	}
}

// Root is the legacy health endpoint the frontend polls.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "interview-scheduling-api",
	})
}

// UploadApplication accepts a multipart resume, stores it, and extracts its
// text. Extraction failure never fails the upload.
func (h *Handler) UploadApplication(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.errs.HandleRequestError(c, errors.NewInvalidFileError("multipart field 'file' is required"))
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	h.logger.Info("received application upload", map[string]interface{}{
		"filename":    fileHeader.Filename,
		"contentType": contentType,
		"size":        fileHeader.Size,
	})

	if err := h.services.Resume.Validate(fileHeader.Size, fileHeader.Filename, contentType); err != nil {
		h.errs.HandleRequestError(c, err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.errs.HandleRequestError(c, errors.NewInvalidFileError(err.Error()))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.errs.HandleRequestError(c, errors.NewInvalidFileError(err.Error()))
		return
	}

	resumeURL, err := h.services.Storage.UploadResume(c.Request.Context(), data, fileHeader.Filename, contentType)
	if err != nil {
		h.errs.HandleRequestError(c, errors.NewStorageUploadFailedError(err))
		return
	}

	resp := UploadApplicationResponse{ResumeURL: resumeURL}

	text, err := h.services.Resume.ExtractText(data, fileHeader.Filename)
	if err != nil {
		resp.ExtractionError = err.Error()
		h.logger.Warn("application uploaded but text extraction failed", map[string]interface{}{
			"filename": fileHeader.Filename,
			"error":    err.Error(),
		})
	} else {
		resp.ResumeText = text
		h.logger.Info("application processed", map[string]interface{}{
			"filename":  fileHeader.Filename,
			"extracted": len(text),
			"resumeUrl": resumeURL,
		})
	}

	c.JSON(http.StatusOK, resp)
}

// ScheduleInterview creates a booking and sends the confirmation email. Email
// delivery failure is reported in the payload, never as a request failure.
func (h *Handler) ScheduleInterview(c *gin.Context) {
	var req ScheduleInterviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.HandleRequestError(c, errors.NewMissingFieldsError(err.Error()))
		return
	}

	if err := req.Validate(); err != nil {
		h.errs.HandleRequestError(c, errors.NewMissingFieldsError(err.Error()))
		return
	}

	h.logger.Info("received schedule request", map[string]interface{}{
		"email":    req.Email,
		"datetime": req.Datetime,
	})

	scheduledAt, err := parseScheduleTime(req.Datetime, h.offsetMinutes)
	if err != nil {
		h.errs.HandleRequestError(c, errors.NewInvalidDatetimeError(req.Datetime))
		return
	}

	token, err := h.services.Bookings.Create(c.Request.Context(), booking.CreateParams{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		ScheduledAt: scheduledAt,
		ResumeText:  req.ResumeText,
		ResumeURL:   req.ResumeURL,
	})
	if err != nil {
		h.errs.HandleRequestError(c, errors.NewBookingCreateFailedError(err))
		return
	}

	interviewURL := h.frontendURL + "/interview/" + token

	emailSent, emailError := h.services.Notify.SendInterviewEmail(
		c.Request.Context(), req.Email, req.Name, interviewURL, scheduledAt)

	smsSent, _ := h.services.Notify.SendInterviewSMS(
		c.Request.Context(), req.Phone, interviewURL, scheduledAt)

	h.logger.Info("interview scheduled", map[string]interface{}{
		"token":        token,
		"interviewUrl": interviewURL,
		"emailSent":    emailSent,
		"smsSent":      smsSent,
	})

	c.JSON(http.StatusOK, ScheduleInterviewResponse{
		OK:           true,
		InterviewURL: interviewURL,
		EmailSent:    emailSent,
		EmailError:   emailError,
	})
}

// GetBooking returns the booking for a token.
func (h *Handler) GetBooking(c *gin.Context) {
	token := c.Param("token")

	b, err := h.services.Bookings.GetByToken(c.Request.Context(), token)
	if err != nil {
		if err == booking.ErrNotFound {
			h.errs.HandleRequestError(c, errors.NewBookingNotFoundError(token))
			return
		}
		h.errs.HandleRequestError(c, errors.NewBookingQueryFailedError(err))
		return
	}

	c.JSON(http.StatusOK, b)
}

// ConnectionDetails issues the credentials a browser needs to join a live
// interview session. When a booking token is supplied its resume text is
// attached to the agent dispatch; a failed lookup only means no resume.
func (h *Handler) ConnectionDetails(c *gin.Context) {
	var req ConnectionDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		h.errs.HandleRequestError(c, errors.NewMissingFieldsError(err.Error()))
		return
	}

	agentName := ""
	if req.RoomConfig != nil && len(req.RoomConfig.Agents) > 0 {
		agentName = req.RoomConfig.Agents[0].AgentName
	}

	resumeText := ""
	if req.Token != "" {
		b, err := h.services.Bookings.GetByToken(c.Request.Context(), req.Token)
		if err != nil {
			h.logger.Warn("booking lookup for resume context failed", map[string]interface{}{
				"token": req.Token,
				"error": err.Error(),
			})
		} else if b.ResumeText != nil {
			resumeText = *b.ResumeText
		}
	}

	details, err := h.services.Tokens.NewSession(agentName, resumeText)
	if err != nil {
		h.errs.HandleRequestError(c, err)
		return
	}

	h.logger.Info("issued connection details", map[string]interface{}{
		"roomName":        details.RoomName,
		"participantName": details.ParticipantName,
	})

	c.JSON(http.StatusOK, ConnectionDetailsResponse{
		ServerURL:        details.ServerURL,
		RoomName:         details.RoomName,
		ParticipantName:  details.ParticipantName,
		ParticipantToken: details.ParticipantToken,
	})
}
