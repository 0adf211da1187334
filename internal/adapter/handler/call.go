package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-coach/errors"
	"github.com/johnquangdev/call-coach/internal/adapter/dto/call"
	"github.com/johnquangdev/call-coach/internal/adapter/presenter"
	callUsecase "github.com/johnquangdev/call-coach/internal/usecase/call"
)

const defaultListLimit = 20

// Content types accepted without a warning
var knownAudioTypes = map[string]bool{
	"audio/wav":                true,
	"audio/x-wav":              true,
	"audio/wave":               true,
	"audio/mpeg":               true,
	"audio/mp3":                true,
	"application/octet-stream": true,
}

// Call handles call-related HTTP requests
type Call struct {
	callService callUsecase.Service
	logger      *zap.Logger
}

// NewCallHandler creates a new call handler
func NewCallHandler(callService callUsecase.Service, logger *zap.Logger) *Call {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Call{
		callService: callService,
		logger:      logger,
	}
}

// Transcribe handles POST /transcribe
// @Summary      Transcribe a sales-call audio clip
// @Description  Uploads audio and runs transcription, speaker segmentation, sentiment and coachable-moment detection before responding
// @Tags         Calls
// @Accept       multipart/form-data
// @Produce      json
// @Param        audio        formData  file    true   "Audio file (WAV or MP3)"
// @Param        call_id      formData  string  false  "Unique call identifier, generated when omitted"
// @Param        agent_id     formData  string  false  "Sales agent identifier"  default(System)
// @Param        customer_id  formData  string  false  "Customer identifier"  default(Customer)
// @Success      200  {object}  common.SuccessResponse{data=call.TranscribeResponse}
// @Failure      400  {object}  common.ErrorResponse  "Missing audio or invalid form"
// @Failure      409  {object}  common.ErrorResponse  "Call ID already exists"
// @Failure      413  {object}  common.ErrorResponse  "File too large"
// @Failure      422  {object}  common.ErrorResponse  "Audio could not be processed"
// @Failure      500  {object}  common.ErrorResponse  "Processing failed"
// @Router       /transcribe [post]
func (h *Call) Transcribe(c echo.Context) error {
	var req call.TranscribeRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}

	file, err := c.FormFile("audio")
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("audio file is required"))
	}

	contentType := file.Header.Get(echo.HeaderContentType)
	if contentType != "" && !knownAudioTypes[contentType] {
		h.logger.Warn("likely unsupported audio format",
			zap.String("content_type", contentType),
			zap.String("filename", file.Filename),
		)
	}

	src, err := file.Open()
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}
	defer src.Close()

	result, err := h.callService.Submit(c.Request().Context(), callUsecase.SubmitInput{
		CallID:      req.CallID,
		AgentID:     req.AgentID,
		CustomerID:  req.CustomerID,
		Filename:    file.Filename,
		ContentType: contentType,
		Size:        file.Size,
		Audio:       src,
	})
	if err != nil {
		return HandleError(h.logger, c, errors.FromDomain(err, req.CallID))
	}

	return HandleSuccess(h.logger, c, http.StatusOK, presenter.ToTranscribeResponse(result))
}

// ListCalls handles GET /calls
// @Summary      List recent calls
// @Description  Lists the most recent calls, newest first
// @Tags         Calls
// @Produce      json
// @Param        limit  query     int  false  "Maximum number of calls"  default(20)
// @Success      200    {object}  common.SuccessResponse{data=call.CallListResponse}
// @Failure      400    {object}  common.ErrorResponse  "Invalid limit"
// @Router       /calls [get]
func (h *Call) ListCalls(c echo.Context) error {
	req := call.ListCallsRequest{Limit: defaultListLimit}
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}

	calls, err := h.callService.List(c.Request().Context(), req.Limit)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("list calls", err))
	}

	return HandleSuccess(h.logger, c, http.StatusOK, presenter.ToCallListResponse(calls))
}

// GetCall handles GET /calls/:id
// @Summary      Get call details
// @Description  Gets the transcript and annotated segments of a call
// @Tags         Calls
// @Produce      json
// @Param        id   path      string  true  "Call ID"
// @Success      200  {object}  common.SuccessResponse{data=call.CallDetailResponse}
// @Failure      404  {object}  common.ErrorResponse  "Call not found"
// @Router       /calls/{id} [get]
func (h *Call) GetCall(c echo.Context) error {
	detail, err := h.callService.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, presenter.ToCallDetailResponse(detail))
}

// DeleteCall handles DELETE /calls/:id
// @Summary      Delete a call
// @Description  Deletes a call with its transcript, segments and stored audio
// @Tags         Calls
// @Produce      json
// @Param        id   path      string  true  "Call ID"
// @Success      200  {object}  common.SuccessResponse
// @Failure      404  {object}  common.ErrorResponse  "Call not found"
// @Failure      409  {object}  common.ErrorResponse  "Call is still processing"
// @Router       /calls/{id} [delete]
func (h *Call) DeleteCall(c echo.Context) error {
	callID := c.Param("id")
	if err := h.callService.Delete(c.Request().Context(), callID); err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, http.StatusOK, map[string]interface{}{
		"call_id": callID,
		"deleted": true,
	})
}
