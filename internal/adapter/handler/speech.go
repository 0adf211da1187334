package handler

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/call-coach/errors"
	"github.com/johnquangdev/call-coach/internal/adapter/dto/call"
	callUsecase "github.com/johnquangdev/call-coach/internal/usecase/call"
)

// HeaderCoachableSegments carries the number of narrated moments in a replay
const HeaderCoachableSegments = "X-Coachable-Segments"

// Speech handles text-to-speech HTTP requests
type Speech struct {
	callService callUsecase.Service
	logger      *zap.Logger
}

// NewSpeechHandler creates a new speech handler
func NewSpeechHandler(callService callUsecase.Service, logger *zap.Logger) *Speech {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Speech{
		callService: callService,
		logger:      logger,
	}
}

// Speak handles POST /speak
// @Summary      Synthesize text to speech
// @Description  Renders the given text to audio and returns the audio file
// @Tags         Speech
// @Accept       json
// @Produce      audio/mpeg
// @Param        request  body      call.SpeakRequest  true  "Text to synthesize"
// @Success      200      {file}    binary
// @Failure      400      {object}  common.ErrorResponse  "Empty or invalid text"
// @Failure      500      {object}  common.ErrorResponse  "Synthesis failed"
// @Router       /speak [post]
func (h *Speech) Speak(c echo.Context) error {
	var req call.SpeakRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}
	if strings.TrimSpace(req.Text) == "" {
		return HandleError(h.logger, c, errors.ErrEmptySynthesisText())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}

	path, err := h.callService.Speak(c.Request().Context(), req.Text, req.Language)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return sendAudio(c, path)
}

// Replay handles POST /replay
// @Summary      Replay coachable moments from a call
// @Description  Narrates every coachable segment of a call as "<type>: <speaker> said: <text>"
// @Tags         Speech
// @Accept       json
// @Produce      audio/mpeg
// @Param        request  body      call.ReplayRequest  true  "Call to replay"
// @Success      200      {file}    binary
// @Failure      400      {object}  common.ErrorResponse  "Invalid request"
// @Failure      404      {object}  common.ErrorResponse  "Call not found or no coachable moments"
// @Failure      500      {object}  common.ErrorResponse  "Synthesis failed"
// @Router       /replay [post]
func (h *Speech) Replay(c echo.Context) error {
	var req call.ReplayRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload(err))
	}

	result, err := h.callService.Replay(c.Request().Context(), req.CallID)
	if err != nil {
		return HandleError(h.logger, c, errors.FromDomain(err, req.CallID))
	}

	c.Response().Header().Set(HeaderCoachableSegments, strconv.Itoa(len(result.Segments)))
	return sendAudio(c, result.AudioPath)
}

// sendAudio streams a synthesized file with an audio content type
func sendAudio(c echo.Context, path string) error {
	mediaType := "audio/wav"
	if strings.HasSuffix(path, ".mp3") {
		mediaType = "audio/mpeg"
	}
	c.Response().Header().Set(echo.HeaderContentType, mediaType)
	if err := c.File(path); err != nil {
		return HandleError(nil, c, errors.ErrInternal(err))
	}
	return nil
}
