package handler

import (
	"errors"
	"time"

	"github.com/deppfellow/gpthub/internal/errs"
	"github.com/deppfellow/gpthub/internal/middleware"
	"github.com/deppfellow/gpthub/internal/server"
	"github.com/deppfellow/gpthub/internal/sqlerr"
	"github.com/deppfellow/gpthub/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
	pkgerrors "github.com/pkg/errors"
)

// Handler is embedded by the concrete handlers for access to shared
// server dependencies.
type Handler struct {
	server *server.Server
}

// NewHandler constructs the base Handler.
//
// It returns the struct by value: the only field is a pointer, so every
// concrete handler embedding a copy still shares the same *server.Server.
func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// HandlerFunc is a typed endpoint: it receives a validated request and
// returns the value placed under "data" in the response.
type HandlerFunc[Req validation.Validatable, Res any] func(c echo.Context, req Req) (Res, error)

// Response is the success envelope.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// Messages are the texts an endpoint answers with.
type Messages struct {
	Success string

	// Failure, when set, replaces any error that is not an *errs.HTTPError
	// with a 500 carrying this message. Without it errors reach the global
	// error handler unchanged.
	Failure string
}

// ResponseHandler writes a successful result and names the operation in logs.
type ResponseHandler interface {
	Handle(c echo.Context, result any) error
	GetOperation() string
	AddAttributes(txn *newrelic.Transaction, result any)
}

// JSONResponseHandler wraps the result in the success envelope.
type JSONResponseHandler struct {
	status  int
	message string
}

// Handle writes result under "data" with the configured status and message.
func (h JSONResponseHandler) Handle(c echo.Context, result any) error {
	return c.JSON(h.status, Response{
		Success: true,
		Message: h.message,
		Data:    result,
	})
}

// GetOperation names JSON endpoints "handler" in logs.
func (h JSONResponseHandler) GetOperation() string {
	return "handler"
}

func (h JSONResponseHandler) AddAttributes(txn *newrelic.Transaction, result any) {
	// http.status_code is set by EnhanceTracing.
}

// handleRequest is the pipeline shared by every typed endpoint: bind and
// validate, run the handler, log and trace each phase, write the response.
func handleRequest[Req validation.Validatable](
	c echo.Context,
	req Req,
	handler func(c echo.Context, req Req) (any, error),
	messages Messages,
	responseHandler ResponseHandler,
) error {
	start := time.Now()
	route := c.Path()

	txn := newrelic.FromContext(c.Request().Context())
	if txn != nil {
		txn.AddAttribute("handler.name", route)
		responseHandler.AddAttributes(txn, nil)
	}

	logger := middleware.GetLogger(c).With().
		Str("operation", responseHandler.GetOperation()).
		Str("method", c.Request().Method).
		Str("route", route).
		Logger()

	logger.Info().Msg("handling request")

	validationStart := time.Now()
	if err := validation.BindAndValidate(c, req); err != nil {
		validationDuration := time.Since(validationStart)

		logger.Warn().
			Err(err).
			Dur("validation_duration", validationDuration).
			Msg("request validation failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("validation.status", "failed")
			txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
		}

		return err
	}

	validationDuration := time.Since(validationStart)
	if txn != nil {
		txn.AddAttribute("validation.status", "success")
		txn.AddAttribute("validation.duration_ms", validationDuration.Milliseconds())
	}

	logger.Debug().
		Dur("validation_duration", validationDuration).
		Msg("request validation successful")

	handlerStart := time.Now()
	result, err := runHandler(c, req, handler)
	handlerDuration := time.Since(handlerStart)

	if err != nil {
		totalDuration := time.Since(start)

		logger.Error().
			Err(err).
			Str("error_kind", string(sqlerr.Classify(err))).
			Dur("handler_duration", handlerDuration).
			Dur("total_duration", totalDuration).
			Msg("handler execution failed")

		if txn != nil {
			txn.NoticeError(nrpkgerrors.Wrap(err))
			txn.AddAttribute("handler.status", "error")
			txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
			txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
		}

		return failureError(err, messages.Failure)
	}

	totalDuration := time.Since(start)
	if txn != nil {
		txn.AddAttribute("handler.status", "success")
		txn.AddAttribute("handler.duration_ms", handlerDuration.Milliseconds())
		txn.AddAttribute("total.duration_ms", totalDuration.Milliseconds())
		responseHandler.AddAttributes(txn, result)
	}

	logger.Info().
		Dur("handler_duration", handlerDuration).
		Dur("validation_duration", validationDuration).
		Dur("total_duration", totalDuration).
		Msg("request completed successfully")

	return responseHandler.Handle(c, result)
}

// runHandler calls handler and turns a panic into an error carrying the
// panic's stack, so it is logged and answered like any other failure.
func runHandler[Req validation.Validatable](
	c echo.Context,
	req Req,
	handler func(c echo.Context, req Req) (any, error),
) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			if rerr, ok := r.(error); ok {
				err = pkgerrors.Wrap(rerr, "handler panic")
			} else {
				err = pkgerrors.Errorf("handler panic: %v", r)
			}
		}
	}()
	return handler(c, req)
}

// failureError hides err behind the endpoint's failure text. HTTP errors the
// handler chose on purpose pass through unchanged, as does everything when no
// failure text is configured.
func failureError(err error, failure string) error {
	if failure == "" {
		return err
	}

	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}
	return errs.NewInternalServerError().WithMessage(failure)
}

// Handle adapts a typed endpoint into an echo.HandlerFunc. newReq is called
// once per request, so requests never share a payload.
//
//	e.POST("/api/newsletter", handler.Handle(h, fn, http.StatusCreated, newRequest[model.InsertNewsletterSubscription], msgs))
func Handle[Req validation.Validatable, Res any](
	h Handler,
	handler HandlerFunc[Req, Res],
	status int,
	newReq func() Req,
	messages Messages,
) echo.HandlerFunc {
	responseHandler := JSONResponseHandler{status: status, message: messages.Success}

	return func(c echo.Context) error {
		return handleRequest(c, newReq(), func(c echo.Context, req Req) (any, error) {
			return handler(c, req)
		}, messages, responseHandler)
	}
}

// newRequest allocates a zero request of type T.
func newRequest[T any]() *T {
	return new(T)
}
