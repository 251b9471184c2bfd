package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jhoicas/cafetal-api/pkg/logger"
	"github.com/rs/zerolog"
)

const localsLogger = "logger"

var nopLogger = zerolog.Nop()

// RequestLogger asigna un request_id (o respeta X-Request-ID), deja un logger con ese ID en
// Locals y escribe una línea de acceso por petición. Resuelve el error del handler con el
// ErrorHandler de la app para registrar el status final.
func RequestLogger(log *logger.Logger) fiber.Handler {
	base := log.Component("http").Zerolog()
	return func(c *fiber.Ctx) error {
		start := time.Now()
		id := c.Get(fiber.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(fiber.HeaderXRequestID, id)
		reqLog := base.With().Str("request_id", id).Logger()
		c.Locals(localsLogger, &reqLog)

		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		var ev *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = reqLog.Error()
		case status >= fiber.StatusBadRequest:
			ev = reqLog.Warn()
		default:
			ev = reqLog.Info()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Str("route", c.Route().Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP()).
			Msg("request")
		return nil
	}
}

// requestLog devuelve el logger de la petición, o uno nulo fuera de RequestLogger.
func requestLog(c *fiber.Ctx) *zerolog.Logger {
	if l, ok := c.Locals(localsLogger).(*zerolog.Logger); ok {
		return l
	}
	return &nopLogger
}

// HTTPObserver recibe una observación por petición atendida.
type HTTPObserver interface {
	HTTPObserved(method, route string, status int, elapsed time.Duration)
}

// Metrics observa método, ruta registrada, status y duración. Va antes de RequestLogger para
// ver el status ya resuelto.
func Metrics(obs HTTPObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			status, _ = statusFor(err)
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		obs.HTTPObserved(c.Method(), c.Route().Path, status, time.Since(start))
		return err
	}
}
