package scan

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/pickpackhq/pickpack-backend/api/middleware"
	"github.com/pickpackhq/pickpack-backend/api/responses"
	"github.com/pickpackhq/pickpack-backend/api/validators"
	internalscan "github.com/pickpackhq/pickpack-backend/internal/scan"
	pkgerrors "github.com/pickpackhq/pickpack-backend/pkg/errors"
	"github.com/pickpackhq/pickpack-backend/pkg/logger"
)

const maxBarcodeLen = 64

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Origin is enforced by the CORS layer; scanners connect from native
	// wrappers that send no Origin header at all.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Scan resolves a single barcode read against the order.
func Scan(resolver *internalscan.Resolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resolver == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "scan resolver unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload scanRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		barcode := validators.SanitizeString(payload.Barcode, maxBarcodeLen)
		if barcode == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "barcode is required"))
			return
		}

		result, err := resolver.Resolve(r.Context(), orderID, barcode, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// Stream upgrades to a websocket and feeds a scanning session: each text
// frame is a barcode, each reply frame is the resolved outcome. Closing the
// socket stops the session; a scan already in flight still completes.
func Stream(resolver *internalscan.Resolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resolver == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "scan resolver unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := middleware.ActorFromContext(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := internalscan.NewSession(resolver, orderID, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error response.
			if logg != nil {
				logg.Warn(r.Context(), "scan stream upgrade failed")
			}
			return
		}
		defer conn.Close()

		session.Start(r.Context())
		defer session.Stop()

		writeDone := make(chan struct{})
		go func() {
			defer close(writeDone)
			for result := range session.Results() {
				if err := conn.WriteJSON(result); err != nil {
					return
				}
			}
		}()

		for {
			var frame scanRequest
			if err := conn.ReadJSON(&frame); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && logg != nil {
					logg.Warn(r.Context(), "scan stream closed unexpectedly")
				}
				break
			}
			barcode := validators.SanitizeString(frame.Barcode, maxBarcodeLen)
			if barcode == "" {
				continue
			}
			if err := session.Push(barcode); err != nil {
				if errors.Is(err, internalscan.ErrSessionStopped) {
					break
				}
				// Buffer full. Tell the device to slow down and drop the read.
				_ = conn.WriteJSON(map[string]string{"error": "scan buffer full"})
			}
		}

		session.Stop()
		<-writeDone
	}
}

type scanRequest struct {
	Barcode string `json:"barcode" validate:"required,max=64"`
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderID"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	orderID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return orderID, nil
}
