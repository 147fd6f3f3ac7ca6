package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fittinglab/storefront/internal/application"
	"github.com/fittinglab/storefront/internal/catalog"
	"github.com/fittinglab/storefront/internal/infrastructure/medusa"
	"github.com/fittinglab/storefront/pkg/response"
)

// User-facing messages. The storefront shows them verbatim.
const (
	MsgUserExists        = "Ein Benutzer mit dieser E-Mail-Adresse existiert bereits."
	MsgLoginFailed       = "Login fehlgeschlagen. Bitte prüfen Sie Ihre Daten."
	MsgCartEmpty         = "Ihr Warenkorb ist leer"
	MsgNoShippingOptions = "Keine Versandarten für Ihre Adresse gefunden. Bitte prüfen Sie Ihre Adresse."
	MsgOrderNotPlaced    = "Bestellung konnte nicht abgeschlossen werden."
	MsgInvalidInput      = "Bitte prüfen Sie Ihre Eingaben."
	MsgUnavailable       = "Der Shop ist gerade nicht erreichbar. Bitte versuchen Sie es später erneut."
	MsgInternal          = "Es ist ein unerwarteter Fehler aufgetreten."
)

type mapped struct {
	status  int
	message string
}

var sentinelMessages = []struct {
	err error
	mapped
}{
	{application.ErrIdentityExists, mapped{http.StatusConflict, MsgUserExists}},
	{application.ErrRegistrationInProgress, mapped{http.StatusConflict, "Die Registrierung wird bereits verarbeitet."}},
	{application.ErrIdempotencyKeyReused, mapped{http.StatusUnprocessableEntity, "Diese Anfrage wurde bereits mit anderen Daten gesendet."}},
	{application.ErrInvalidCredentials, mapped{http.StatusUnauthorized, MsgLoginFailed}},
	{application.ErrCustomerNotFound, mapped{http.StatusNotFound, "Kundenkonto nicht gefunden."}},
	{application.ErrInvalidResetToken, mapped{http.StatusBadRequest, "Der Link ist ungültig oder abgelaufen."}},
	{application.ErrSessionStoreDisabled, mapped{http.StatusServiceUnavailable, "Diese Funktion ist derzeit nicht verfügbar."}},
	{application.ErrCartNotFound, mapped{http.StatusNotFound, "Warenkorb nicht gefunden."}},
	{application.ErrEmptyCart, mapped{http.StatusNotFound, MsgCartEmpty}},
	{application.ErrNoShippingOptions, mapped{http.StatusUnprocessableEntity, MsgNoShippingOptions}},
	{application.ErrOrderNotFound, mapped{http.StatusNotFound, "Bestellung nicht gefunden."}},
	{application.ErrUploadNotConfigured, mapped{http.StatusServiceUnavailable, "Datei-Uploads sind nicht konfiguriert."}},
	{application.ErrUnsupportedMedia, mapped{http.StatusUnsupportedMediaType, "Dieser Dateityp wird nicht unterstützt."}},
	{catalog.ErrProductNotFound, mapped{http.StatusNotFound, "Produkt nicht gefunden."}},
	{catalog.ErrSearchDisabled, mapped{http.StatusServiceUnavailable, "Die Suche ist derzeit nicht verfügbar."}},
}

// mapError turns any service or upstream error into a status and a German message.
func mapError(err error) mapped {
	for _, s := range sentinelMessages {
		if errors.Is(err, s.err) {
			return s.mapped
		}
	}
	var notPlaced *application.OrderNotPlacedError
	if errors.As(err, &notPlaced) {
		return mapped{http.StatusConflict, MsgOrderNotPlaced}
	}
	var apiErr *medusa.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Status == http.StatusNotFound:
			return mapped{http.StatusNotFound, "Nicht gefunden."}
		case apiErr.Status == http.StatusConflict:
			return mapped{http.StatusConflict, "Die Anfrage steht im Konflikt mit dem aktuellen Stand. Bitte laden Sie die Seite neu."}
		case apiErr.Status >= 400 && apiErr.Status < 500:
			return mapped{http.StatusBadRequest, MsgInvalidInput}
		default:
			return mapped{http.StatusBadGateway, MsgUnavailable}
		}
	}
	return mapped{http.StatusInternalServerError, MsgInternal}
}

// fail writes the mapped error. Server-side failures are logged with the request id.
func fail(c *gin.Context, logger *logrus.Logger, err error) {
	m := mapError(err)
	if m.status >= 500 && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"route":      c.FullPath(),
		}).Error("request failed")
	}
	var detail any
	var apiErr *medusa.APIError
	if errors.As(err, &apiErr) && apiErr.Status < 500 {
		detail = apiErr.Message
	}
	var notPlaced *application.OrderNotPlacedError
	if errors.As(err, &notPlaced) && notPlaced.Reason != "" {
		detail = notPlaced.Reason
	}
	response.Error[any](c, m.status, m.message, detail)
}
