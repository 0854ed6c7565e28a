package handler

import (
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"msgboard/internal/model"
)

// CreateMessage handles POST /
func (h *Handler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	logger := h.log(r)

	if h.Config.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.Config.MaxBodyBytes)
	}

	// A client that disconnects mid-body fails here, before any insert.
	body, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Warn("read request body", zap.Error(err))
		writeError(w, "Invalid request body")
		return
	}

	newMsg, err := parseMessageForm(body)
	if err != nil {
		logger.Warn("invalid message form", zap.Error(err))
		writeError(w, err.Error())
		return
	}

	ts, err := connFrom(r.Context()).Insert(r.Context(), newMsg)
	if err != nil {
		logger.Error("insert message", zap.Error(err))
		writeError(w, "service error")
		return
	}

	logger.Info("created message",
		zap.Int64("timestamp", ts),
		zap.String("username", newMsg.Username),
	)

	if h.Feed != nil {
		h.Feed.Publish(model.Message{
			Username:  newMsg.Username,
			Message:   newMsg.Message,
			Timestamp: ts,
		})
	}

	writeJSON(w, http.StatusOK, timestampResponse{Timestamp: ts})
}

// GetMessages handles GET /
// before/after narrow the list to timestamps strictly below/above the bound.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	logger := h.log(r)

	tr, err := parseTimeRange(r.URL.RawQuery)
	if err != nil {
		logger.Warn("invalid query", zap.Error(err))
		writeError(w, err.Error())
		return
	}

	messages, err := connFrom(r.Context()).Query(r.Context(), tr)
	if err != nil {
		logger.Error("query messages", zap.Error(err))
		writeEmpty(w, http.StatusInternalServerError)
		return
	}

	body, err := renderMessages(messages)
	if err != nil {
		logger.Error("render messages", zap.Error(err))
		writeEmpty(w, http.StatusInternalServerError)
		return
	}

	logger.Debug("listed messages", zap.Int("count", len(messages)))
	writeHTML(w, body)
}

// parseMessageForm decodes a form-encoded POST body. message is required,
// username falls back to model.DefaultUsername.
func parseMessageForm(body []byte) (model.NewMessage, error) {
	values := parseForm(string(body))

	message, ok := values.get("message")
	if !ok {
		return model.NewMessage{}, &MissingFieldError{Field: "message"}
	}
	username, ok := values.get("username")
	if !ok {
		username = model.DefaultUsername
	}

	return model.NewMessage{Username: username, Message: message}, nil
}

// parseTimeRange reads the optional before/after bounds from a raw query
// string. Only a bound that is present but not an integer is an error.
func parseTimeRange(rawQuery string) (model.TimeRange, error) {
	values := parseForm(rawQuery)

	var (
		tr  model.TimeRange
		err error
	)
	if tr.Before, err = parseBound(values, "before"); err != nil {
		return model.TimeRange{}, err
	}
	if tr.After, err = parseBound(values, "after"); err != nil {
		return model.TimeRange{}, err
	}
	return tr, nil
}

func parseBound(values formValues, field string) (*int64, error) {
	raw, ok := values.get(field)
	if !ok {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, &InvalidQueryParamError{
			Field:  field,
			Value:  raw,
			Reason: "invalid integer",
			Err:    err,
		}
	}
	return &v, nil
}
