package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/yegors/spotten/internal/briefing"
	"github.com/yegors/spotten/internal/metrics"
	"github.com/yegors/spotten/pkg/logger"
)

// Calculator computes a briefing from form input
type Calculator interface {
	Compute(form briefing.FormInput) (*briefing.Result, error)
}

// PreviewHandler answers form updates with the recalculated spot, broadcast to every client so
// that all screens show the same briefing.
type PreviewHandler struct {
	server     *Server
	calculator Calculator
	logger     *logger.Logger
}

// NewPreviewHandler creates the preview handler and installs it on the server
func NewPreviewHandler(server *Server, calculator Calculator, logger *logger.Logger) *PreviewHandler {
	h := &PreviewHandler{
		server:     server,
		calculator: calculator,
		logger:     logger.Named("preview"),
	}
	server.SetMessageHandler(h)
	return h
}

// HandleMessage implements MessageHandler
func (h *PreviewHandler) HandleMessage(client *Client, messageType string, data map[string]any) error {
	switch messageType {
	case MessageTypeFormUpdate:
		return h.handleFormUpdate(data)
	default:
		return fmt.Errorf("unknown message type: %s", messageType)
	}
}

func (h *PreviewHandler) handleFormUpdate(data map[string]any) error {
	form, err := decodeForm(data)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := h.calculator.Compute(form)
	metrics.ObserveCalculation(metrics.SourcePreview, start, err)
	if err != nil {
		return err
	}

	h.logger.Debug("Broadcasting spot update", String("dropzone", result.Dropzone.ID))
	h.server.Broadcast(&Message{
		Type: MessageTypeSpotUpdate,
		Data: map[string]any{
			"form":   form,
			"result": result,
		},
	})
	return nil
}

// decodeForm converts the loosely typed message payload into a form. Fields the client leaves
// out keep their defaults.
func decodeForm(data map[string]any) (briefing.FormInput, error) {
	form := briefing.DefaultFormInput()
	if data == nil {
		return form, nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return form, fmt.Errorf("failed to marshal form: %w", err)
	}
	if err := json.Unmarshal(raw, &form); err != nil {
		return form, fmt.Errorf("invalid form: %w", err)
	}
	return form, nil
}
