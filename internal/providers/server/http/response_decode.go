package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/crmarques/reason/faults"
	"github.com/crmarques/reason/record"
	"github.com/crmarques/reason/server"
)

func encodeRequestBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}

	normalized, err := record.Normalize(body)
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(normalized)
	if err != nil {
		return nil, validationError("failed to encode JSON request body", err)
	}
	return encoded, nil
}

func decodeJSONResponse(body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, transportError("response body is not valid JSON", err)
	}

	normalized, err := record.Normalize(value)
	if err != nil {
		return nil, err
	}
	return normalized, nil
}

func decodeRecordResponse(body []byte) (record.RemoteRecord, error) {
	payload, err := decodeJSONResponse(body)
	if err != nil {
		return record.RemoteRecord{}, err
	}

	values, ok := payload.(map[string]any)
	if !ok {
		return record.RemoteRecord{}, transportError("response body must be a JSON object", nil)
	}
	return record.RemoteFromMap(values)
}

func decodeRunResponse(body []byte) (server.RunResult, error) {
	payload, err := decodeJSONResponse(body)
	if err != nil {
		return server.RunResult{}, err
	}

	values, ok := payload.(map[string]any)
	if !ok {
		return server.RunResult{}, transportError("run response must be a JSON object", nil)
	}

	result := server.RunResult{Body: values}
	result.ID, _ = values["id"].(string)
	result.ThreadID, _ = values["threadId"].(string)
	return result, nil
}

type errorEnvelope struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Issues  []issueEnvelope `json:"issues"`
}

type issueEnvelope struct {
	Message  string `json:"message"`
	Code     string `json:"code"`
	Path     []any  `json:"path"`
	Expected any    `json:"expected"`
	Received any    `json:"received"`
}

func classifyStatusError(statusCode int, body []byte) error {
	envelope := decodeErrorEnvelope(body)

	detail := strings.TrimSpace(envelope.Message)
	if detail == "" {
		detail = strings.TrimSpace(envelope.Error)
	}
	if detail == "" {
		detail = summarizeBody(body)
	}
	message := fmt.Sprintf("remote request failed with status %d: %s", statusCode, detail)

	switch statusCode {
	case http.StatusBadRequest:
		return faults.NewTypedError(faults.ValidationError, message, nil).WithIssues(envelope.issues())
	case http.StatusUnauthorized, http.StatusForbidden:
		return authError(message, nil)
	case http.StatusNotFound:
		return notFoundError(message, nil)
	case http.StatusConflict:
		return conflictError(message, nil)
	}

	if statusCode >= 400 && statusCode < 500 {
		return validationError(message, nil)
	}
	return transportError(message, nil)
}

func decodeErrorEnvelope(body []byte) errorEnvelope {
	var envelope errorEnvelope
	if len(bytes.TrimSpace(body)) == 0 {
		return envelope
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return errorEnvelope{}
	}
	return envelope
}

func (e errorEnvelope) issues() []faults.Issue {
	if len(e.Issues) == 0 {
		return nil
	}

	issues := make([]faults.Issue, 0, len(e.Issues))
	for _, item := range e.Issues {
		path := make([]string, 0, len(item.Path))
		for _, segment := range item.Path {
			path = append(path, scalarText(segment))
		}
		issues = append(issues, faults.Issue{
			Message:  item.Message,
			Code:     item.Code,
			Path:     path,
			Expected: scalarText(item.Expected),
			Received: scalarText(item.Received),
		})
	}
	return issues
}

func scalarText(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return fmt.Sprintf("%v", typed)
	default:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprintf("%v", typed)
		}
		return string(encoded)
	}
}

func summarizeBody(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "<empty>"
	}
	if len(trimmed) > 512 {
		return trimmed[:512] + "..."
	}
	return trimmed
}
