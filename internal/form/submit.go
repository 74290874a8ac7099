// internal/form/submit.go
//
// Formdesk - forms subsystem: response submission.
//
// Context
//   Respondents post {formId, responses} where responses maps a field type to
//   the raw answer.  The server re-runs the shared field rules over the stored
//   field list, reports every violation at once, hashes password answers, and
//   persists an immutable Response.
//
// Workflow
//   •  DecodeSubmission checks payload shape (400 on failure).
//   •  Service.Submit looks the form up (404), validates every field in form
//      order without short-circuiting, and returns *ValidationError when any
//      rule fails.
//   •  Password slots are hashed inside the loop, before the verdict is
//      known, and at most once per slot.
//
//------------------------------------------------------------------------------

package form

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/yanizio/formdesk/internal/field"
	"github.com/yanizio/formdesk/internal/logger"
	"github.com/yanizio/formdesk/internal/metrics"
)

// SubmitRequest is a decoded response payload.  A nil Answers map means the
// payload carried no responses object.
type SubmitRequest struct {
	FormID  ID
	Answers map[string]string
}

// MarshalJSON emits {"formId": ..., "responses": {...}}.
func (r SubmitRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		FormID    ID                `json:"formId"`
		Responses map[string]string `json:"responses"`
	}{r.FormID, r.Answers})
}

// DecodeSubmission parses a response payload.  JSON null answers are dropped
// so they count as missing; numbers and booleans are kept in their literal
// form; nested objects or arrays are rejected.
func DecodeSubmission(body []byte) (SubmitRequest, error) {
	var raw struct {
		FormID    ID              `json:"formId"`
		Responses json.RawMessage `json:"responses"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return SubmitRequest{}, badRequest(invalidSubmission)
	}

	trimmed := bytes.TrimSpace(raw.Responses)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return SubmitRequest{FormID: raw.FormID}, badRequest(invalidSubmission)
	}

	var values map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &values); err != nil {
		return SubmitRequest{}, badRequest(invalidSubmission)
	}

	answers := make(map[string]string, len(values))
	for k, v := range values {
		v = bytes.TrimSpace(v)
		switch {
		case len(v) == 0 || bytes.Equal(v, []byte("null")):
			continue
		case v[0] == '"':
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return SubmitRequest{}, badRequest(invalidSubmission)
			}
			answers[k] = s
		case v[0] == '{' || v[0] == '[':
			return SubmitRequest{}, badRequest(invalidSubmission)
		default:
			answers[k] = string(v)
		}
	}

	return SubmitRequest{FormID: raw.FormID, Answers: answers}, nil
}

const invalidSubmission = "Invalid request. formId and responses are required and must be in the correct format."

// Submit validates req against the stored form and persists the response.
func (s *Service) Submit(ctx context.Context, req SubmitRequest, submitter string) (*Response, error) {
	if submitter == "" {
		return nil, ErrForbidden
	}
	if req.FormID == 0 || req.Answers == nil {
		return nil, badRequest(invalidSubmission)
	}

	f, err := s.Get(ctx, req.FormID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load form %s: %w", req.FormID, err)
	}

	answers, msgs, err := s.check(f.Fields, req.Answers)
	if err != nil {
		return nil, err
	}
	if len(msgs) > 0 {
		ve := &ValidationError{Messages: msgs}
		metrics.ResponsesRejectedTotal.Inc()
		logger.FromContext(ctx).Infow("response rejected", "form", f.ID, "problems", ve.Summary())
		return nil, ve
	}

	resp := &Response{
		ID:          s.newID(),
		FormID:      f.ID,
		Answers:     answers,
		SubmittedBy: submitter,
		SubmittedAt: s.now().UTC(),
	}
	if err := s.store.SaveResponse(ctx, resp); err != nil {
		return nil, fmt.Errorf("save response for form %s: %w", f.ID, err)
	}

	metrics.ResponsesStoredTotal.Inc()
	logger.FromContext(ctx).Infow("response stored", "form", f.ID, "response", resp.ID)
	return resp, nil
}

// check walks fields in order and returns the answer map to persist plus
// every violation message.  The input map is never mutated.
func (s *Service) check(fields []field.Def, in map[string]string) (Answers, []string, error) {
	out := make(Answers, len(in))
	for k, v := range in {
		out[k] = v
	}

	var msgs []string
	hashed := make(map[string]bool)

	for _, fd := range fields {
		key := fd.Key()
		val, ok := in[key]
		if !ok {
			msgs = append(msgs, "Missing response for field type: "+key)
			continue
		}

		if err := field.Check(fd.Type, val); err != nil {
			msgs = append(msgs, err.Error())
		}

		if fd.Type == field.Password && !hashed[key] {
			h, err := s.hasher.Hash(val)
			if err != nil {
				return nil, nil, fmt.Errorf("hash %s answer: %w", key, err)
			}
			out[key] = h
			hashed[key] = true
		}
	}
	return out, msgs, nil
}

// Summary renders a rejected submission for logs and CLI output.
func (ve *ValidationError) Summary() string {
	return fmt.Sprintf("%d problem(s): %s", len(ve.Messages), strings.Join(ve.Messages, " | "))
}
