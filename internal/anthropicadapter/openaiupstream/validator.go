package openaiupstream

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wrenhollow/anthropic-bridge/internal/anthropicadapter"
	"github.com/wrenhollow/anthropic-bridge/internal/schema/anthropic"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	return v
}

// Validate decodes and validates an incoming Anthropic request body (§4.1).
// Validation is total: on the first structural failure, decoding stops and
// an InvalidRequestError is returned naming the offending path.
func Validate(body []byte) (*anthropic.Request, error) {
	var req anthropic.Request
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &anthropicadapter.InvalidRequestError{
			Message: fmt.Sprintf("invalid JSON body: %v", err),
		}
	}

	if err := validate.Struct(&req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			first := verrs[0]
			return nil, &anthropicadapter.InvalidRequestError{
				Message: fmt.Sprintf("%s failed validation: %s", jsonPath(first.Namespace()), first.Tag()),
				Param:   jsonPath(first.Namespace()),
			}
		}
		return nil, &anthropicadapter.InvalidRequestError{Message: err.Error()}
	}

	if err := validateCacheControlTTLs(req); err != nil {
		return nil, err
	}

	warnOnDanglingToolResults(req)

	return &req, nil
}

// jsonPath converts validator's dotted Go-field namespace (e.g.
// "Request.Messages[0].Content") into the lowercase, JSON-ish path the spec
// requires in error messages (e.g. "messages.0.content").
func jsonPath(namespace string) string {
	parts := strings.SplitN(namespace, ".", 2)
	rest := namespace
	if len(parts) == 2 {
		rest = parts[1]
	}
	rest = strings.ReplaceAll(rest, "[", ".")
	rest = strings.ReplaceAll(rest, "]", "")
	return strings.ToLower(rest)
}

// validateCacheControlTTLs enforces §3.1's invariant that cache-control TTL,
// when present, lies in [60, 3600] seconds.
func validateCacheControlTTLs(req anthropic.Request) error {
	check := func(path string, cc *anthropic.CacheControl) error {
		if cc == nil || cc.TTL == nil {
			return nil
		}
		if *cc.TTL < 60 || *cc.TTL > 3600 {
			return &anthropicadapter.InvalidRequestError{
				Message: fmt.Sprintf("%s.ttl must be in [60, 3600] seconds", path),
				Param:   path + ".ttl",
			}
		}
		return nil
	}

	if req.System != nil {
		for i, b := range req.System.Blocks {
			if err := check(fmt.Sprintf("system.%d.cache_control", i), b.CacheControl); err != nil {
				return err
			}
		}
	}
	for mi, m := range req.Messages {
		for bi, b := range m.Content.Blocks {
			if err := check(fmt.Sprintf("messages.%d.content.%d.cache_control", mi, bi), b.CacheControl); err != nil {
				return err
			}
		}
	}
	return nil
}

// warnOnDanglingToolResults checks the §3.1 invariant that a tool_result
// block references a tool_use id that appeared earlier in the same
// conversation. A violation is not fatal — the request is still forwarded
// and the corresponding upstream message simply loses its tool linkage — so
// this only logs, it never returns an error.
func warnOnDanglingToolResults(req anthropic.Request) {
	seen := make(map[string]bool)
	for mi, m := range req.Messages {
		for bi, b := range m.Content.Blocks {
			switch b.Type {
			case anthropic.BlockTypeToolUse:
				seen[b.ID] = true
			case anthropic.BlockTypeToolResult:
				if !seen[b.ToolUseID] {
					slog.Warn("tool_result references a tool_use id that did not appear earlier in the conversation",
						"path", fmt.Sprintf("messages.%d.content.%d", mi, bi),
						"tool_use_id", b.ToolUseID)
				}
			}
		}
	}
}
