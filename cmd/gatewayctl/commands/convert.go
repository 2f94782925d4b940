package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
	"github.com/urfave/cli/v3"

	"github.com/wrenhollow/anthropic-bridge/internal/anthropicadapter/openaiupstream"
	"github.com/wrenhollow/anthropic-bridge/internal/schema/openaicompat"
)

// convertCommand runs the same validate/request-transform/response-transform
// pipeline the live proxy uses, but against files on disk — useful for
// replaying a captured debug dump or a support-ticket payload without
// standing up an HTTP server (§4.12).
func convertCommand() *cli.Command {
	return &cli.Command{
		Name:  "convert",
		Usage: "Translate a captured Anthropic request or OpenAI response/stream on disk",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "in", Usage: "input file path", Required: true},
			&cli.StringFlag{Name: "out", Usage: "output file path (stdout if omitted)"},
			&cli.StringFlag{Name: "direction", Usage: "request|response|stream", Required: true},
			&cli.StringFlag{Name: "model", Usage: "upstream model to substitute for request direction"},
			&cli.BoolFlag{Name: "verify", Usage: "decode the emitted Anthropic output with the SDK's own response types"},
		},
		Action: convertAction,
	}
}

func convertAction(_ context.Context, cmd *cli.Command) error {
	in, err := os.ReadFile(cmd.String("in"))
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	var out []byte
	switch cmd.String("direction") {
	case "request":
		out, err = convertRequest(in, cmd.String("model"))
	case "response":
		out, err = convertResponse(in)
	case "stream":
		out, err = convertStream(in)
	default:
		return fmt.Errorf("unknown direction %q (expected request, response, or stream)", cmd.String("direction"))
	}
	if err != nil {
		return err
	}

	if cmd.Bool("verify") {
		if verifyErr := verifyAnthropicOutput(cmd.String("direction"), out); verifyErr != nil {
			return fmt.Errorf("verify failed: %w", verifyErr)
		}
	}

	if path := cmd.String("out"); path != "" {
		return os.WriteFile(path, out, 0o644)
	}
	_, err = os.Stdout.Write(out)
	return err
}

// convertRequest runs validate → request_xform on a captured Anthropic
// request body, emitting the OpenAI-compatible request it would produce.
func convertRequest(in []byte, model string) ([]byte, error) {
	req, err := openaiupstream.Validate(in)
	if err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	outReq, err := openaiupstream.TransformRequest(*req, model)
	if err != nil {
		return nil, fmt.Errorf("request_xform: %w", err)
	}
	return json.MarshalIndent(outReq, "", "  ")
}

// convertResponse runs response_xform on a captured buffered OpenAI
// response body, emitting the Anthropic response it would produce.
func convertResponse(in []byte) ([]byte, error) {
	var resp openaicompat.Response
	if err := json.Unmarshal(in, &resp); err != nil {
		return nil, fmt.Errorf("decoding upstream response: %w", err)
	}
	out, err := openaiupstream.TransformResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("response_xform: %w", err)
	}
	return json.MarshalIndent(out, "", "  ")
}

// convertStream runs the transducer on a captured OpenAI SSE body, emitting
// the concatenated Anthropic SSE events it would produce.
func convertStream(in []byte) ([]byte, error) {
	stream := openaiupstream.TransduceStream(io.NopCloser(bytes.NewReader(in)), "gatewayctl-convert", nil, nil)

	var buf bytes.Buffer
	for event, err := range stream {
		if err != nil {
			return nil, fmt.Errorf("transduce: %w", err)
		}
		data, err := json.Marshal(event)
		if err != nil {
			return nil, err
		}
		buf.WriteString("event: ")
		buf.WriteString(event.Type)
		buf.WriteString("\ndata: ")
		buf.Write(data)
		buf.WriteString("\n\n")
	}
	return buf.Bytes(), nil
}

// verifyAnthropicOutput decodes out with the real Anthropic SDK's own
// response types, to catch wire-shape drift that only an actual SDK
// consumer's decode path would surface.
func verifyAnthropicOutput(direction string, out []byte) error {
	switch direction {
	case "request":
		return nil // nothing Anthropic-shaped to verify on this side
	case "response":
		var msg anthropicsdk.Message
		return json.Unmarshal(out, &msg)
	case "stream":
		resp := &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"text/event-stream"}},
			Body:       io.NopCloser(bytes.NewReader(out)),
		}
		decoder := ssestream.NewDecoder(resp)
		events := ssestream.NewStream[anthropicsdk.MessageStreamEventUnion](decoder, nil)
		for events.Next() {
			_ = events.Current()
		}
		return events.Err()
	default:
		return fmt.Errorf("unknown direction %q", direction)
	}
}
