package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"claims-backend/internal/llm"
	"claims-backend/internal/shared/telemetry"
)

// Record is one extraction result: the category's declared keys (plus any
// extras the model volunteered) mapped to string values, with "N/A" standing
// in for unanswerable fields.
type Record map[string]string

// ErrSchemaViolation is returned when the model's output still fails
// validation after the bounded correction retry.
var ErrSchemaViolation = errors.New("extraction schema violation")

// Client runs one chat exchange per extraction, strips markdown fences from
// the completion, parses it leniently, and validates the result against the
// category's declared key set. A single correction re-prompt is attempted on
// parse or validation failure.
type Client struct {
	LLM llm.Client
}

// NewClient constructs an extraction client over the given LLM.
func NewClient(base llm.Client) *Client {
	return &Client{LLM: base}
}

// Extract sends the prompt and returns the validated record for cat.
func (c *Client) Extract(ctx context.Context, cat Category, prompt string) (Record, error) {
	messages := []llm.Message{{Role: llm.RoleUser, Content: prompt}}

	raw, err := c.LLM.Complete(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", cat, err)
	}

	rec, verr := decodeRecord(cat, raw)
	if verr == nil {
		return rec, nil
	}

	telemetry.Warn("extract.schema_retry", map[string]any{
		"category": string(cat),
		"error":    verr.Error(),
	})

	retry := append(messages,
		llm.Message{Role: llm.RoleAssistant, Content: raw},
		llm.Message{Role: llm.RoleUser, Content: correctionPrompt(cat)},
	)
	raw, err = c.LLM.Complete(ctx, retry)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", cat, err)
	}

	rec, verr = decodeRecord(cat, raw)
	if verr != nil {
		return nil, fmt.Errorf("extract %s: %w: %s", cat, ErrSchemaViolation, verr.Error())
	}
	return rec, nil
}

func correctionPrompt(cat Category) string {
	return fmt.Sprintf(
		"Your previous response did not match the required output format. "+
			"Respond again with only a JSON object containing exactly these keys: %s. "+
			"Use \"N/A\" for any key you cannot answer. Do not wrap the JSON in markdown fences.",
		strings.Join(Keys(cat), ", "))
}

// decodeRecord turns a raw completion into a validated Record.
func decodeRecord(cat Category, raw string) (Record, error) {
	cleaned := stripFences(raw)
	cleaned = escapeControlChars(cleaned)

	var parsed map[string]any
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, fmt.Errorf("parse completion: %w", err)
	}

	rec := stringifyValues(parsed)

	normalized, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("re-encode record: %w", err)
	}
	if err := ValidateRecord(cat, normalized); err != nil {
		return nil, err
	}
	return rec, nil
}

// stripFences removes markdown code-fence markers the model may wrap the
// JSON body in.
func stripFences(raw string) string {
	cleaned := strings.NewReplacer("```json", "", "```", "", "``", "").Replace(raw)
	return strings.TrimSpace(cleaned)
}

// escapeControlChars makes the completion parseable when the model embeds
// raw control characters inside string literals, which strict JSON rejects.
func escapeControlChars(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	inString := false
	escaped := false
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		if inString && ch < 0x20 {
			switch ch {
			case '\n':
				b.WriteString(`\n`)
			case '\r':
				b.WriteString(`\r`)
			case '\t':
				b.WriteString(`\t`)
			default:
				fmt.Fprintf(&b, `\u%04x`, ch)
			}
			escaped = false
			continue
		}
		b.WriteByte(ch)

		switch {
		case escaped:
			escaped = false
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		}
	}
	return b.String()
}

// stringifyValues coerces every top-level value to a string. Nulls become
// "N/A"; nested structures are re-encoded as compact JSON.
func stringifyValues(parsed map[string]any) Record {
	rec := make(Record, len(parsed))
	for k, v := range parsed {
		switch t := v.(type) {
		case string:
			if strings.TrimSpace(t) == "" {
				rec[k] = "N/A"
			} else {
				rec[k] = t
			}
		case float64:
			rec[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			rec[k] = strconv.FormatBool(t)
		case nil:
			rec[k] = "N/A"
		default:
			encoded, err := json.Marshal(t)
			if err != nil {
				rec[k] = fmt.Sprintf("%v", t)
				continue
			}
			rec[k] = string(encoded)
		}
	}
	return rec
}
