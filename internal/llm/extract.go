package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"vega/internal"
)

const extractSystemPrompt = "You extract the client identity block from the header of a vending " +
	"contract. Return ONLY a JSON object with exactly these keys: client_code, client_name, " +
	"contact_name, address, postal_code, city, country. Use null for any field that is not " +
	"present. client_code is the 4-6 digit customer number, client_name the company, " +
	"contact_name the person, postal_code the 4-digit code preceding the city."

const extractExample = "Example header:\n" +
	"31442 Bergquell Getränke AG Martin Keller Bahnhofstrasse 7 8400 Winterthur Schweiz\n" +
	"Example output:\n" +
	`{"client_code":"31442","client_name":"Bergquell Getränke AG","contact_name":"Martin Keller",` +
	`"address":"Bahnhofstrasse 7","postal_code":"8400","city":"Winterthur","country":"Schweiz"}`

// Parse asks the hosted model for the structured client record.
// Any transport, quota or schema error is returned to the caller, which
// falls back to the local heuristic.
func (c *Client) Parse(ctx context.Context, headerText string) (internal.ClientRecord, error) {
	body := map[string]any{
		"model":           c.cfg.OpenAIModel,
		"temperature":     0,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "user", "content": extractSystemPrompt + "\n\n" + extractExample + "\n\nHeader:\n" + headerText},
		},
	}

	content, err := c.chat(ctx, body)
	if err != nil {
		return internal.ClientRecord{}, err
	}

	payload := []byte(stripFences(content))
	if err := validateClientJSON(payload); err != nil {
		return internal.ClientRecord{}, fmt.Errorf("model output failed schema validation: %w", err)
	}

	var rec internal.ClientRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return internal.ClientRecord{}, fmt.Errorf("unmarshal client record: %w", err)
	}
	dropEmpty(&rec)
	return rec, nil
}

// dropEmpty keeps absence explicit: an empty string from the model is the
// same as null.
func dropEmpty(rec *internal.ClientRecord) {
	for _, field := range []**string{
		&rec.ClientCode, &rec.ClientName, &rec.ContactName,
		&rec.Address, &rec.PostalCode, &rec.City, &rec.Country,
	} {
		if *field != nil && strings.TrimSpace(**field) == "" {
			*field = nil
		}
	}
}
