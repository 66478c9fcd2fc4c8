package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

type GetTimeInput struct {
	Timezone string `json:"timezone,omitempty" jsonschema_description:"IANA timezone name such as America/New_York. Defaults to the server's local zone."`
}

var GetTimeInputSchema = GenerateSchema[GetTimeInput]()

var GetTimeDefinition = Definition{
	Name:        "get_time",
	Description: "Get the current date and time, optionally in a given IANA timezone.",
	InputSchema: GetTimeInputSchema,
	Function:    GetTime,
}

// GetTime reports the current wall-clock time in RFC 3339 form. Empty input
// or an empty timezone means local time.
func GetTime(ctx context.Context, input json.RawMessage) (string, error) {
	var in GetTimeInput
	if len(input) > 0 {
		if err := json.Unmarshal(input, &in); err != nil {
			return "", err
		}
	}
	now := time.Now()
	if in.Timezone != "" {
		loc, err := time.LoadLocation(in.Timezone)
		if err != nil {
			return "", fmt.Errorf("unknown timezone %q", in.Timezone)
		}
		now = now.In(loc)
	}
	return now.Format(time.RFC3339), nil
}
