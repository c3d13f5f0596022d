package requestgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"ridepool/internal/space"
	"ridepool/internal/stoplist"
	"ridepool/internal/types"
)

// ErrNoCandidates is returned when Gemini responds with no usable content.
var ErrNoCandidates = errors.New("requestgen: no response candidates from Gemini")

// Geocoder resolves a free-text place description ("the station", "the
// airport") to a location in L. This module ships no implementation;
// callers supply one (the tests use a map-backed stub).
type Geocoder[L comparable] func(ctx context.Context, description string) (L, error)

// GeminiRequestGenerator turns free-text trip descriptions ("pick me up
// at the station around 9 and get me to the airport by 10:30") into
// TransportationRequest values. It consumes a fixed batch of
// descriptions rather than producing an unbounded stream, since each
// call costs a Gemini request; Next returns false once the batch is
// exhausted. Grounded on internal/ai/gemini.go's GenerativeModel +
// ResponseMIMEType = "application/json" + cleanJSONString pattern.
type GeminiRequestGenerator[L comparable] struct {
	client *genai.Client
	model  *genai.GenerativeModel

	Space   space.TransportSpace[L]
	Geocode Geocoder[L]

	descriptions []string
	index        int
	now          float64
}

// NewGeminiRequestGenerator initialises a Gemini client the same way
// internal/ai.NewGeminiProvider does: structured JSON output, a low but
// non-zero temperature so paraphrased descriptions still vary slightly.
func NewGeminiRequestGenerator[L comparable](ctx context.Context, apiKey string, sp space.TransportSpace[L], geocode Geocoder[L], descriptions []string) (*GeminiRequestGenerator[L], error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("requestgen: failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-2.0-flash")
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.2)

	return &GeminiRequestGenerator[L]{
		client:       client,
		model:        model,
		Space:        sp,
		Geocode:      geocode,
		descriptions: descriptions,
	}, nil
}

// Close releases the underlying Gemini client.
func (g *GeminiRequestGenerator[L]) Close() {
	g.client.Close()
}

type parsedTrip struct {
	OriginDescription       string  `json:"origin_description"`
	DestinationDescription  string  `json:"destination_description"`
	PickupOffsetSeconds     float64 `json:"pickup_offset_seconds"`
	MaxPickupDelaySeconds   float64 `json:"max_pickup_delay_seconds"`
	MaxDeliveryDelaySeconds float64 `json:"max_delivery_delay_seconds"`
}

// Next parses the next queued description into a TransportationRequest,
// skipping (rather than failing the whole batch on) any description
// Gemini or the geocoder cannot resolve. Returns false once the batch is
// exhausted.
func (g *GeminiRequestGenerator[L]) Next() (stoplist.TransportationRequest[L], bool) {
	for g.index < len(g.descriptions) {
		description := g.descriptions[g.index]
		g.index++

		trip, err := g.parse(context.Background(), description)
		if err != nil {
			continue
		}

		origin, err := g.Geocode(context.Background(), trip.OriginDescription)
		if err != nil {
			continue
		}
		destination, err := g.Geocode(context.Background(), trip.DestinationDescription)
		if err != nil {
			continue
		}
		if origin == destination {
			continue
		}

		pickupMin := g.now + trip.PickupOffsetSeconds
		pickupMax := pickupMin + trip.MaxPickupDelaySeconds
		deliveryMax := pickupMin + g.Space.T(origin, destination) + trip.MaxDeliveryDelaySeconds

		req, err := stoplist.NewTransportationRequest(
			types.NewID(), g.now, origin, destination,
			stoplist.TimeWindow{Min: pickupMin, Max: pickupMax},
			stoplist.TimeWindow{Min: pickupMin, Max: deliveryMax},
		)
		if err != nil {
			continue
		}
		return req, true
	}
	return stoplist.TransportationRequest[L]{}, false
}

func (g *GeminiRequestGenerator[L]) parse(ctx context.Context, description string) (parsedTrip, error) {
	prompt := fmt.Sprintf(`Extract a trip request from this passenger message: %q

Return JSON with exactly these fields:
{
  "origin_description": "short description of the pickup place",
  "destination_description": "short description of the drop-off place",
  "pickup_offset_seconds": number (how soon the pickup should happen from now, in seconds; 0 if immediate),
  "max_pickup_delay_seconds": number (how much slack the pickup time allows),
  "max_delivery_delay_seconds": number (how much slack beyond direct travel time the drop-off allows)
}`, description)

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return parsedTrip{}, fmt.Errorf("requestgen: gemini generation error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return parsedTrip{}, ErrNoCandidates
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}

	var trip parsedTrip
	if err := json.Unmarshal([]byte(cleanJSONString(text.String())), &trip); err != nil {
		return parsedTrip{}, fmt.Errorf("requestgen: failed to parse JSON response: %w", err)
	}
	return trip, nil
}

func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
