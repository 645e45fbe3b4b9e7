package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

// AgentService translates a merchant's free-text message into a structured
// operation intent. The agent never executes anything itself — dispatch and
// all data access stay with the caller.
type AgentService interface {
	InterpretQuery(ctx context.Context, message string, catalog string) (*QueryIntent, error)
}

type Agent struct {
	client *openai.Client
}

func NewAgent(apiKey string) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{client: &client}
}

// QueryIntent is the structured classification of one chat message.
type QueryIntent struct {
	Operation  string          `json:"operation" jsonschema_description:"One of the operation names from the catalog, or small_talk"`
	Parameters QueryParameters `json:"parameters"`
	Reply      string          `json:"reply" jsonschema_description:"One short conversational sentence to show the merchant"`
}

// QueryParameters carries every parameter any operation can take. Operations
// read only the fields they document; the rest stay at their zero values.
type QueryParameters struct {
	Date        string             `json:"date" jsonschema_description:"Date as YYYY-MM-DD; empty when the merchant did not name one"`
	WindowDays  int                `json:"window_days" jsonschema_description:"Trailing window in days; 0 for the default"`
	ProductName string             `json:"product_name" jsonschema_description:"Product the request is about"`
	Threshold   int                `json:"threshold" jsonschema_description:"Low-stock alert threshold in units; 0 for the default"`
	RuleID      int64              `json:"rule_id" jsonschema_description:"Numeric id of an existing notification rule"`
	Enabled     bool               `json:"enabled" jsonschema_description:"Whether a notification rule should be active"`
	Units       string             `json:"units" jsonschema_description:"Unit label such as plates or cups"`
	Updates     []StockUpdateParam `json:"updates" jsonschema_description:"Stock counts to record, one per product"`
}

// StockUpdateParam is one stock count inside an update_stock request.
type StockUpdateParam struct {
	ProductName string `json:"productName" jsonschema_description:"Product whose stock count is being set"`
	NewQuantity int    `json:"newQuantity" jsonschema_description:"New absolute quantity on hand"`
	Units       string `json:"units" jsonschema_description:"Optional unit label"`
}

// InterpretQuery classifies one message against the operation catalog using
// strict structured output, so the reply always parses into a QueryIntent.
func (a *Agent) InterpretQuery(ctx context.Context, message string, catalog string) (*QueryIntent, error) {
	prompt := fmt.Sprintf(`You are the assistant for a food merchant analytics service.
Classify the merchant's message into exactly one operation and extract its parameters.

Operations:
%s
small_talk: anything that matches none of the operations above.

Rules:
1. operation MUST be one of the names above, or small_talk.
2. Dates are YYYY-MM-DD strings. Leave date empty when the merchant did not name one.
3. Use 0 for numeric parameters the merchant did not give and "" for absent text.
4. reply is one short friendly sentence: for small_talk it answers the merchant, otherwise it acknowledges what you are about to look up.

Message: %s`, catalog, message)

	// Dynamically generate the JSON schema from the Go struct
	schemaStruct := generateSchema()
	schemaJSON, err := json.Marshal(schemaStruct)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "merchant_query_intent",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("A merchant chat message classified into an operation with parameters"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var intent QueryIntent
	if err := json.Unmarshal([]byte(content), &intent); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}
	if intent.Operation == "" {
		intent.Operation = "small_talk"
	}
	return &intent, nil
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v QueryIntent
	return reflector.Reflect(v)
}
