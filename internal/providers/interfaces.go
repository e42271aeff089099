package providers

import "context"

type ProviderInfo struct {
	Name  string `json:"name"`
	Model string `json:"model"`
	Key   string `json:"key"`
}

// FieldRequest asks a provider about one field kind in a block of protocol
// text. ProtocolID is carried for the call audit only.
type FieldRequest struct {
	Kind       string `json:"kind"`
	Text       string `json:"text"`
	ProtocolID string `json:"protocol_id"`
}

// FieldResult is the cleaned answer a provider read out of the model reply.
// Value is the payload the extractors parse further: a JSON object for vote
// kinds, a bare status / date / number otherwise.
type FieldResult struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

type FieldProvider interface {
	Extract(ctx context.Context, req FieldRequest) (FieldResult, ProviderInfo, error)
}
