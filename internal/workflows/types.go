package workflows

type ProtocolBatchInput struct {
	InputDir              string `json:"input_dir,omitempty"`
	MaxConcurrentChildren int    `json:"max_concurrent_children"`
	Force                 bool   `json:"force,omitempty"`
	DisableLLM            bool   `json:"disable_llm,omitempty"`
}

type ProtocolProcessInput struct {
	Path       string `json:"path"`
	Force      bool   `json:"force,omitempty"`
	DisableLLM bool   `json:"disable_llm,omitempty"`
}

type ProtocolStatus struct {
	ProtocolID   string            `json:"protocol_id"`
	Path         string            `json:"path"`
	CurrentStep  string            `json:"current_step"`
	Status       string            `json:"status"`
	FailReason   string            `json:"fail_reason,omitempty"`
	LLMErrorType string            `json:"llm_error_type,omitempty"`
	RetryCounts  map[string]int    `json:"retry_counts"`
	Steps        map[string]string `json:"steps"`
}

type ProtocolBatchProgress struct {
	Total         int               `json:"total"`
	Done          int               `json:"done"`
	Failed        int               `json:"failed"`
	Skipped       int               `json:"skipped"`
	PerProtocol   map[string]string `json:"per_protocol_status"`
	ChildWorkflow map[string]string `json:"child_workflow_ids,omitempty"`
}
