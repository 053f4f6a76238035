package settings

// ApprovalMode controls whether action proposals may resolve without a human
// decision.
type ApprovalMode string

const (
	// ModeSuggest leaves every proposal for explicit human review.
	ModeSuggest ApprovalMode = "suggest"
	// ModeAutoEdit approves file patches automatically, commands still wait.
	ModeAutoEdit ApprovalMode = "auto-edit"
	// ModeFullAuto approves every proposal automatically.
	ModeFullAuto ApprovalMode = "full-auto"
)

// Record holds the persisted user configuration: provider credentials,
// default provider/model, free-text instructions and the approval mode.
type Record struct {
	APIKeyOpenAI     string       `json:"apiKeyOpenAI,omitempty"`
	APIKeyGemini     string       `json:"apiKeyGemini,omitempty"`
	APIKeyOpenRouter string       `json:"apiKeyOpenRouter,omitempty"`
	APIKeyXAI        string       `json:"apiKeyXAI,omitempty"`
	OllamaBaseURL    string       `json:"ollamaBaseUrl,omitempty"`
	DefaultProvider  string       `json:"defaultProvider,omitempty"`
	DefaultModel     string       `json:"defaultModel,omitempty"`
	Instructions     string       `json:"instructions,omitempty"`
	ApprovalMode     ApprovalMode `json:"approvalMode,omitempty"`
}

// Partial is a sparse update to a Record: nil fields keep the stored value.
type Partial struct {
	APIKeyOpenAI     *string       `json:"apiKeyOpenAI"`
	APIKeyGemini     *string       `json:"apiKeyGemini"`
	APIKeyOpenRouter *string       `json:"apiKeyOpenRouter"`
	APIKeyXAI        *string       `json:"apiKeyXAI"`
	OllamaBaseURL    *string       `json:"ollamaBaseUrl"`
	DefaultProvider  *string       `json:"defaultProvider"`
	DefaultModel     *string       `json:"defaultModel"`
	Instructions     *string       `json:"instructions"`
	ApprovalMode     *ApprovalMode `json:"approvalMode"`
}

// Defaults mirrors the configuration a fresh install starts with.
func Defaults() Record {
	return Record{
		DefaultProvider: "openai",
		DefaultModel:    "o4-mini",
		ApprovalMode:    ModeSuggest,
	}
}

func (r Record) merged(p Partial) Record {
	if p.APIKeyOpenAI != nil {
		r.APIKeyOpenAI = *p.APIKeyOpenAI
	}
	if p.APIKeyGemini != nil {
		r.APIKeyGemini = *p.APIKeyGemini
	}
	if p.APIKeyOpenRouter != nil {
		r.APIKeyOpenRouter = *p.APIKeyOpenRouter
	}
	if p.APIKeyXAI != nil {
		r.APIKeyXAI = *p.APIKeyXAI
	}
	if p.OllamaBaseURL != nil {
		r.OllamaBaseURL = *p.OllamaBaseURL
	}
	if p.DefaultProvider != nil {
		r.DefaultProvider = *p.DefaultProvider
	}
	if p.DefaultModel != nil {
		r.DefaultModel = *p.DefaultModel
	}
	if p.Instructions != nil {
		r.Instructions = *p.Instructions
	}
	if p.ApprovalMode != nil {
		r.ApprovalMode = *p.ApprovalMode
	}
	return r
}
