package turn

import (
	"github.com/opencodex/codex-web/backend/internal/model/chat"
	"github.com/opencodex/codex-web/backend/internal/model/settings"
)

// AutoResolutionPolicy decides whether a proposal kind resolves without a
// human decision, based on the configured approval mode. The coordinator
// consults it before emitting an action event; the resolution itself still
// goes through the reconciler like any other decision.
type AutoResolutionPolicy struct {
	Mode settings.ApprovalMode
}

// AutoApproves reports whether proposals of the given kind are approved
// automatically under this policy.
func (p AutoResolutionPolicy) AutoApproves(kind chat.ActionKind) bool {
	switch p.Mode {
	case settings.ModeFullAuto:
		return true
	case settings.ModeAutoEdit:
		return kind == chat.ActionFilePatch
	default:
		return false
	}
}
