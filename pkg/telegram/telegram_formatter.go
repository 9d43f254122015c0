package telegram

import (
	"fmt"
	"strings"
	"time"

	"tradepilot/pkg/utils"
)

// SignupInfo is the subset of a new account shown to the admin.
type SignupInfo struct {
	UserID       string
	Name         string
	Email        string
	Organization string
	CreatedAt    time.Time
}

// FormatSignupNotification renders a pending signup as MarkdownV2.
func FormatSignupNotification(info SignupInfo) string {
	var sb strings.Builder
	sb.WriteString("🆕 *New signup awaiting approval*\n\n")
	sb.WriteString(fmt.Sprintf("👤 %s\n", utils.EscapeMarkdownV2(info.Name)))
	sb.WriteString(fmt.Sprintf("📧 %s\n", utils.EscapeMarkdownV2(info.Email)))
	if info.Organization != "" {
		sb.WriteString(fmt.Sprintf("🏢 %s\n", utils.EscapeMarkdownV2(info.Organization)))
	}
	sb.WriteString(fmt.Sprintf("🕒 %s\n\n", utils.EscapeMarkdownV2(utils.PrettyDate(info.CreatedAt))))
	sb.WriteString(fmt.Sprintf("`/approve %s`\n", info.Email))
	sb.WriteString(fmt.Sprintf("`/reject %s`", info.Email))
	return sb.String()
}

// FormatPendingList renders the pending approvals queue as MarkdownV2.
func FormatPendingList(pending []SignupInfo) string {
	if len(pending) == 0 {
		return "✅ No pending signups"
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("⏳ *Pending signups \\(%d\\)*\n", len(pending)))
	for i, p := range pending {
		sb.WriteString(fmt.Sprintf("\n%d\\. %s \\- %s\n`/approve %s`\n",
			i+1,
			utils.EscapeMarkdownV2(p.Name),
			utils.EscapeMarkdownV2(p.Email),
			p.Email,
		))
	}
	return sb.String()
}
