package approval

import "fmt"

// Player-facing texts, keyed by language. Reviewer-facing text (approval
// channel) stays English.
var userTexts = map[string]map[string]string{
	"es": {
		"confirm_prompt":  "✅ Tu solicitud fue aprobada. Reacciona con ✅ si vas a migrar o con ❌ si no podrás migrar.",
		"denied":          "❌ Tu solicitud de migración fue rechazada.",
		"cancelled":       "🗑️ Tu solicitud de migración fue cancelada por un administrador.",
		"confirm_thanks":  "✅ Confirmación recibida. Gracias por migrar con nosotros.",
		"confirm_decline": "❌ Has cancelado tu migración. Si fue un error, vuelve a iniciar el proceso.",
		"ticket_closing":  "🔒 Este canal se cerrará en unos segundos.",
	},
	"en": {
		"confirm_prompt":  "✅ Your request has been approved. React with ✅ if you will migrate or ❌ if you won't be able to.",
		"denied":          "❌ Your migration request has been denied.",
		"cancelled":       "🗑️ Your migration request was cancelled by an admin.",
		"confirm_thanks":  "✅ Confirmation received. Thank you for migrating with us.",
		"confirm_decline": "❌ You have cancelled your migration. If this was a mistake, please start again.",
		"ticket_closing":  "🔒 This channel will close in a few seconds.",
	},
}

func userText(lang, key string) string {
	if m, ok := userTexts[lang]; ok {
		if t, ok := m[key]; ok {
			return t
		}
	}
	return userTexts["en"][key]
}

const (
	annotationPending   = "🟡 Pending review"
	annotationAwaiting  = "🟠 Approved — awaiting user confirmation"
	annotationMigrate   = "✅ Resolved — user will migrate"
	annotationNoMigrate = "✖️ Resolved — user will not migrate"
	annotationDenied    = "❌ Denied"
	annotationCancelled = "🗑️ Cancelled"
)

func usageFooter(userID string) string {
	return fmt.Sprintf("Reply with !approve %s or !deny %s", userID, userID)
}

const commandUsage = "⚠️ Usage: !approve <user>, !deny <user>, !cancel <user>"
